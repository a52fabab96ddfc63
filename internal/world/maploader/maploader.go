// Package maploader loads tile maps: a flat integer grid, its size, a start
// position and named points of interest such as dungeon entrances.
package maploader

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strings"

	"chosenoffset.com/goldbox/internal/world/grid"
)

//go:embed maps/*.json
var builtin embed.FS

// ErrInvalidMap wraps every validation failure.
var ErrInvalidMap = errors.New("invalid map")

// Point is a start or spawn location in map units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointOfInterest is a named location on the map.
type PointOfInterest struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}

// MapData is the on-disk map format.
type MapData struct {
	Name     string            `json:"name"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	TileSize int               `json:"tile_size"`
	Start    Point             `json:"start"`
	Points   []PointOfInterest `json:"points"`
	Tiles    []int             `json:"tiles"` // row-major [y*width+x]
}

// Map is a validated map.
type Map struct {
	Data *MapData
}

// Builtin lists the names of the embedded maps.
func Builtin() []string {
	entries, _ := fs.Glob(builtin, "maps/*.json")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(e, "maps/"), ".json"))
	}
	sort.Strings(names)
	return names
}

// Load loads an embedded map by name.
func Load(name string) (*Map, error) {
	data, err := builtin.ReadFile("maps/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read map %s: %w", name, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}
	return m, nil
}

// LoadFile loads a map from a JSON file.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("map file %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a map.
func Parse(data []byte) (*Map, error) {
	var md MapData
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	if err := validateMapData(&md); err != nil {
		return nil, err
	}
	return &Map{Data: &md}, nil
}

// validateMapData checks if the map data is valid
func validateMapData(data *MapData) error {
	if data.Width <= 0 || data.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, data.Width, data.Height)
	}
	if data.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidMap, data.TileSize)
	}
	if len(data.Tiles) != data.Width*data.Height {
		return fmt.Errorf("%w: %d tiles for %dx%d", ErrInvalidMap, len(data.Tiles), data.Width, data.Height)
	}
	for i, t := range data.Tiles {
		if t < 0 {
			return fmt.Errorf("%w: negative tile %d at %d,%d", ErrInvalidMap, t, i%data.Width, i/data.Width)
		}
	}
	if !data.contains(data.Start.X, data.Start.Y) {
		return fmt.Errorf("%w: start %.1f,%.1f outside map", ErrInvalidMap, data.Start.X, data.Start.Y)
	}
	ids := make(map[string]bool)
	for _, p := range data.Points {
		if p.ID == "" {
			return fmt.Errorf("%w: point of interest without id", ErrInvalidMap)
		}
		if ids[p.ID] {
			return fmt.Errorf("%w: duplicate point %q", ErrInvalidMap, p.ID)
		}
		ids[p.ID] = true
		if !data.contains(p.X, p.Y) {
			return fmt.Errorf("%w: point %q outside map", ErrInvalidMap, p.ID)
		}
	}
	return nil
}

func (d *MapData) contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(d.Width) && y < float64(d.Height)
}

// TileAt returns the tile code at the given continuous coordinates.
func (m *Map) TileAt(x, y float64) (int, bool) {
	tx, ty := int(math.Floor(x)), int(math.Floor(y))
	if tx < 0 || ty < 0 || tx >= m.Data.Width || ty >= m.Data.Height {
		return 0, false
	}
	return m.Data.Tiles[ty*m.Data.Width+tx], true
}

// Grid converts the tiles into a collision/render grid.
func (m *Map) Grid() (*grid.Grid, error) {
	cells := make([]uint32, len(m.Data.Tiles))
	for i, t := range m.Data.Tiles {
		cells[i] = uint32(t)
	}
	return grid.New(m.Data.Width, m.Data.Height, cells)
}

// Nearest returns the closest point of interest of the given kind strictly
// within dist of (x, y). An empty kind matches any point.
func (m *Map) Nearest(x, y, dist float64, kind string) (PointOfInterest, bool) {
	best := -1
	bestDist := dist
	for i, p := range m.Data.Points {
		if kind != "" && p.Kind != kind {
			continue
		}
		d := math.Hypot(x-p.X, y-p.Y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return PointOfInterest{}, false
	}
	return m.Data.Points[best], true
}

// Point returns the point of interest with the given id.
func (m *Map) Point(id string) (PointOfInterest, bool) {
	for _, p := range m.Data.Points {
		if p.ID == id {
			return p, true
		}
	}
	return PointOfInterest{}, false
}
