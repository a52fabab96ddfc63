// Package grid is the flat row-major wall grid shared by dungeon collision
// and the raycasting renderer.
package grid

import (
	"fmt"
	"math"
)

// Open is the cell code for empty floor. Codes 1-4 are wall materials.
const Open uint32 = 0

// Grid is an immutable flat row-major array of cell codes.
type Grid struct {
	width  int
	height int
	cells  []uint32
}

// New copies cells into a grid of the given size.
func New(width, height int, cells []uint32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: %dx%d", width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("grid has %d cells, expected %d", len(cells), width*height)
	}
	return &Grid{width: width, height: height, cells: append([]uint32(nil), cells...)}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Cells returns a copy of the cell data.
func (g *Grid) Cells() []uint32 { return append([]uint32(nil), g.cells...) }

// At returns the cell code at integer coordinates.
func (g *Grid) At(x, y int) (uint32, bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, false
	}
	return g.cells[y*g.width+x], true
}

// Blocked reports whether a cell is a wall. Out of bounds counts as wall.
func (g *Grid) Blocked(x, y int) bool {
	c, ok := g.At(x, y)
	return !ok || c != Open
}

// CanOccupy reports whether a square of half-size margin centred on (x, y)
// touches only open cells. All four corners are tested.
func (g *Grid) CanOccupy(x, y, margin float64) bool {
	corners := [4][2]float64{
		{x - margin, y - margin},
		{x + margin, y - margin},
		{x - margin, y + margin},
		{x + margin, y + margin},
	}
	for _, c := range corners {
		if g.Blocked(int(math.Floor(c[0])), int(math.Floor(c[1]))) {
			return false
		}
	}
	return true
}

// Slide resolves a move from (x, y) to (nx, ny). The combined move is tried
// first, then the x component alone, then the y component alone; if all are
// blocked the position is unchanged.
func (g *Grid) Slide(x, y, nx, ny, margin float64) (float64, float64) {
	switch {
	case g.CanOccupy(nx, ny, margin):
		return nx, ny
	case g.CanOccupy(nx, y, margin):
		return nx, y
	case g.CanOccupy(x, ny, margin):
		return x, ny
	default:
		return x, y
	}
}
