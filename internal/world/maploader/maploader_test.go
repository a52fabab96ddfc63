package maploader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinMapsLoad(t *testing.T) {
	names := Builtin()
	if len(names) < 2 {
		t.Fatalf("Expected at least 2 builtin maps, got %v", names)
	}
	for _, name := range names {
		if _, err := Load(name); err != nil {
			t.Errorf("Builtin map %s failed to load: %v", name, err)
		}
	}
}

func TestDungeonOneLayout(t *testing.T) {
	m, err := Load("dungeon_1")
	if err != nil {
		t.Fatal(err)
	}
	if m.Data.Width != 16 || m.Data.Height != 16 {
		t.Fatalf("Expected 16x16, got %dx%d", m.Data.Width, m.Data.Height)
	}
	g, err := m.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if c, _ := g.At(2, 2); c != 2 {
		t.Errorf("Expected material 2 at 2,2, got %d", c)
	}
	if c, _ := g.At(14, 3); c != 4 {
		t.Errorf("Expected material 4 at 14,3, got %d", c)
	}
	if !g.CanOccupy(m.Data.Start.X, m.Data.Start.Y, 0.15) {
		t.Error("Start position must be open")
	}
}

func TestOverworldEntrances(t *testing.T) {
	m, err := Load("overworld")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := m.Point("dungeon_1")
	if !ok {
		t.Fatal("Expected a dungeon_1 entrance")
	}
	if tile, _ := m.TileAt(p.X, p.Y); tile != 6 {
		t.Errorf("Expected entrance tile 6 under dungeon_1, got %d", tile)
	}
	if _, ok := m.Nearest(p.X+0.5, p.Y, 1, "dungeon"); !ok {
		t.Error("Expected entrance within 1 tile")
	}
	if _, ok := m.Nearest(p.X+1.5, p.Y, 1, "dungeon"); ok {
		t.Error("Entrance 1.5 tiles away should not be near")
	}
	if _, err := Load(p.ID); err != nil {
		t.Errorf("Every entrance should have a dungeon map: %v", err)
	}
}

func TestParseRejectsBadMaps(t *testing.T) {
	tests := map[string]string{
		"size":      `{"width":2,"height":2,"tile_size":1,"tiles":[0,0,0]}`,
		"dims":      `{"width":0,"height":2,"tile_size":1,"tiles":[]}`,
		"tile size": `{"width":1,"height":1,"tile_size":0,"tiles":[0]}`,
		"start":     `{"width":1,"height":1,"tile_size":1,"tiles":[0],"start":{"x":5,"y":0}}`,
		"point":     `{"width":1,"height":1,"tile_size":1,"tiles":[0],"points":[{"id":"","x":0,"y":0}]}`,
		"negative":  `{"width":1,"height":1,"tile_size":1,"tiles":[-1]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalidMap) {
				t.Errorf("Expected ErrInvalidMap, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.json")
	data := `{"name":"tiny","width":2,"height":1,"tile_size":8,"tiles":[0,1],"start":{"x":0.5,"y":0.5}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if tile, ok := m.TileAt(1.2, 0.3); !ok || tile != 1 {
		t.Errorf("Expected tile 1, got %d %v", tile, ok)
	}
	if _, ok := m.TileAt(-0.1, 0); ok {
		t.Error("Expected out of bounds")
	}
}
