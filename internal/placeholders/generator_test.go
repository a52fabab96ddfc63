package placeholders

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestTerrainTilesAreOpaque(t *testing.T) {
	tiles := TerrainTiles()
	if len(tiles) != TerrainCount() {
		t.Fatalf("got %d tiles, want %d", len(tiles), TerrainCount())
	}
	for code, tile := range tiles {
		b := tile.Bounds()
		if b.Dx() != TileSize || b.Dy() != TileSize {
			t.Errorf("tile %d is %v", code, b)
		}
		for i := 3; i < len(tile.Pix); i += 4 {
			if tile.Pix[i] != 255 {
				t.Fatalf("tile %d has a translucent pixel", code)
			}
		}
		// The centre of a plain tile keeps the terrain colour.
		if code == Grass || code == Road {
			if got := tile.RGBAAt(TileSize/2, TileSize/2); got != TerrainColor(code) {
				t.Errorf("tile %d centre = %v, want %v", code, got, TerrainColor(code))
			}
		}
	}
}

func TestTerrainColorUnknown(t *testing.T) {
	if got := TerrainColor(42); got != ColorPalette.Unknown {
		t.Errorf("TerrainColor(42) = %v, want magenta", got)
	}
}

func TestAtlasLayout(t *testing.T) {
	tiles := TerrainTiles()
	atlas := CreateAtlas(tiles, 4)
	if atlas.Bounds().Dx() != 4*TileSize || atlas.Bounds().Dy() != 2*TileSize {
		t.Fatalf("atlas bounds = %v", atlas.Bounds())
	}
	r := AtlasRect(Water, 4)
	if r.Min.X != 0 || r.Min.Y != TileSize {
		t.Errorf("AtlasRect(Water) = %v", r)
	}
	if got := atlas.RGBAAt(r.Min.X+2, r.Min.Y+2); got != ColorPalette.Water {
		t.Errorf("water tile pixel = %v", got)
	}
}

func TestCircleHasTransparentCorners(t *testing.T) {
	img := CreateCircle(ColorPalette.Party, ColorPalette.PartyTrim)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("corner = %v, want transparent", got)
	}
	if got := img.RGBAAt(TileSize/2, TileSize/2+4); got != ColorPalette.Party {
		t.Errorf("centre = %v, want party colour", got)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.png")
	if err := SavePNG(CreateAtlas(TerrainTiles(), 8), path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 8*TileSize {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestDarkenLighten(t *testing.T) {
	c := color.RGBA{100, 200, 0, 255}
	if got := Darken(c, 0.5); got != (color.RGBA{50, 100, 0, 255}) {
		t.Errorf("Darken = %v", got)
	}
	if got := Lighten(c, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Lighten = %v", got)
	}
}
