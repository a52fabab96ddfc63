// Package placeholders draws the programmer-art tiles and sprites used by the
// overworld map, and can export them as PNG atlases for artists to replace.
package placeholders

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// TileSize is the standard size for placeholder tiles
const TileSize = 32

// Terrain codes as stored in overworld maps.
const (
	Grass = iota
	Forest
	Road
	Mountain
	Water
	Town
	DungeonEntrance
	terrainCount
)

// ColorPalette defines colors for the overworld terrain and sprites.
var ColorPalette = struct {
	Grass           color.RGBA
	Forest          color.RGBA
	Road            color.RGBA
	Mountain        color.RGBA
	Water           color.RGBA
	Town            color.RGBA
	DungeonEntrance color.RGBA
	Unknown         color.RGBA

	Party      color.RGBA
	PartyTrim  color.RGBA
	Hero       color.RGBA
	Enemy      color.RGBA
	Gold       color.RGBA
	Background color.RGBA
}{
	Grass:           color.RGBA{0x2a, 0x5f, 0x3f, 255},
	Forest:          color.RGBA{0x1a, 0x3f, 0x2f, 255},
	Road:            color.RGBA{0x6b, 0x8e, 0x23, 255},
	Mountain:        color.RGBA{0x8b, 0x73, 0x55, 255},
	Water:           color.RGBA{0x46, 0x82, 0xb4, 255},
	Town:            color.RGBA{0x8b, 0x45, 0x13, 255},
	DungeonEntrance: color.RGBA{0x2f, 0x2f, 0x2f, 255},
	Unknown:         color.RGBA{0xff, 0x00, 0xff, 255}, // Magenta so it stands out

	Party:      color.RGBA{0xd4, 0xaf, 0x37, 255},
	PartyTrim:  color.RGBA{0x8b, 0x73, 0x55, 255},
	Hero:       color.RGBA{0x41, 0x69, 0xe1, 255},
	Enemy:      color.RGBA{0x8b, 0x00, 0x00, 255},
	Gold:       color.RGBA{0xd4, 0xaf, 0x37, 255},
	Background: color.RGBA{0x0a, 0x0a, 0x0a, 255},
}

// TerrainColor returns the base color of a terrain code.
func TerrainColor(code int) color.RGBA {
	switch code {
	case Grass:
		return ColorPalette.Grass
	case Forest:
		return ColorPalette.Forest
	case Road:
		return ColorPalette.Road
	case Mountain:
		return ColorPalette.Mountain
	case Water:
		return ColorPalette.Water
	case Town:
		return ColorPalette.Town
	case DungeonEntrance:
		return ColorPalette.DungeonEntrance
	default:
		return ColorPalette.Unknown
	}
}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := CreateSolidTile(fillColor)
	for i := 0; i < borderWidth; i++ {
		for x := 0; x < TileSize; x++ {
			img.Set(x, i, borderColor)
			img.Set(x, TileSize-1-i, borderColor)
		}
		for y := 0; y < TileSize; y++ {
			img.Set(i, y, borderColor)
			img.Set(TileSize-1-i, y, borderColor)
		}
	}
	return img
}

// CreatePatternedTile decorates a bordered base tile with a terrain
// pattern: "forest", "mountain", "water", "town" or "stairs". Unknown
// patterns leave the tile plain.
func CreatePatternedTile(baseColor, patternColor color.RGBA, pattern string) *image.RGBA {
	img := CreateBorderedTile(baseColor, Darken(baseColor, 0.8), 1)

	switch pattern {
	case "forest":
		// Two canopy blobs
		fillRect(img, 4, 4, 8, 8, patternColor)
		fillRect(img, 20, 20, 8, 8, patternColor)
	case "mountain":
		// Peak from (16,4) down to the bottom corners
		for y := 4; y < TileSize-4; y++ {
			half := (y - 4) * (TileSize/2 - 4) / (TileSize - 8)
			for x := TileSize/2 - half; x <= TileSize/2+half; x++ {
				img.Set(x, y, patternColor)
			}
		}
	case "water":
		// A shallow wave across the middle
		mid := TileSize / 2
		for x := 0; x < TileSize/2; x++ {
			dy := (x * (TileSize/2 - x)) / 16
			img.Set(x, mid-dy, patternColor)
			img.Set(x, mid-dy+1, patternColor)
		}
	case "town":
		// Walls then a stepped roof
		fillRect(img, 8, 12, 16, 12, patternColor)
		for i := 0; i < 8; i++ {
			fillRect(img, 8+i, 12-i, 16-2*i, 1, patternColor)
		}
	case "stairs":
		for i := 0; i < 4; i++ {
			fillRect(img, 8, 8+i*5, 16-i*3, 3, patternColor)
		}
	}

	return img
}

func fillRect(img *image.RGBA, x, y, w, h int, col color.RGBA) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), &image.Uniform{col}, image.Point{}, draw.Over)
}

// CreateCircle creates a circular sprite (for the party marker)
func CreateCircle(fillColor, outlineColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))

	center := TileSize / 2
	radius := TileSize / 3

	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			dx := x - center
			dy := y - center
			distSq := dx*dx + dy*dy

			if distSq <= radius*radius {
				img.Set(x, y, fillColor)
			} else if distSq <= (radius+2)*(radius+2) {
				img.Set(x, y, outlineColor)
			}
		}
	}

	// Eyes
	black := color.RGBA{0, 0, 0, 255}
	fillRect(img, center-5, center-5, 2, 2, black)
	fillRect(img, center+3, center-5, 2, 2, black)

	return img
}

// TerrainTiles returns one opaque tile per terrain code, indexed by code.
func TerrainTiles() []*image.RGBA {
	p := ColorPalette
	tiles := make([]*image.RGBA, terrainCount)
	tiles[Grass] = CreatePatternedTile(p.Grass, p.Grass, "")
	tiles[Forest] = CreatePatternedTile(p.Forest, Darken(p.Forest, 0.8), "forest")
	tiles[Road] = CreatePatternedTile(p.Road, p.Road, "")
	tiles[Mountain] = CreatePatternedTile(p.Mountain, Lighten(p.Mountain, 0.3), "mountain")
	tiles[Water] = CreatePatternedTile(p.Water, Lighten(p.Water, 0.3), "water")
	tiles[Town] = CreatePatternedTile(p.Town, color.RGBA{139, 0, 0, 255}, "town")
	tiles[DungeonEntrance] = CreatePatternedTile(p.DungeonEntrance, Darken(p.DungeonEntrance, 0.2), "stairs")
	return tiles
}

// TerrainCount is the number of tiles in the terrain atlas.
func TerrainCount() int { return terrainCount }

// CreateAtlas creates a sprite atlas from multiple tiles
func CreateAtlas(tiles []*image.RGBA, columns int) *image.RGBA {
	if columns <= 0 {
		columns = 1
	}
	rows := (len(tiles) + columns - 1) / columns

	atlas := image.NewRGBA(image.Rect(0, 0, columns*TileSize, max(rows, 1)*TileSize))

	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x := (i % columns) * TileSize
		y := (i / columns) * TileSize
		draw.Draw(atlas, image.Rect(x, y, x+TileSize, y+TileSize), tile, image.Point{}, draw.Src)
	}

	return atlas
}

// AtlasRect returns the source rectangle of tile i in an atlas built with
// the given column count.
func AtlasRect(i, columns int) image.Rectangle {
	x := (i % columns) * TileSize
	y := (i / columns) * TileSize
	return image.Rect(x, y, x+TileSize, y+TileSize)
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// Lighten returns a lighter version of a color
func Lighten(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) + (255-float64(c.R))*factor),
		G: uint8(float64(c.G) + (255-float64(c.G))*factor),
		B: uint8(float64(c.B) + (255-float64(c.B))*factor),
		A: c.A,
	}
}
