package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chosenoffset.com/goldbox/internal/placeholders"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles <dir>",
	Short: "Export the placeholder tile art as PNG",
	Long: `Writes the overworld terrain atlas and the party marker used by the
built-in placeholder art, for use as a starting point for real tiles.`,
	Args: cobra.ExactArgs(1),
	RunE: runTiles,
}

func runTiles(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return exportTiles(dir, func(path string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	})
}

func exportTiles(dir string, wrote func(string)) error {
	pal := placeholders.ColorPalette
	images := []struct {
		name string
		img  image.Image
	}{
		{"terrain.png", placeholders.CreateAtlas(placeholders.TerrainTiles(), placeholders.TerrainCount())},
		{"party.png", placeholders.CreateCircle(pal.Party, pal.PartyTrim)},
	}
	for _, f := range images {
		path := filepath.Join(dir, f.name)
		if err := placeholders.SavePNG(f.img, path); err != nil {
			return err
		}
		wrote(path)
	}
	return nil
}
