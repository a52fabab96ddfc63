// goldbox is a party-based RPG with an overworld, first-person dungeons and
// grid combat.
//
// Usage:
//
//	goldbox                      - Play
//	goldbox saves list           - List save slots
//	goldbox saves show <slot>    - Print a save as JSON
//	goldbox saves delete <slot>  - Delete a save
//	goldbox tiles <dir>          - Export the placeholder tile art as PNG
//
// Global flags:
//
//	--config <path>     - YAML config (default: ./configs/goldbox.yaml, then built-in)
//	--log-level <level> - debug, info, warn or error
//	--saves <path>      - Save slot database or directory
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/game"
	"chosenoffset.com/goldbox/internal/render"
	ebitenrender "chosenoffset.com/goldbox/internal/render/ebiten"
	"chosenoffset.com/goldbox/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagSaves    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "goldbox",
	Short: "Gold Box - a party RPG of overworld travel, dungeon crawls and grid combat",
	Long: `Gold Box starts at the main menu. Travel the overworld, enter dungeons
in first person and fight on a tactical grid.

Controls:
  WASD/Arrows  - Move (Left/Right turn in dungeons, click for mouse look)
  Enter        - Enter a dungeon or take the stairs out
  C / I        - Character sheet / inventory
  L            - Toggle the torch
  F5 / F9      - Quicksave / quickload
  Escape       - Close a window or return to the menu`,
	SilenceUsage: true,
	RunE:         runGame,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagSaves, "saves", "", "Save slot database (sqlite) or directory (file)")

	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(tilesCmd)
}

// loadConfig reads the config and applies the global flags over it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagSaves != "" {
		cfg.Saves.Path = flagSaves
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "goldbox",
		Level:           lvl,
	})
	return logger, nil
}

func openSlots(cfg config.Config) (storage.Slots, error) {
	slots, err := storage.Open(cfg.Saves.Backend, cfg.Saves.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open saves: %w", err)
	}
	return slots, nil
}

func runGame(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	slots, err := openSlots(cfg)
	if err != nil {
		return err
	}
	defer slots.Close()

	renderer := ebitenrender.NewRenderer()
	gpu := ebitenrender.NewGPU(renderer)
	var engine render.Engine = ebitenrender.NewEngine(gpu)

	g, err := game.New(cmd.Context(), cfg, game.Backend{
		Renderer: renderer,
		GPU:      gpu,
		Locker:   ebitenrender.PointerLock{},
		Poller:   ebitenrender.NewInputSource(),
		Audio:    audio.New(cfg.Audio, logger.WithPrefix("audio")),
	}, slots, game.WithLogger(logger))
	if err != nil {
		return err
	}
	defer g.Close()

	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(cfg.Window.Resizable)

	logger.Info("starting", "saves", cfg.Saves.Backend, "path", cfg.Saves.Path)
	if err := engine.RunGame(g); err != nil {
		logger.Error("game stopped", "err", err)
		return err
	}
	return nil
}
