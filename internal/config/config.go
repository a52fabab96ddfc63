// Package config loads runtime settings from YAML with environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
)

//go:embed defaults/goldbox.yaml
var defaultYAML []byte

// Config holds every runtime setting.
type Config struct {
	Window      WindowConfig      `yaml:"window" envPrefix:"WINDOW_"`
	Render      RenderConfig      `yaml:"render" envPrefix:"RENDER_"`
	Dungeon     DungeonConfig     `yaml:"dungeon" envPrefix:"DUNGEON_"`
	Overworld   OverworldConfig   `yaml:"overworld" envPrefix:"OVERWORLD_"`
	Transitions TransitionConfig  `yaml:"transitions" envPrefix:"TRANSITIONS_"`
	Frame       FrameConfig       `yaml:"frame" envPrefix:"FRAME_"`
	Saves       SavesConfig       `yaml:"saves" envPrefix:"SAVES_"`
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	Audio       AudioConfig       `yaml:"audio" envPrefix:"AUDIO_"`
	Combat      CombatConfig      `yaml:"combat" envPrefix:"COMBAT_"`
}

// WindowConfig sizes the OS window.
type WindowConfig struct {
	Width     int    `yaml:"width" env:"WIDTH"`
	Height    int    `yaml:"height" env:"HEIGHT"`
	Title     string `yaml:"title" env:"TITLE"`
	Resizable bool   `yaml:"resizable" env:"RESIZABLE"`
}

// RenderConfig is the logical resolution and raycaster settings.
type RenderConfig struct {
	Width      int     `yaml:"width" env:"WIDTH"`
	Height     int     `yaml:"height" env:"HEIGHT"`
	MaxSteps   int     `yaml:"max_steps" env:"MAX_STEPS"`
	FOVDegrees float64 `yaml:"fov_degrees" env:"FOV_DEGREES"`
}

// DungeonConfig controls first-person movement.
type DungeonConfig struct {
	Map              string  `yaml:"map" env:"MAP"`
	MoveSpeed        float64 `yaml:"move_speed" env:"MOVE_SPEED"`
	LookSpeed        float64 `yaml:"look_speed" env:"LOOK_SPEED"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity" env:"MOUSE_SENSITIVITY"`
	CollisionMargin  float64 `yaml:"collision_margin" env:"COLLISION_MARGIN"`
}

// OverworldConfig controls map travel and random encounters.
type OverworldConfig struct {
	Map               string        `yaml:"map" env:"MAP"`
	MoveSpeed         float64       `yaml:"move_speed" env:"MOVE_SPEED"`
	EncounterChance   float64       `yaml:"encounter_chance" env:"ENCOUNTER_CHANCE"`
	EncounterInterval time.Duration `yaml:"encounter_interval" env:"ENCOUNTER_INTERVAL"`
}

// TransitionConfig sets the default effect duration.
type TransitionConfig struct {
	DefaultMS int `yaml:"default_ms" env:"DEFAULT_MS"`
}

// Default returns the default duration as a time.Duration.
func (t TransitionConfig) Default() time.Duration {
	return time.Duration(t.DefaultMS) * time.Millisecond
}

// FrameConfig bounds the simulation step.
type FrameConfig struct {
	MaxDtMS int `yaml:"max_dt_ms" env:"MAX_DT_MS"`
}

// MaxDt returns the clamp in seconds.
func (f FrameConfig) MaxDt() float64 {
	return float64(f.MaxDtMS) / 1000
}

// SavesConfig selects the save slot backend.
type SavesConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// AudioConfig toggles sound cues. Volume is a beep gain exponent.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	Volume  float64 `yaml:"volume" env:"VOLUME"`
}

// CombatConfig seeds the dice. Zero means time-based.
type CombatConfig struct {
	Seed int64 `yaml:"seed" env:"SEED"`
}

// Validate checks settings that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height))
	}
	if c.Render.MaxSteps <= 0 || c.Render.MaxSteps > 128 {
		errs = append(errs, fmt.Errorf("render max_steps %d must be in [1, 128]", c.Render.MaxSteps))
	}
	if c.Render.FOVDegrees <= 0 || c.Render.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("fov %.1f must be in (0, 180)", c.Render.FOVDegrees))
	}
	if c.Dungeon.CollisionMargin < 0 || c.Dungeon.CollisionMargin >= 0.5 {
		errs = append(errs, fmt.Errorf("collision margin %.2f must be in [0, 0.5)", c.Dungeon.CollisionMargin))
	}
	if c.Overworld.EncounterChance < 0 || c.Overworld.EncounterChance > 1 {
		errs = append(errs, fmt.Errorf("encounter chance %.2f must be in [0, 1]", c.Overworld.EncounterChance))
	}
	if c.Transitions.DefaultMS < 0 {
		errs = append(errs, fmt.Errorf("transition duration %d must not be negative", c.Transitions.DefaultMS))
	}
	if c.Frame.MaxDtMS <= 0 {
		errs = append(errs, fmt.Errorf("max dt %d must be positive", c.Frame.MaxDtMS))
	}
	switch c.Saves.Backend {
	case "sqlite", "file":
	default:
		errs = append(errs, fmt.Errorf("unknown saves backend %q", c.Saves.Backend))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}
