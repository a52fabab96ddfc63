package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Render.Width != 960 || cfg.Render.Height != 720 {
		t.Errorf("Expected 960x720, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.MaxSteps != 64 {
		t.Errorf("Expected max steps 64, got %d", cfg.Render.MaxSteps)
	}
	if cfg.Dungeon.MoveSpeed != 3 || cfg.Dungeon.CollisionMargin != 0.15 {
		t.Errorf("Unexpected dungeon defaults %+v", cfg.Dungeon)
	}
	if cfg.Overworld.EncounterInterval != 3*time.Second {
		t.Errorf("Expected 3s encounter interval, got %v", cfg.Overworld.EncounterInterval)
	}
	if cfg.Transitions.Default() != 300*time.Millisecond {
		t.Errorf("Expected 300ms transitions, got %v", cfg.Transitions.Default())
	}
	if cfg.Frame.MaxDt() != 0.05 {
		t.Errorf("Expected max dt 0.05, got %v", cfg.Frame.MaxDt())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadCustomFileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goldbox.yaml")
	data := "saves:\n  backend: file\n  path: /tmp/saves\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Saves.Backend != "file" || cfg.Saves.Path != "/tmp/saves" {
		t.Errorf("Expected file backend at /tmp/saves, got %+v", cfg.Saves)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug, got %s", cfg.Log.Level)
	}
	if cfg.Render.Width != 960 {
		t.Errorf("Unset fields should keep defaults, got width %d", cfg.Render.Width)
	}
}

func TestLoadMissingCustomFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOLDBOX_SAVES_BACKEND", "file")
	t.Setenv("GOLDBOX_AUDIO_ENABLED", "false")
	t.Setenv("GOLDBOX_DUNGEON_MOVE_SPEED", "5.5")

	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Saves.Backend != "file" {
		t.Errorf("Expected file backend, got %s", cfg.Saves.Backend)
	}
	if cfg.Audio.Enabled {
		t.Error("Expected audio disabled")
	}
	if cfg.Dungeon.MoveSpeed != 5.5 {
		t.Errorf("Expected move speed 5.5, got %v", cfg.Dungeon.MoveSpeed)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Render.MaxSteps = 0
	cfg.Saves.Backend = "s3"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"max_steps", "s3"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q, got %v", want, err)
		}
	}
}
