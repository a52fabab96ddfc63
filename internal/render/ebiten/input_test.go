package ebiten

import "testing"

func TestKeyNames(t *testing.T) {
	tests := []struct {
		name, code, key string
	}{
		{"W", "KeyW", "w"},
		{"Digit1", "Digit1", "1"},
		{"Space", "Space", " "},
		{"ArrowUp", "ArrowUp", "arrowup"},
		{"Escape", "Escape", "escape"},
		{"F5", "F5", "f5"},
		{"Enter", "Enter", "enter"},
	}
	for _, tt := range tests {
		code, key := KeyNames(tt.name)
		if code != tt.code || key != tt.key {
			t.Errorf("KeyNames(%q) = (%q, %q), want (%q, %q)", tt.name, code, key, tt.code, tt.key)
		}
	}
}
