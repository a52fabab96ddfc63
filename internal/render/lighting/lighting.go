// Package lighting tracks the dungeon's ambient level and the party's torch.
// The raycaster turns the result into per-frame shading uniforms.
package lighting

import (
	"math"
)

// Torch is the party's carried light. Radius is in map cells.
type Torch struct {
	Radius    float64
	Intensity float64
	// Flicker is the peak fraction the intensity wavers by.
	Flicker float64
}

// DefaultTorch is a plain wooden torch.
var DefaultTorch = Torch{Radius: 6, Intensity: 1, Flicker: 0.08}

// Manager handles the ambient level and the torch.
type Manager struct {
	ambient float64 // 0 is pitch black, 1 fully lit
	torch   Torch
	torchOn bool
	clock   float64
}

// NewManager creates a manager with a dim ambient and the torch lit.
func NewManager() *Manager {
	return &Manager{
		ambient: 0.15,
		torch:   DefaultTorch,
		torchOn: true,
	}
}

// SetAmbientLight sets the global ambient light level, clamped to [0, 1].
func (m *Manager) SetAmbientLight(level float64) {
	m.ambient = clamp01(level)
}

// AmbientLight returns the current ambient light level.
func (m *Manager) AmbientLight() float64 {
	return m.ambient
}

// SetTorch replaces the torch.
func (m *Manager) SetTorch(t Torch) {
	m.torch = t
}

// EnableTorch lights or snuffs the torch.
func (m *Manager) EnableTorch(on bool) {
	m.torchOn = on
}

// ToggleTorch flips the torch and returns the new state.
func (m *Manager) ToggleTorch() bool {
	m.torchOn = !m.torchOn
	return m.torchOn
}

// TorchOn reports whether the torch is lit.
func (m *Manager) TorchOn() bool {
	return m.torchOn
}

// Update advances the flicker clock by dt seconds.
func (m *Manager) Update(dt float64) {
	m.clock += dt
}

// Level is what the raycaster consumes each frame.
type Level struct {
	Ambient   float64
	Radius    float64
	Intensity float64
}

// Current returns the lighting for this frame. A snuffed torch leaves only
// the ambient level.
func (m *Manager) Current() Level {
	if !m.torchOn || m.torch.Radius <= 0 {
		return Level{Ambient: m.ambient}
	}
	// Two incommensurate waves so the flicker never visibly loops.
	wave := 0.6*math.Sin(m.clock*7.3) + 0.4*math.Sin(m.clock*13.1)
	return Level{
		Ambient:   m.ambient,
		Radius:    m.torch.Radius,
		Intensity: clamp01(m.torch.Intensity * (1 + m.torch.Flicker*wave)),
	}
}

// Brightness is the light reaching a wall at distance d, matching the
// shader's falloff.
func (l Level) Brightness(d float64) float64 {
	if l.Radius <= 0 {
		return l.Ambient
	}
	falloff := clamp01(1 - d/l.Radius)
	return clamp01(l.Ambient + (1-l.Ambient)*l.Intensity*falloff*falloff)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
