package lighting

import (
	"math"
	"testing"
)

func TestSnuffedTorchLeavesAmbient(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(0.3)
	if m.ToggleTorch() {
		t.Fatal("ToggleTorch() = true, want torch snuffed")
	}
	l := m.Current()
	if l.Radius != 0 || l.Ambient != 0.3 {
		t.Errorf("Current() = %+v", l)
	}
	for _, d := range []float64{0, 3, 50} {
		if got := l.Brightness(d); got != 0.3 {
			t.Errorf("Brightness(%v) = %v, want 0.3", d, got)
		}
	}
}

func TestTorchFalloff(t *testing.T) {
	m := NewManager()
	m.SetTorch(Torch{Radius: 4, Intensity: 1})
	l := m.Current()

	if got := l.Brightness(0); math.Abs(got-1) > 1e-9 {
		t.Errorf("Brightness(0) = %v, want 1", got)
	}
	if got := l.Brightness(4); got != l.Ambient {
		t.Errorf("Brightness at radius = %v, want ambient %v", got, l.Ambient)
	}
	if near, far := l.Brightness(1), l.Brightness(3); near <= far {
		t.Errorf("Brightness not decreasing: %v then %v", near, far)
	}
}

func TestFlickerStaysInRange(t *testing.T) {
	m := NewManager()
	for i := 0; i < 500; i++ {
		m.Update(1.0 / 60)
		l := m.Current()
		if l.Intensity < 0 || l.Intensity > 1 {
			t.Fatalf("intensity %v out of range", l.Intensity)
		}
		if l.Intensity < DefaultTorch.Intensity*(1-DefaultTorch.Flicker)-1e-9 {
			t.Fatalf("intensity %v below flicker floor", l.Intensity)
		}
	}
}

func TestAmbientClamped(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(2)
	if m.AmbientLight() != 1 {
		t.Errorf("AmbientLight() = %v, want 1", m.AmbientLight())
	}
	m.SetAmbientLight(-1)
	if m.AmbientLight() != 0 {
		t.Errorf("AmbientLight() = %v, want 0", m.AmbientLight())
	}
}
