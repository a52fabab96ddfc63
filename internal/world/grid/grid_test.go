package grid

import "testing"

// 5x5 room with a single wall column at x=3 in rows 1-3.
func room(t *testing.T) *Grid {
	t.Helper()
	cells := []uint32{
		1, 1, 1, 1, 1,
		1, 0, 0, 2, 1,
		1, 0, 0, 2, 1,
		1, 0, 0, 0, 1,
		1, 1, 1, 1, 1,
	}
	g, err := New(5, 5, cells)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestNewValidatesSize(t *testing.T) {
	if _, err := New(2, 2, []uint32{0, 0, 0}); err == nil {
		t.Error("Expected error for short cell slice")
	}
	if _, err := New(0, 2, nil); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestAtAndBlocked(t *testing.T) {
	g := room(t)
	if c, ok := g.At(3, 1); !ok || c != 2 {
		t.Errorf("Expected wall 2 at 3,1, got %d %v", c, ok)
	}
	if !g.Blocked(-1, 2) || !g.Blocked(5, 0) {
		t.Error("Out of bounds must be blocked")
	}
	if g.Blocked(1, 1) {
		t.Error("1,1 should be open")
	}
}

func TestCanOccupyUsesMargin(t *testing.T) {
	g := room(t)
	if !g.CanOccupy(1.5, 1.5, 0.15) {
		t.Error("Centre of an open cell should be free")
	}
	if g.CanOccupy(2.9, 1.5, 0.15) {
		t.Error("Margin should overlap the wall at x=3")
	}
	if !g.CanOccupy(2.8, 1.5, 0.15) {
		t.Error("2.8 + 0.15 stays inside cell 2")
	}
}

func TestSlideAlongWall(t *testing.T) {
	g := room(t)
	// Moving diagonally into the wall at x=3: x is blocked, y continues.
	x, y := g.Slide(2.5, 1.5, 3.2, 2.0, 0.15)
	if x != 2.5 || y != 2.0 {
		t.Errorf("Expected slide to (2.5, 2.0), got (%v, %v)", x, y)
	}

	// Moving diagonally into the top wall: y is blocked, x continues.
	x, y = g.Slide(1.5, 1.3, 2.0, 1.0, 0.15)
	if x != 2.0 || y != 1.3 {
		t.Errorf("Expected slide to (2.0, 1.3), got (%v, %v)", x, y)
	}
}

func TestSlideFullStopInCorner(t *testing.T) {
	g := room(t)
	x, y := g.Slide(1.2, 1.2, 0.9, 0.9, 0.15)
	if x != 1.2 || y != 1.2 {
		t.Errorf("Expected no movement in corner, got (%v, %v)", x, y)
	}
}

func TestSlidePrefersCombinedMove(t *testing.T) {
	g := room(t)
	x, y := g.Slide(1.5, 1.5, 2.0, 2.5, 0.15)
	if x != 2.0 || y != 2.5 {
		t.Errorf("Expected full move, got (%v, %v)", x, y)
	}
}
