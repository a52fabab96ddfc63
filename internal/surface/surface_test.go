package surface

import (
	"testing"

	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render/rendertest"
)

func TestReplaceKeepsSizeAndBumpsGeneration(t *testing.T) {
	r := &rendertest.Renderer{}
	h := NewHost(r, 960, 720)
	first := h.Current()

	next := h.Replace()
	if next.Generation() != first.Generation()+1 {
		t.Errorf("Expected generation %d, got %d", first.Generation()+1, next.Generation())
	}
	if w, hgt := next.Size(); w != 960 || hgt != 720 {
		t.Errorf("Expected 960x720, got %dx%d", w, hgt)
	}
	if h.Current() != next {
		t.Error("Current should return the replacement")
	}
	if !first.Detached() || first.Image() != nil {
		t.Error("Old surface should be detached with no image")
	}
	imgs := r.AllImages()
	if len(imgs) != 2 || !imgs[0].IsDisposed() || imgs[1].IsDisposed() {
		t.Error("Old image should be disposed and the new one live")
	}
}

func TestObserversNotifiedSynchronously(t *testing.T) {
	h := NewHost(&rendertest.Renderer{}, 10, 10)
	var seen []uint64
	cancel := h.Observe(func(s *Surface) { seen = append(seen, s.Generation()) })
	h.Observe(func(s *Surface) { seen = append(seen, s.Generation()*100) })

	h.Replace()
	if len(seen) != 2 || seen[0] != 2 || seen[1] != 200 {
		t.Fatalf("Expected both observers in order before Replace returns, got %v", seen)
	}

	cancel()
	h.Replace()
	if len(seen) != 3 || seen[2] != 300 {
		t.Errorf("Cancelled observer still notified: %v", seen)
	}
}

func TestDeliverToListeners(t *testing.T) {
	h := NewHost(&rendertest.Renderer{}, 10, 10)
	s := h.Current()
	var order []int
	s.Listen(func(input.Event) bool { order = append(order, 1); return false })
	detach := s.Listen(func(input.Event) bool { order = append(order, 2); return true })

	if !s.Deliver(input.Event{Type: input.MouseMove}) {
		t.Error("Expected event consumed by the second listener")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected registration order, got %v", order)
	}

	detach()
	if s.Deliver(input.Event{Type: input.MouseMove}) {
		t.Error("Detached listener should not consume")
	}
}

func TestDetachedSurfaceDeliversNothing(t *testing.T) {
	h := NewHost(&rendertest.Renderer{}, 10, 10)
	old := h.Current()
	called := false
	old.Listen(func(input.Event) bool { called = true; return true })

	h.Replace()
	if old.Deliver(input.Event{Type: input.MouseDown}) || called {
		t.Error("A replaced surface must not deliver events")
	}
	if old.Listeners() != 0 {
		t.Error("Listeners should be dropped on detach")
	}
	old.Listen(func(input.Event) bool { return true })
	if old.Listeners() != 0 {
		t.Error("Listening on a detached surface should have no effect")
	}
}
