package input

import "testing"

type fakeRouter struct {
	active  string
	consume bool
	got     []Event
}

func (r *fakeRouter) HandleInput(ev Event) bool {
	r.got = append(r.got, ev)
	return r.consume
}

func (r *fakeRouter) ActiveID() string { return r.active }

type fakeTarget struct {
	listeners map[int]func(Event) bool
	next      int
}

func newTarget() *fakeTarget { return &fakeTarget{listeners: map[int]func(Event) bool{}} }

func (t *fakeTarget) Listen(fn func(Event) bool) func() {
	t.next++
	id := t.next
	t.listeners[id] = fn
	return func() { delete(t.listeners, id) }
}

func (t *fakeTarget) fire(ev Event) bool {
	handled := false
	for _, fn := range t.listeners {
		if fn(ev) {
			handled = true
		}
	}
	return handled
}

type fakeLocker struct{ locks, unlocks int }

func (l *fakeLocker) Lock()   { l.locks++ }
func (l *fakeLocker) Unlock() { l.unlocks++ }

func keyDown(key, code string) Event { return Event{Type: KeyDown, Key: key, Code: code, Button: ButtonNone} }
func keyUp(key, code string) Event   { return Event{Type: KeyUp, Key: key, Code: code, Button: ButtonNone} }

func TestKeyStateTracksIndependentlyOfScreen(t *testing.T) {
	r := &fakeRouter{consume: false}
	m := NewManager(r, nil, nil)

	m.Deliver(keyDown("w", "KeyW"))
	if !m.IsKeyDown("w") {
		t.Error("Expected w held even though the screen ignored it")
	}
	m.Deliver(keyUp("w", "KeyW"))
	if m.IsKeyDown("w") {
		t.Error("Expected w released")
	}
	if len(r.got) != 2 {
		t.Errorf("Expected 2 forwarded events, got %d", len(r.got))
	}
}

func TestShortcutsInterceptedBeforeScreen(t *testing.T) {
	r := &fakeRouter{consume: true}
	m := NewManager(r, nil, nil)
	saves := 0
	m.RegisterShortcut("F5", func() { saves++ })

	if !m.Deliver(keyDown("f5", "F5")) {
		t.Error("Shortcut keydown should count as handled")
	}
	if saves != 1 {
		t.Errorf("Expected shortcut to run once, got %d", saves)
	}
	for _, ev := range r.got {
		if ev.Type == KeyDown && ev.Code == "F5" {
			t.Error("Screen must never see a shortcut keydown")
		}
	}

	// Matching is by physical code, not key name.
	m.Deliver(keyDown("f5", "KeyF"))
	if saves != 1 {
		t.Error("Shortcut matched on key name instead of code")
	}
}

func TestDeliverReportsConsumption(t *testing.T) {
	m := NewManager(&fakeRouter{consume: true}, nil, nil)
	if !m.Deliver(keyDown("arrowup", "ArrowUp")) {
		t.Error("Expected the screen's consumption to be reported")
	}
	m = NewManager(&fakeRouter{consume: false}, nil, nil)
	if m.Deliver(keyDown("arrowup", "ArrowUp")) {
		t.Error("Expected an ignored key to be reported unconsumed")
	}
}

func TestPointerEventsFlowThroughAttachedTarget(t *testing.T) {
	r := &fakeRouter{consume: true}
	m := NewManager(r, nil, nil)
	old := newTarget()
	m.Attach(old)

	old.fire(Event{Type: MouseDown, Button: ButtonLeft, X: 10, Y: 20})
	if !m.IsMouseButtonDown(ButtonLeft) {
		t.Error("Expected left button held")
	}
	if len(r.got) != 1 || r.got[0].X != 10 {
		t.Fatalf("Expected mousedown forwarded, got %+v", r.got)
	}

	next := newTarget()
	m.Attach(next)
	if len(old.listeners) != 0 {
		t.Error("Listener must be detached from the old target")
	}
	if len(next.listeners) != 1 {
		t.Error("Listener must be attached to the new target")
	}
	if m.IsMouseButtonDown(ButtonLeft) {
		t.Error("Button state belongs to the old target and should be cleared")
	}

	old.fire(Event{Type: MouseDown, Button: ButtonLeft})
	if len(r.got) != 1 {
		t.Error("Events on the old target must be ignored")
	}
	next.fire(Event{Type: MouseMove, X: 5, Y: 6})
	if len(r.got) != 2 {
		t.Error("Events on the new target must be forwarded")
	}
}

func TestPointerLockIsScreenGated(t *testing.T) {
	r := &fakeRouter{active: "overworld"}
	l := &fakeLocker{}
	m := NewManager(r, l, nil, "dungeon")
	tgt := newTarget()
	m.Attach(tgt)

	tgt.fire(Event{Type: MouseDown, Button: ButtonLeft})
	if m.IsPointerLocked() || l.locks != 0 {
		t.Error("Overworld must not request pointer lock")
	}

	r.active = "dungeon"
	tgt.fire(Event{Type: MouseDown, Button: ButtonLeft})
	tgt.fire(Event{Type: MouseDown, Button: ButtonLeft})
	if !m.IsPointerLocked() || l.locks != 1 {
		t.Errorf("Dungeon should lock once, got locked=%v locks=%d", m.IsPointerLocked(), l.locks)
	}

	m.Attach(newTarget())
	if m.IsPointerLocked() || l.unlocks != 1 {
		t.Error("Surface change should release pointer lock")
	}
}

func TestReleasePointerLock(t *testing.T) {
	l := &fakeLocker{}
	m := NewManager(&fakeRouter{}, l, nil)
	m.ReleasePointerLock()
	if l.unlocks != 0 {
		t.Error("Release without lock should be a no-op")
	}
	m.RequestPointerLock()
	m.ReleasePointerLock()
	if l.locks != 1 || l.unlocks != 1 {
		t.Errorf("Expected one lock and one unlock, got %d/%d", l.locks, l.unlocks)
	}
}

func TestClearState(t *testing.T) {
	m := NewManager(&fakeRouter{}, nil, nil)
	m.Deliver(keyDown("a", "KeyA"))
	m.ClearState()
	if m.IsKeyDown("a") {
		t.Error("ClearState should release keys")
	}
}

func TestDeliverIgnoresPointerEvents(t *testing.T) {
	r := &fakeRouter{consume: true}
	m := NewManager(r, nil, nil)
	if m.Deliver(Event{Type: MouseDown}) {
		t.Error("Pointer events must come through the attached target")
	}
	if len(r.got) != 0 {
		t.Error("Pointer event forwarded through Deliver")
	}
}
