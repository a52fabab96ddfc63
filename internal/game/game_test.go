package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/render/rendertest"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/storage"
	"chosenoffset.com/goldbox/internal/ui/uitest"
)

type queue struct {
	mu     sync.Mutex
	events []input.Event
}

func (q *queue) push(evs ...input.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, evs...)
}

func (q *queue) Poll() []input.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

type locker struct{ locked bool }

func (l *locker) Lock()   { l.locked = true }
func (l *locker) Unlock() { l.locked = false }

// spy is a screen that records what the frame loop hands it.
type spy struct {
	id       screen.ID
	enterErr error
	cancels  int
	dts      []float64
	events   []input.Event
}

func (p *spy) ID() screen.ID { return p.id }

func (p *spy) Init(context.Context, *screen.Context) error { return nil }

func (p *spy) Enter(context.Context, screen.ID, screen.Params) error { return p.enterErr }

func (p *spy) Exit(context.Context, screen.ID) error { return nil }

func (p *spy) Update(dt float64) { p.dts = append(p.dts, dt) }

func (p *spy) Draw(render.Image) {}

func (p *spy) HandleInput(ev input.Event) bool {
	p.events = append(p.events, ev)
	return true
}

// Cancel backs out once, then lets escape through.
func (p *spy) Cancel() bool {
	p.cancels++
	return p.cancels == 1
}

type fixture struct {
	g      *Game
	clock  *uitest.Clock
	queue  *queue
	locker *locker
	audio  *audio.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	slots, err := storage.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir() error = %v", err)
	}
	cfg := config.Default()
	cfg.Combat.Seed = 7

	r := &rendertest.Renderer{}
	f := &fixture{
		clock:  &uitest.Clock{},
		queue:  &queue{},
		locker: &locker{},
		audio:  &audio.Recorder{},
	}
	g, err := New(context.Background(), cfg, Backend{
		Renderer: r,
		GPU:      &rendertest.GPU{Device: r},
		Locker:   f.locker,
		Poller:   f.queue,
		Audio:    f.audio,
	}, slots, WithClock(f.clock))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(g.Close)
	f.g = g
	return f
}

func key(code, name string) input.Event {
	return input.Event{Type: input.KeyDown, Code: code, Key: name, Button: input.ButtonNone}
}

// frame polls queued events and runs one Update.
func (f *fixture) frame(t *testing.T, evs ...input.Event) {
	t.Helper()
	f.queue.push(evs...)
	f.clock.Advance(16 * time.Millisecond)
	if err := f.g.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for f.g.Screens().State() != screen.Idle {
		if time.Now().After(deadline) {
			t.Fatalf("transition stuck in %v", f.g.Screens().State())
		}
		f.frame(t)
		f.clock.Advance(100 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.g.Screens().WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle() error = %v", err)
	}
}

func (f *fixture) enter(t *testing.T, id screen.ID) {
	t.Helper()
	if err := f.g.Screens().Transition(context.Background(), id, screen.Options{}); err != nil {
		t.Fatalf("Transition(%s) error = %v", id, err)
	}
}

func (f *fixture) register(t *testing.T, p *spy) {
	t.Helper()
	if err := f.g.Screens().Register(context.Background(), p); err != nil {
		t.Fatalf("Register(%s) error = %v", p.id, err)
	}
}

func TestNewStartsAtMainMenu(t *testing.T) {
	f := newFixture(t)
	if got := f.g.Screens().ActiveID(); got != string(screen.MainMenu) {
		t.Fatalf("active = %q, want main-menu", got)
	}
	for _, id := range []screen.ID{screen.Overworld, screen.Dungeon, screen.Combat, screen.CharacterSheet, screen.Inventory} {
		if !f.g.Screens().Has(id) {
			t.Errorf("%s not registered", id)
		}
	}
	if w, h := f.g.Layout(100, 100); w != 960 || h != 720 {
		t.Errorf("Layout() = %dx%d, want 960x720", w, h)
	}
}

func TestEscapeClosesModalThenLeavesToMenu(t *testing.T) {
	f := newFixture(t)
	f.enter(t, screen.Overworld)

	f.frame(t, key("KeyI", "i"))
	if f.g.Screens().ModalDepth() != 1 || f.g.Screens().ActiveID() != string(screen.Inventory) {
		t.Fatalf("depth = %d active = %s, want the inventory open", f.g.Screens().ModalDepth(), f.g.Screens().ActiveID())
	}

	f.frame(t, key(CodeEscape, "escape"))
	if f.g.Screens().ModalDepth() != 0 || f.g.Screens().ActiveID() != string(screen.Overworld) {
		t.Fatalf("depth = %d active = %s, want back on the overworld", f.g.Screens().ModalDepth(), f.g.Screens().ActiveID())
	}

	f.frame(t, key(CodeEscape, "escape"))
	f.settle(t)
	if got := f.g.Screens().ActiveID(); got != string(screen.MainMenu) {
		t.Errorf("active = %q, want main-menu", got)
	}
}

func TestLeavingForMenuReleasesHeldKeys(t *testing.T) {
	f := newFixture(t)
	f.enter(t, screen.Overworld)

	f.frame(t, key("KeyW", "w"))
	if !f.g.Input().IsKeyDown("w") {
		t.Fatal("w not tracked as held")
	}
	f.frame(t, key(CodeEscape, "escape"))
	f.settle(t)
	if f.g.Input().IsKeyDown("w") {
		t.Error("w still held after returning to the menu")
	}
}

func TestEscapeCancelsSelectionFirst(t *testing.T) {
	f := newFixture(t)
	p := &spy{id: "spy"}
	f.register(t, p)
	f.enter(t, p.id)

	f.frame(t, key(CodeEscape, "escape"))
	if f.g.Screens().State() != screen.Idle || f.g.Screens().ActiveID() != "spy" {
		t.Fatal("escape left the screen instead of cancelling")
	}
	if len(p.events) != 0 {
		t.Errorf("screen saw %d events, want the shortcut intercepted", len(p.events))
	}

	f.frame(t, key(CodeEscape, "escape"))
	f.settle(t)
	if got := f.g.Screens().ActiveID(); got != string(screen.MainMenu) {
		t.Errorf("active = %q, want main-menu on the second escape", got)
	}
}

func TestQuicksaveAndQuickload(t *testing.T) {
	f := newFixture(t)
	f.enter(t, screen.Overworld)

	f.frame(t, key(CodeQuicksave, "f5"))
	if !f.audio.Played(audio.CueSave) {
		t.Error("save cue not played")
	}
	if msgs := f.g.Messages(); len(msgs) == 0 || msgs[0].Text != "Quicksaved" {
		t.Errorf("messages = %+v", msgs)
	}

	f.g.Store().Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{Party: &gamestate.PartyPatch{Gold: gamestate.Ptr(5)}}
	})
	f.frame(t, key(CodeQuickload, "f9"))
	f.settle(t)

	if gold := f.g.Store().Snapshot().Party.Gold; gold != 100 {
		t.Errorf("gold = %d, want the quicksaved 100", gold)
	}
	if got := f.g.Screens().ActiveID(); got != string(screen.Overworld) {
		t.Errorf("active = %q, want overworld", got)
	}
}

func TestQuickloadWithoutSave(t *testing.T) {
	f := newFixture(t)
	f.enter(t, screen.Overworld)

	f.frame(t, key(CodeQuickload, "f9"))
	if f.g.Screens().State() != screen.Idle {
		t.Fatal("quickload started a transition with nothing saved")
	}
	if msgs := f.g.Messages(); len(msgs) == 0 || msgs[0].Text != "No quicksave found" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestQuicksaveIgnoredOnMenu(t *testing.T) {
	f := newFixture(t)
	f.frame(t, key(CodeQuicksave, "f5"))
	if f.audio.Played(audio.CueSave) || len(f.g.Messages()) != 0 {
		t.Error("quicksave ran on the main menu")
	}
}

func TestUpdateClampsDelta(t *testing.T) {
	f := newFixture(t)
	p := &spy{id: "spy"}
	f.register(t, p)
	f.enter(t, p.id)

	f.clock.Advance(time.Second)
	if err := f.g.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(p.dts) != 1 || p.dts[0] != 0.05 {
		t.Errorf("dts = %v, want one step clamped to 0.05", p.dts)
	}
}

func TestPointerEventsReachActiveScreen(t *testing.T) {
	f := newFixture(t)
	p := &spy{id: "spy"}
	f.register(t, p)
	f.enter(t, p.id)

	f.frame(t, input.Event{Type: input.MouseDown, Button: input.ButtonLeft, X: 10, Y: 20})
	if len(p.events) != 1 || p.events[0].Type != input.MouseDown {
		t.Fatalf("events = %+v, want the mousedown", p.events)
	}
	if !f.g.Input().IsMouseButtonDown(input.ButtonLeft) {
		t.Error("button state not tracked")
	}
	if f.locker.locked {
		t.Error("pointer locked outside the dungeon")
	}
}

func TestMessagesFade(t *testing.T) {
	f := newFixture(t)
	f.g.ShowMessage("hello")
	for range 100 {
		f.clock.Advance(50 * time.Millisecond)
		if err := f.g.Update(); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	if len(f.g.Messages()) != 0 {
		t.Errorf("messages = %+v, want expired", f.g.Messages())
	}
}

func TestMessageColorFades(t *testing.T) {
	fresh := Message{Text: "hi", TimeLeft: 3, MaxTime: 3}.color()
	if fresh.A != 255 {
		t.Errorf("fresh alpha = %d, want 255", fresh.A)
	}
	half := Message{Text: "hi", TimeLeft: 1.5, MaxTime: 3}.color()
	if half.A != 127 {
		t.Errorf("half alpha = %d, want 127", half.A)
	}
	r, _, _, a := half.RGBA()
	if r > a {
		t.Errorf("premultiplied red %d exceeds alpha %d", r, a)
	}
	if half.R != 255 {
		t.Errorf("red = %d, want full white while fading", half.R)
	}
}

func TestHookFailureStopsLoop(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")
	f.register(t, &spy{id: "broken", enterErr: boom})

	if err := f.g.Screens().Go(context.Background(), "broken", screen.Options{}); err != nil {
		t.Fatalf("Go() error = %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.clock.Advance(100 * time.Millisecond)
		if err := f.g.Update(); err != nil {
			if !errors.Is(err, boom) {
				t.Fatalf("Update() error = %v, want boom", err)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Update() never reported the failed transition")
}
