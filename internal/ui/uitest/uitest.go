// Package uitest runs screens inside a real screen manager backed by the
// rendertest fakes, with stub destinations and a controllable clock.
package uitest

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/render/rendertest"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/surface"
)

// Clock is a manually advanced screen.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Keys is a settable screen.KeyState.
type Keys struct {
	mu   sync.Mutex
	down map[string]bool
}

func (k *Keys) IsKeyDown(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down[key]
}

func (k *Keys) set(key string, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.down == nil {
		k.down = make(map[string]bool)
	}
	if down {
		k.down[key] = true
	} else {
		delete(k.down, key)
	}
}

// Pointer is a fake screen.PointerLock.
type Pointer struct {
	mu     sync.Mutex
	locked bool
}

func (p *Pointer) Lock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = true
}

func (p *Pointer) ReleasePointerLock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = false
}

func (p *Pointer) IsPointerLocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked
}

// Stub is a destination screen that records how it was entered.
type Stub struct {
	id  screen.ID
	gpu bool

	mu     sync.Mutex
	froms  []screen.ID
	params []screen.Params
}

func (s *Stub) ID() screen.ID { return s.id }
func (s *Stub) UsesGPU() bool { return s.gpu }

func (s *Stub) Init(context.Context, *screen.Context) error { return nil }

func (s *Stub) Enter(_ context.Context, from screen.ID, p screen.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.froms = append(s.froms, from)
	s.params = append(s.params, p)
	return nil
}

func (s *Stub) Exit(context.Context, screen.ID) error { return nil }
func (s *Stub) Update(float64)                        {}
func (s *Stub) Draw(render.Image)                     {}
func (s *Stub) HandleInput(input.Event) bool          { return false }

// Entries returns how many times the stub was entered.
func (s *Stub) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.froms)
}

// LastParams returns the params of the most recent Enter.
func (s *Stub) LastParams() screen.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.params) == 0 {
		return nil
	}
	return s.params[len(s.params)-1]
}

// Harness owns a manager and its fakes.
type Harness struct {
	t *testing.T

	Renderer *rendertest.Renderer
	Host     *surface.Host
	Store    *gamestate.Store
	Manager  *screen.Manager
	Clock    *Clock
	Keys     *Keys
	Pointer  *Pointer
	Audio    *audio.Recorder
	Stubs    map[screen.ID]*Stub
}

// New creates a harness with a w by h surface and the default game state.
func New(t *testing.T, w, h int) *Harness {
	t.Helper()
	logger := log.New(io.Discard)
	r := &rendertest.Renderer{}
	host := surface.NewHost(r, w, h)
	store := gamestate.New(nil, logger)
	clock := &Clock{now: time.Unix(0, 0)}
	m := screen.NewManager(host, r, store, screen.WithClock(clock), screen.WithLogger(logger))

	h := &Harness{
		t:        t,
		Renderer: r,
		Host:     host,
		Store:    store,
		Manager:  m,
		Clock:    clock,
		Keys:     &Keys{},
		Pointer:  &Pointer{},
		Audio:    &audio.Recorder{},
		Stubs:    map[screen.ID]*Stub{},
	}
	sc := m.Context()
	sc.Keys = h.Keys
	sc.Pointer = h.Pointer
	sc.Audio = h.Audio
	sc.GPU = &rendertest.GPU{Device: r}
	t.Cleanup(m.Close)
	return h
}

// Register adds a screen under test.
func (h *Harness) Register(s screen.Screen) {
	h.t.Helper()
	if err := h.Manager.Register(context.Background(), s); err != nil {
		h.t.Fatalf("Register(%s) error = %v", s.ID(), err)
	}
}

// Stub registers recording destinations for ids.
func (h *Harness) Stub(ids ...screen.ID) {
	h.t.Helper()
	for _, id := range ids {
		s := &Stub{id: id, gpu: id == screen.Dungeon}
		h.Stubs[id] = s
		h.Register(s)
	}
}

// Enter switches to id immediately.
func (h *Harness) Enter(id screen.ID, params screen.Params) {
	h.t.Helper()
	if err := h.Manager.Transition(context.Background(), id, screen.Options{Params: params}); err != nil {
		h.t.Fatalf("Transition(%s) error = %v", id, err)
	}
}

// Press delivers a key down and reports whether it was consumed.
func (h *Harness) Press(key string) bool {
	return h.Manager.HandleInput(input.Event{Type: input.KeyDown, Key: key, Button: input.ButtonNone})
}

// Hold marks key as held for polling.
func (h *Harness) Hold(key string) { h.Keys.set(key, true) }

// Release clears a held key.
func (h *Harness) Release(key string) { h.Keys.set(key, false) }

// Send delivers an arbitrary event.
func (h *Harness) Send(ev input.Event) bool { return h.Manager.HandleInput(ev) }

// Frame runs one Update of dt seconds.
func (h *Harness) Frame(dt float64) { h.Manager.Update(dt) }

// Settle drives any in-flight transition to completion, advancing the clock
// as frames pass.
func (h *Harness) Settle() {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.Manager.State() != screen.Idle {
		if time.Now().After(deadline) {
			h.t.Fatalf("transition stuck in %v", h.Manager.State())
		}
		h.Clock.Advance(100 * time.Millisecond)
		h.Manager.Update(0)
		time.Sleep(time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Manager.WaitIdle(ctx); err != nil {
		h.t.Fatalf("WaitIdle() error = %v", err)
	}
}

// Draw renders one frame into a fresh image.
func (h *Harness) Draw() {
	w, hh := h.Host.Current().Size()
	h.Manager.Draw(h.Renderer.NewImage(w, hh))
}

// Active returns the active screen id.
func (h *Harness) Active() screen.ID { return screen.ID(h.Manager.ActiveID()) }

// Err returns a pending hook error, if any.
func (h *Harness) Err() error {
	select {
	case err := <-h.Manager.Errors():
		return err
	default:
		return nil
	}
}
