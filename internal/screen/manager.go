package screen

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/surface"
)

// ErrUnknownScreen is returned when a transition or modal names a screen
// that was never registered.
var ErrUnknownScreen = errors.New("screen not found")

// DefaultDuration is used when Options.Duration is zero.
const DefaultDuration = 300 * time.Millisecond

// State is the transition state machine position.
type State int

const (
	Idle State = iota
	ExitingOld
	TransitionEffect
	EnteringNew
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ExitingOld:
		return "exiting"
	case TransitionEffect:
		return "effect"
	case EnteringNew:
		return "entering"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Clock supplies the time used to drive transition effects.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type modalOp struct {
	push   bool
	screen Screen
	params Params
}

// Manager owns the registered screens, the active screen, the modal stack
// and the transition state machine. Update, Draw and HandleInput belong to
// the frame loop; transitions run their hooks off it so effects keep
// animating while hooks are awaited.
type Manager struct {
	sc       *Context
	host     *surface.Host
	renderer render.Renderer
	store    *gamestate.Store
	logger   *log.Logger
	clock    Clock

	// hooks is held while any screen hook or per-frame dispatch runs.
	hooks sync.Mutex

	mu       sync.Mutex
	screens  map[ID]Screen
	active   Screen
	stack    []Screen
	state    State
	effect   Effect
	started  time.Time
	duration time.Duration
	idle     chan struct{}
	pending  []modalOp
	overlay  render.Image
	showFx   bool

	frames chan struct{}
	closed chan struct{}
	once   sync.Once
	errs   chan error
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock used for effects.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager drawing on host's surfaces.
func NewManager(host *surface.Host, renderer render.Renderer, store *gamestate.Store, opts ...Option) *Manager {
	m := &Manager{
		host:     host,
		renderer: renderer,
		store:    store,
		logger:   log.New(io.Discard),
		clock:    realClock{},
		screens:  make(map[ID]Screen),
		idle:     make(chan struct{}),
		frames:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
		errs:     make(chan error, 8),
	}
	close(m.idle)
	for _, opt := range opts {
		opt(m)
	}
	w, h := host.Current().Size()
	m.overlay = renderer.NewImage(w, h)
	host.Observe(m.resizeOverlay)
	m.sc = &Context{
		Store:    store,
		Manager:  m,
		Renderer: renderer,
		Logger:   m.logger,
	}
	return m
}

// Context returns the context shared with screens. Fields such as GPU and
// Pointer may be filled in before the first Register.
func (m *Manager) Context() *Context { return m.sc }

// Surface returns the live drawing surface.
func (m *Manager) Surface() *surface.Surface { return m.host.Current() }

// Register initializes s and makes it available to transitions.
func (m *Manager) Register(ctx context.Context, s Screen) error {
	m.mu.Lock()
	_, dup := m.screens[s.ID()]
	m.mu.Unlock()
	if dup {
		return fmt.Errorf("screen %q already registered", s.ID())
	}
	if err := s.Init(ctx, m.sc); err != nil {
		return fmt.Errorf("init %s: %w", s.ID(), err)
	}
	m.mu.Lock()
	m.screens[s.ID()] = s
	m.mu.Unlock()
	m.logger.Debug("screen registered", "id", s.ID())
	return nil
}

// Has reports whether id is registered.
func (m *Manager) Has(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.screens[id]
	return ok
}

// Active returns the screen receiving frames, or nil.
func (m *Manager) Active() Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// ActiveID returns the active screen id, or "".
func (m *Manager) ActiveID() string {
	if s := m.Active(); s != nil {
		return string(s.ID())
	}
	return ""
}

// State returns the transition state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ModalDepth returns the number of suspended screens below the active one.
func (m *Manager) ModalDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}

// Errors reports hook failures from transitions started with Go and from
// modal operations.
func (m *Manager) Errors() <-chan error { return m.errs }

// WaitIdle blocks until no transition is in flight.
func (m *Manager) WaitIdle(ctx context.Context) error {
	m.mu.Lock()
	idle := m.idle
	m.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases any transition still waiting on frames.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.closed) })
}

// Transition switches to the screen id and returns when the destination has
// entered. A request made while another transition is in flight is logged
// and ignored. It must not be called from a screen hook or per-frame
// method; use Go there.
func (m *Manager) Transition(ctx context.Context, id ID, opts Options) error {
	to, ok, err := m.begin(id, opts)
	if err != nil || !ok {
		return err
	}
	return m.run(context.WithoutCancel(ctx), to, opts)
}

// Go starts a transition and returns immediately. Hook failures are
// delivered on Errors.
func (m *Manager) Go(ctx context.Context, id ID, opts Options) error {
	to, ok, err := m.begin(id, opts)
	if err != nil || !ok {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := m.run(ctx, to, opts); err != nil {
			m.report(err)
		}
	}()
	return nil
}

func (m *Manager) begin(id ID, opts Options) (Screen, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	to, ok := m.screens[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownScreen, id)
	}
	if m.state != Idle {
		m.logger.Warn("transition already in progress", "to", id, "state", m.state)
		return nil, false, nil
	}
	m.state = ExitingOld
	m.idle = make(chan struct{})
	m.effect = opts.Effect
	m.duration = opts.Duration
	if m.duration <= 0 {
		m.duration = DefaultDuration
	}
	m.started = m.clock.Now()
	m.showFx = opts.Effect != Instant
	if len(m.pending) > 0 {
		m.logger.Warn("modal requests dropped by transition", "to", id, "count", len(m.pending))
		m.pending = nil
	}
	return to, true, nil
}

func (m *Manager) run(ctx context.Context, to Screen, opts Options) (err error) {
	defer m.finish()

	m.hooks.Lock()
	m.mu.Lock()
	from := m.active
	suspended := m.stack
	m.mu.Unlock()

	// The screen under any open modals decides the surface kind.
	base := from
	if len(suspended) > 0 {
		base = suspended[0]
	}
	fromID := None
	if base != nil {
		fromID = base.ID()
	}

	if from != nil {
		if err := from.Exit(ctx, to.ID()); err != nil {
			m.hooks.Unlock()
			return fmt.Errorf("exit %s: %w", from.ID(), err)
		}
	}
	for i := len(suspended) - 1; i >= 0; i-- {
		if err := suspended[i].Exit(ctx, to.ID()); err != nil {
			m.hooks.Unlock()
			return fmt.Errorf("exit %s: %w", suspended[i].ID(), err)
		}
	}

	m.mu.Lock()
	m.active = nil
	m.stack = nil
	m.state = TransitionEffect
	m.mu.Unlock()

	if usesGPU(base) != usesGPU(to) {
		s := m.host.Replace()
		m.logger.Debug("surface replaced", "generation", s.Generation(), "from", fromID, "to", to.ID())
	}
	m.hooks.Unlock()

	if opts.Effect != Instant {
		m.waitEffect()
	}

	m.hooks.Lock()
	defer m.hooks.Unlock()
	m.mu.Lock()
	m.state = EnteringNew
	m.showFx = false
	m.active = to
	m.mu.Unlock()

	if opts.Prepare != nil {
		if err := opts.Prepare(ctx); err != nil {
			m.mu.Lock()
			m.active = nil
			m.mu.Unlock()
			return fmt.Errorf("prepare %s: %w", to.ID(), err)
		}
	}
	if err := to.Enter(ctx, fromID, opts.Params); err != nil {
		m.mu.Lock()
		m.active = nil
		m.mu.Unlock()
		return fmt.Errorf("enter %s: %w", to.ID(), err)
	}

	id := string(to.ID())
	m.store.Update(func(cur gamestate.State) gamestate.Patch {
		return gamestate.Patch{UI: &gamestate.UIPatch{
			ActiveScreen: &id,
			ModalStack:   []string{},
			History:      append(cur.UI.History, id),
		}}
	})
	m.logger.Info("screen changed", "from", fromID, "to", id, "effect", opts.Effect)
	return nil
}

func (m *Manager) waitEffect() {
	for {
		m.mu.Lock()
		done := m.clock.Now().Sub(m.started) >= m.duration
		m.mu.Unlock()
		if done {
			return
		}
		select {
		case <-m.frames:
		case <-m.closed:
			return
		}
	}
}

func (m *Manager) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Idle
	m.showFx = false
	m.overlay.Clear()
	close(m.idle)
}

func (m *Manager) report(err error) {
	m.logger.Error("screen hook failed", "err", err)
	select {
	case m.errs <- err:
	default:
	}
}

// PushModal suspends the active screen and activates id on top of it. The
// hooks run at the start of the next Update. Requests made during a
// transition, or still queued when one begins, are logged and dropped.
func (m *Manager) PushModal(id ID, params Params) error {
	return m.queue(id, true, params)
}

// PopModal exits the top modal and resumes the screen below it at the start
// of the next Update.
func (m *Manager) PopModal() error {
	return m.queue(None, false, nil)
}

func (m *Manager) queue(id ID, push bool, params Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Screen
	if push {
		var ok bool
		if s, ok = m.screens[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownScreen, id)
		}
	}
	if m.state != Idle {
		m.logger.Warn("modal request during transition dropped", "id", id, "push", push)
		return nil
	}
	m.pending = append(m.pending, modalOp{push: push, screen: s, params: params})
	return nil
}

// flushModals runs queued modal operations. Caller holds hooks.
func (m *Manager) flushModals(ctx context.Context) {
	m.mu.Lock()
	ops := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, op := range ops {
		var err error
		if op.push {
			err = m.push(ctx, op.screen, op.params)
		} else {
			err = m.pop(ctx)
		}
		if err != nil {
			m.report(err)
		}
	}
}

func (m *Manager) push(ctx context.Context, s Screen, params Params) error {
	if err := s.Enter(ctx, None, params); err != nil {
		return fmt.Errorf("enter modal %s: %w", s.ID(), err)
	}

	m.mu.Lock()
	if m.active != nil {
		m.stack = append(m.stack, m.active)
	}
	m.active = s
	m.mu.Unlock()

	m.syncModals()
	m.logger.Debug("modal pushed", "id", s.ID())
	return nil
}

func (m *Manager) pop(ctx context.Context) error {
	m.mu.Lock()
	if len(m.stack) == 0 {
		m.mu.Unlock()
		m.logger.Warn("no modal to pop")
		return nil
	}
	top := m.active
	below := m.stack[len(m.stack)-1]
	m.mu.Unlock()

	if top != nil {
		if err := top.Exit(ctx, below.ID()); err != nil {
			return fmt.Errorf("exit modal %s: %w", top.ID(), err)
		}
	}

	// The modal is gone once it has exited, whatever the screen below does.
	m.mu.Lock()
	m.stack = m.stack[:len(m.stack)-1]
	m.active = below
	m.mu.Unlock()
	m.syncModals()

	var err error
	if r, ok := below.(Resumer); ok {
		err = r.Resume(ctx)
	} else {
		err = below.Enter(ctx, None, nil)
	}
	if err != nil {
		return fmt.Errorf("resume %s: %w", below.ID(), err)
	}
	m.logger.Debug("modal popped", "active", below.ID())
	return nil
}

// syncModals writes the active screen and modal stack to the store.
func (m *Manager) syncModals() {
	m.mu.Lock()
	active := string(None)
	if m.active != nil {
		active = string(m.active.ID())
	}
	modals := []string{}
	if len(m.stack) > 0 {
		// stack[0] is the screen under the modals; the rest plus active are modals.
		for _, s := range m.stack[1:] {
			modals = append(modals, string(s.ID()))
		}
		modals = append(modals, active)
	}
	m.mu.Unlock()

	m.store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{UI: &gamestate.UIPatch{
			ActiveScreen: &active,
			ModalStack:   modals,
		}}
	})
}

// Update advances the active screen, or the transition effect while one is
// in flight.
func (m *Manager) Update(dt float64) {
	if m.State() != Idle {
		m.renderEffect()
		select {
		case m.frames <- struct{}{}:
		default:
		}
		return
	}
	if !m.hooks.TryLock() {
		return
	}
	defer m.hooks.Unlock()
	if m.State() != Idle {
		return
	}
	m.flushModals(context.Background())
	if s := m.Active(); s != nil {
		s.Update(dt)
	}
}

// Draw renders the active screen into the live surface, with any suspended
// screens beneath it, then composites the surface and the transition overlay
// onto dst.
func (m *Manager) Draw(dst render.Image) {
	if m.State() == Idle && m.hooks.TryLock() {
		if m.State() == Idle {
			if img := m.host.Current().Image(); img != nil {
				m.mu.Lock()
				layers := append(append([]Screen{}, m.stack...), m.active)
				m.mu.Unlock()
				for _, s := range layers {
					if s != nil {
						s.Draw(img)
					}
				}
			}
		}
		m.hooks.Unlock()
	}
	if img := m.host.Current().Image(); img != nil {
		dst.DrawImage(img, nil)
	}
	m.mu.Lock()
	show := m.showFx
	m.mu.Unlock()
	if show {
		dst.DrawImage(m.overlay, nil)
	}
}

// HandleInput routes ev to the active screen. Input is swallowed while a
// transition is in flight.
func (m *Manager) HandleInput(ev input.Event) bool {
	if m.State() != Idle {
		return true
	}
	if !m.hooks.TryLock() {
		return true
	}
	defer m.hooks.Unlock()
	s := m.Active()
	if s == nil {
		return false
	}
	return s.HandleInput(ev)
}

// progressLocked returns the transition effect progress in [0,1].
func (m *Manager) progressLocked() float64 {
	if m.duration <= 0 {
		return 1
	}
	p := float64(m.clock.Now().Sub(m.started)) / float64(m.duration)
	return min(max(p, 0), 1)
}

func (m *Manager) renderEffect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.showFx {
		return
	}
	p := m.progressLocked()
	m.overlay.Clear()
	w, h := m.overlay.Size()
	switch m.effect {
	case Fade:
		m.overlay.Fill(color.NRGBA{A: uint8(FadeAlpha(p) * 255)})
	case Slide:
		m.renderer.FillRect(m.overlay, 0, 0, float32(SlideWidth(p, w)), float32(h), color.Black)
	}
}

func (m *Manager) resizeOverlay(s *surface.Surface) {
	w, h := s.Size()
	m.mu.Lock()
	defer m.mu.Unlock()
	if ow, oh := m.overlay.Size(); ow == w && oh == h {
		return
	}
	m.overlay.Dispose()
	m.overlay = m.renderer.NewImage(w, h)
}

// FadeAlpha is the black overlay opacity at progress p: up to opaque at the
// midpoint, then back to clear.
func FadeAlpha(p float64) float64 {
	if p < 0.5 {
		return p * 2
	}
	return (1 - p) * 2
}

// SlideWidth is the width of the left-to-right wipe at progress p.
func SlideWidth(p float64, width int) float64 {
	return p * float64(width)
}
