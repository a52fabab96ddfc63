package game

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/dice"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render/raycast"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/surface"
	"chosenoffset.com/goldbox/internal/ui/combat"
	"chosenoffset.com/goldbox/internal/ui/dungeon"
	"chosenoffset.com/goldbox/internal/ui/inventory"
	"chosenoffset.com/goldbox/internal/ui/menu"
	"chosenoffset.com/goldbox/internal/ui/narrative"
	"chosenoffset.com/goldbox/internal/ui/overworld"
	"chosenoffset.com/goldbox/internal/ui/sheet"
)

// Physical key codes bound to global shortcuts.
const (
	CodeEscape    = "Escape"
	CodeQuicksave = "F5"
	CodeQuickload = "F9"
)

const slotTimeout = 2 * time.Second

// Option configures a Game.
type Option func(*Game)

// WithClock replaces the wall clock used for frame deltas and transition
// effects.
func WithClock(c screen.Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithLogger sets the game's logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) { g.logger = l }
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// New wires the state store, screen manager and input manager, registers
// every screen and enters the main menu.
func New(ctx context.Context, cfg config.Config, be Backend, slots gamestate.SlotStore, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:    cfg,
		slots:  slots,
		poller: be.Poller,
		audio:  be.Audio,
		logger: log.New(io.Discard),
		clock:  wallClock{},
		width:  cfg.Render.Width,
		height: cfg.Render.Height,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.audio == nil {
		g.audio = audio.Nop{}
	}
	g.renderer = be.Renderer

	g.store = gamestate.New(nil, g.logger.WithPrefix("state"))
	g.host = surface.NewHost(be.Renderer, cfg.Render.Width, cfg.Render.Height)
	g.screens = screen.NewManager(g.host, be.Renderer, g.store,
		screen.WithClock(g.clock),
		screen.WithLogger(g.logger.WithPrefix("screen")),
	)
	g.input = input.NewManager(g.screens, be.Locker, g.logger.WithPrefix("input"), string(screen.Dungeon))

	sc := g.screens.Context()
	sc.GPU = be.GPU
	sc.Pointer = g.input
	sc.Keys = g.input
	sc.Audio = g.audio

	g.input.Attach(g.host.Current())
	g.unobserve = g.host.Observe(func(s *surface.Surface) {
		g.input.Attach(s)
	})

	g.input.RegisterShortcut(CodeEscape, g.escape)
	g.input.RegisterShortcut(CodeQuicksave, g.quicksave)
	g.input.RegisterShortcut(CodeQuickload, g.quickload)

	if err := g.registerScreens(ctx); err != nil {
		g.Close()
		return nil, err
	}
	if err := g.screens.Transition(ctx, screen.MainMenu, screen.Options{Effect: screen.Instant}); err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to enter main menu: %w", err)
	}
	g.last = g.clock.Now()
	g.logger.Info("game ready", "width", g.width, "height", g.height)
	return g, nil
}

func (g *Game) registerScreens(ctx context.Context) error {
	seed := g.cfg.Combat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	roller := dice.NewSeeded(seed)

	g.dungeon = dungeon.New(g.cfg.Dungeon, raycast.Config{
		Width:    g.cfg.Render.Width,
		Height:   g.cfg.Render.Height,
		FOV:      g.cfg.Render.FOVDegrees * math.Pi / 180,
		MaxSteps: g.cfg.Render.MaxSteps,
	})

	for _, s := range []screen.Screen{
		menu.New(g.slots, g.cfg.Overworld.Map),
		overworld.New(g.cfg.Overworld, roller),
		g.dungeon,
		combat.New(roller, narrative.NewProseGenerator(seed)),
		sheet.New(),
		inventory.New(),
	} {
		if err := g.screens.Register(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) fade() screen.Options {
	return screen.Options{Effect: screen.Fade, Duration: g.cfg.Transitions.Default()}
}

// escape closes the top modal, backs out of a pending selection, or returns
// to the main menu.
func (g *Game) escape() {
	if g.screens.State() != screen.Idle {
		return
	}
	if g.screens.ModalDepth() > 0 {
		if err := g.screens.PopModal(); err != nil {
			g.logger.Warn("failed to close modal", "err", err)
		}
		return
	}
	active := g.screens.Active()
	if c, ok := active.(screen.Canceler); ok && c.Cancel() {
		return
	}
	if active == nil || active.ID() == screen.MainMenu {
		return
	}
	g.input.ReleasePointerLock()
	g.input.ClearState()
	if err := g.screens.Go(context.Background(), screen.MainMenu, g.fade()); err != nil {
		g.logger.Error("failed to open main menu", "err", err)
	}
}

func (g *Game) quicksave() {
	if g.screens.ActiveID() == string(screen.MainMenu) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), slotTimeout)
	defer cancel()
	if err := g.store.Save(ctx, g.slots, gamestate.SlotQuick); err != nil {
		g.ShowMessage("Quicksave failed")
		return
	}
	g.audio.Play(audio.CueSave)
	g.ShowMessage("Quicksaved")
}

// quickload swaps in the quicksave once the current screens have exited, so
// their exit hooks cannot write over the restored tree.
func (g *Game) quickload() {
	if g.screens.State() != screen.Idle {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), slotTimeout)
	defer cancel()
	st, err := gamestate.ReadSlot(ctx, g.slots, gamestate.SlotQuick)
	if err != nil {
		g.logger.Warn("quickload failed", "err", err)
		g.ShowMessage("No quicksave found")
		return
	}

	id, params := menu.Destination(st, g.cfg.Overworld.Map)
	opts := g.fade()
	opts.Params = params
	opts.Prepare = func(context.Context) error {
		g.store.Load(st)
		g.logger.Info("game loaded", "slot", gamestate.SlotQuick)
		return nil
	}
	g.input.ReleasePointerLock()
	g.input.ClearState()
	if err := g.screens.Go(context.Background(), id, opts); err != nil {
		g.logger.Error("failed to resume quicksave", "to", id, "err", err)
		return
	}
	g.ShowMessage("Quickloaded")
}
