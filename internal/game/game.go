// Package game wires the screens, state and input together and drives them
// from the engine's frame loop.
package game

import (
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/surface"
	"chosenoffset.com/goldbox/internal/ui/dungeon"
)

const messageTTL = 3.0

// Game implements render.Game.
type Game struct {
	cfg      config.Config
	logger   *log.Logger
	clock    screen.Clock
	renderer render.Renderer

	store   *gamestate.Store
	slots   gamestate.SlotStore
	host    *surface.Host
	screens *screen.Manager
	input   *input.Manager
	poller  Poller
	audio   audio.Player
	dungeon *dungeon.Screen

	width, height int
	last          time.Time
	unobserve     func()

	// Messages are only touched from the frame loop.
	messages []Message
}

// Store returns the game state store.
func (g *Game) Store() *gamestate.Store { return g.store }

// Screens returns the screen manager.
func (g *Game) Screens() *screen.Manager { return g.screens }

// Input returns the input manager.
func (g *Game) Input() *input.Manager { return g.input }

// Messages returns the notices still on screen.
func (g *Game) Messages() []Message { return g.messages }

// Update advances one frame: it routes polled input, then steps the active
// screen by the elapsed time clamped to the configured maximum. The first
// failure reported by a background transition stops the loop.
func (g *Game) Update() error {
	now := g.clock.Now()
	dt := now.Sub(g.last).Seconds()
	g.last = now
	dt = max(0, min(dt, g.cfg.Frame.MaxDt()))

	if g.poller != nil {
		for _, ev := range g.poller.Poll() {
			g.dispatch(ev)
		}
	}

	g.screens.Update(dt)
	g.updateMessages(dt)

	select {
	case err := <-g.screens.Errors():
		return err
	default:
		return nil
	}
}

// dispatch sends keyboard events through the input manager and pointer
// events to the live surface, which the input manager listens on.
func (g *Game) dispatch(ev input.Event) bool {
	if ev.IsKeyboard() {
		return g.input.Deliver(ev)
	}
	return g.host.Current().Deliver(ev)
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Close releases the audio device, the raycaster and any transition still
// waiting on frames.
func (g *Game) Close() {
	if g.unobserve != nil {
		g.unobserve()
	}
	if g.input != nil {
		g.input.Detach()
	}
	if g.screens != nil {
		g.screens.Close()
	}
	if g.dungeon != nil {
		g.dungeon.Close()
	}
	if g.audio != nil {
		g.audio.Close()
	}
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.messages = append(g.messages, Message{
		Text:     text,
		TimeLeft: messageTTL,
		MaxTime:  messageTTL,
	})
	g.logger.Debug("message", "text", text)
}
