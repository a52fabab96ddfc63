// Package screen defines the game mode contract and the manager that drives
// transitions, modal stacking and per-frame dispatch between modes.
package screen

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/surface"
)

// ID identifies a registered screen.
type ID string

// Screen ids.
const (
	None           ID = ""
	MainMenu       ID = "main-menu"
	Overworld      ID = "overworld"
	Dungeon        ID = "dungeon"
	Combat         ID = "combat"
	CharacterSheet ID = "character-sheet"
	Inventory      ID = "inventory"
)

// Params are free-form values passed from a transition to the destination
// screen's Enter.
type Params map[string]any

// String returns a string param or "".
func (p Params) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Screen is one interactive game mode.
type Screen interface {
	ID() ID
	// Init is called once at registration.
	Init(ctx context.Context, sc *Context) error
	// Enter is called when the screen becomes active. from is None for the
	// first screen, for a modal and when a modal above it is popped.
	Enter(ctx context.Context, from ID, params Params) error
	// Exit is called before the screen stops being active.
	Exit(ctx context.Context, to ID) error
	// Update advances the screen by dt seconds.
	Update(dt float64)
	// Draw renders the screen.
	Draw(dst render.Image)
	// HandleInput returns true if the event was consumed.
	HandleInput(ev input.Event) bool
}

// Resumer is implemented by screens that distinguish being uncovered by a
// popped modal from a fresh Enter.
type Resumer interface {
	Resume(ctx context.Context) error
}

// GPUUser is implemented by screens that render through the GPU-backed
// raycaster. Switching to or from such a screen replaces the surface.
type GPUUser interface {
	UsesGPU() bool
}

// Canceler is implemented by screens with a pending selection that the
// escape key backs out of before it leaves the screen.
type Canceler interface {
	Cancel() bool
}

// PointerLock releases a captured pointer.
type PointerLock interface {
	ReleasePointerLock()
	IsPointerLocked() bool
}

// KeyState is pollable keyboard state.
type KeyState interface {
	IsKeyDown(key string) bool
}

// Context is shared with every screen at Init.
type Context struct {
	Store    *gamestate.Store
	Manager  *Manager
	Renderer render.Renderer
	GPU      render.GPU
	Pointer  PointerLock
	Keys     KeyState
	Audio    audio.Player
	Logger   *log.Logger
}

// KeyDown reports whether any of keys is held. It is false when no key
// state is wired.
func (c *Context) KeyDown(keys ...string) bool {
	if c.Keys == nil {
		return false
	}
	for _, k := range keys {
		if c.Keys.IsKeyDown(k) {
			return true
		}
	}
	return false
}

// Play plays a sound cue if audio is wired.
func (c *Context) Play(cue audio.Cue) {
	if c.Audio != nil {
		c.Audio.Play(cue)
	}
}

// Surface returns the live drawing surface.
func (c *Context) Surface() *surface.Surface {
	return c.Manager.Surface()
}

// Effect is a transition's visual effect.
type Effect int

const (
	Instant Effect = iota
	Fade
	Slide
)

func (e Effect) String() string {
	switch e {
	case Fade:
		return "fade"
	case Slide:
		return "slide"
	default:
		return "instant"
	}
}

// Options configure a transition. A zero Duration uses the manager default.
type Options struct {
	Effect   Effect
	Duration time.Duration
	Params   Params
	// Prepare runs after the old screens have exited and before the
	// destination enters. A quickload swaps the state tree here.
	Prepare func(ctx context.Context) error
}

func usesGPU(s Screen) bool {
	if s == nil {
		return false
	}
	g, ok := s.(GPUUser)
	return ok && g.UsesGPU()
}
