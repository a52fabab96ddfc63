package game

import (
	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
)

// Poller returns the input events gathered since the previous frame.
type Poller interface {
	Poll() []input.Event
}

// Backend is what the host platform provides to the game.
type Backend struct {
	Renderer render.Renderer
	GPU      render.GPU
	Locker   input.Locker
	Poller   Poller
	// Audio defaults to a silent player.
	Audio audio.Player
}

// Message is an on-screen notice that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
