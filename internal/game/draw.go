package game

import (
	"image/color"

	"chosenoffset.com/goldbox/internal/render"
)

// Draw renders the screen stack, then any notices over it.
func (g *Game) Draw(screen render.Image) {
	g.screens.Draw(screen)
	g.drawMessages(screen)
}

func (g *Game) drawMessages(screen render.Image) {
	w, _ := screen.Size()
	y := 50
	for _, msg := range g.messages {
		tw, _ := g.renderer.MeasureText(msg.Text, 1)
		g.renderer.DrawText(screen, msg.Text, (w-tw)/2, y, msg.color(), 1.0)
		y += 20
	}
}

// color is white, fading out over the message's lifetime.
func (m Message) color() color.NRGBA {
	alpha := uint8(255 * max(0, min(1, m.TimeLeft/m.MaxTime)))
	return color.NRGBA{255, 255, 255, alpha}
}
