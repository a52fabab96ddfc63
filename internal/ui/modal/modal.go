// Package modal draws the framed text overlay shared by the character sheet
// and inventory screens.
package modal

import (
	"image/color"

	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
)

// Colours used by modal content.
var (
	Gold    = color.RGBA{212, 175, 55, 255}
	Text    = color.RGBA{220, 220, 220, 255}
	Dim     = color.RGBA{153, 153, 153, 255}
	Heading = color.RGBA{255, 255, 200, 255}

	dimOverlay  = color.RGBA{0, 0, 0, 153}
	panelColor  = color.RGBA{20, 20, 30, 242}
	borderColor = color.RGBA{212, 175, 55, 255}
	ruleColor   = color.RGBA{85, 85, 85, 255}
)

const (
	lineHeight = 18
	padding    = 20
	titleScale = 1.8
)

// Line is one row of modal content. A Rule line draws a divider instead of
// text.
type Line struct {
	Text   string
	Color  color.RGBA
	Indent int
	Rule   bool
}

// Plain returns a text line in the default colour.
func Plain(text string) Line { return Line{Text: text, Color: Text} }

// Section returns a divider followed by a heading.
func Section(title string) []Line {
	return []Line{{Rule: true}, {Text: title, Color: Heading}}
}

// Box is a centered panel with a title, scrollable lines and a footer hint.
type Box struct {
	Title  string
	Footer string
	Width  int
	Lines  []Line

	scroll int
}

// Scroll moves the first visible line by delta, clamped to the content.
func (b *Box) Scroll(delta int, visible int) {
	b.scroll = max(0, min(b.scroll+delta, len(b.Lines)-visible))
}

// Offset returns the index of the first visible line.
func (b *Box) Offset() int { return b.scroll }

// Reset replaces the lines and scrolls back to the top.
func (b *Box) Reset(lines []Line) {
	b.Lines = lines
	b.scroll = 0
}

// Visible returns how many lines fit a surface of height h.
func Visible(h int) int {
	inner := h*8/10 - padding*2 - 80
	return max(1, inner/lineHeight)
}

// Draw dims dst and draws the box over it. The box takes at most 80% of the
// surface height.
func (b *Box) Draw(r render.Renderer, dst render.Image) {
	w, h := dst.Size()
	r.FillRect(dst, 0, 0, float32(w), float32(h), dimOverlay)

	visible := Visible(h)
	rows := min(len(b.Lines)-b.scroll, visible)
	bw := min(b.Width, w-20)
	bh := padding*2 + 80 + rows*lineHeight
	x, y := (w-bw)/2, (h-bh)/2

	r.FillRect(dst, float32(x), float32(y), float32(bw), float32(bh), panelColor)
	r.StrokeRect(dst, float32(x), float32(y), float32(bw), float32(bh), 3, borderColor)

	tw, th := r.MeasureText(b.Title, titleScale)
	r.DrawText(dst, b.Title, x+(bw-tw)/2, y+padding, Gold, titleScale)
	ty := y + padding + th + 8
	r.StrokeLine(dst, float32(x+padding), float32(ty), float32(x+bw-padding), float32(ty), 2, borderColor)

	ly := ty + 12
	for _, line := range b.Lines[b.scroll : b.scroll+rows] {
		if line.Rule {
			r.StrokeLine(dst, float32(x+padding), float32(ly+lineHeight/2), float32(x+bw-padding), float32(ly+lineHeight/2), 1, ruleColor)
		} else {
			r.DrawText(dst, line.Text, x+padding+line.Indent, ly, line.Color, 1)
		}
		ly += lineHeight
	}

	if b.scroll > 0 || b.scroll+rows < len(b.Lines) {
		r.DrawText(dst, "UP/DOWN to scroll", x+bw-padding-110, y+padding+4, Dim, 0.8)
	}
	fw, _ := r.MeasureText(b.Footer, 1)
	r.DrawText(dst, b.Footer, x+(bw-fw)/2, y+bh-padding-14, Dim, 1)
}

// Closes reports whether ev is a key press of escape or any of keys.
func Closes(ev input.Event, keys ...string) bool {
	if ev.Type != input.KeyDown {
		return false
	}
	if ev.Key == "escape" {
		return true
	}
	for _, k := range keys {
		if ev.Key == k {
			return true
		}
	}
	return false
}

// ScrollDelta maps scroll keys and the wheel to a line delta.
func ScrollDelta(ev input.Event) int {
	switch ev.Type {
	case input.KeyDown:
		switch ev.Key {
		case "arrowup", "w":
			return -1
		case "arrowdown", "s":
			return 1
		case "pageup":
			return -10
		case "pagedown":
			return 10
		}
	case input.Wheel:
		switch {
		case ev.DeltaY < 0:
			return -3
		case ev.DeltaY > 0:
			return 3
		}
	}
	return 0
}
