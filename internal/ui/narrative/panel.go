// Package narrative provides the combat log: event narration and the panel
// that shows the most recent lines.
package narrative

import (
	"image/color"
	"strings"

	"chosenoffset.com/goldbox/internal/render"
)

// LogEntry is a single entry in the action log
type LogEntry struct {
	Text  string
	Lines []string // Wrapped lines for display
	Color color.RGBA
	Round int
}

// Panel is a scrolling log box.
type Panel struct {
	// Dimensions
	X, Y          int
	Width, Height int

	actionLog  []LogEntry
	maxEntries int

	// Visual settings
	bgColor     color.RGBA
	textColor   color.RGBA
	borderColor color.RGBA
	lineHeight  int
	padding     int
	textScale   float64
}

// Log colours.
var (
	ColorPlain  = color.RGBA{200, 200, 200, 255}
	ColorCombat = color.RGBA{255, 200, 100, 255}
	ColorSystem = color.RGBA{150, 150, 255, 255}
	ColorDanger = color.RGBA{255, 107, 107, 255}
)

// NewPanel creates a new log panel
func NewPanel(x, y, width, height int) *Panel {
	return &Panel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		maxEntries:  50,
		bgColor:     color.RGBA{0, 0, 0, 204},
		textColor:   ColorPlain,
		borderColor: color.RGBA{212, 175, 55, 255},
		lineHeight:  14,
		padding:     8,
		textScale:   0.8,
	}
}

// AddLogEntry adds a new entry to the action log
func (p *Panel) AddLogEntry(text string, clr color.RGBA, round int) {
	p.actionLog = append(p.actionLog, LogEntry{
		Text:  text,
		Lines: p.wrapText(text, p.Width-p.padding*2),
		Color: clr,
		Round: round,
	})

	if len(p.actionLog) > p.maxEntries {
		p.actionLog = p.actionLog[len(p.actionLog)-p.maxEntries:]
	}
}

// AddMessage adds a simple message to the log
func (p *Panel) AddMessage(text string, round int) {
	p.AddLogEntry(text, p.textColor, round)
}

// AddCombatMessage adds a combat-related message
func (p *Panel) AddCombatMessage(text string, round int) {
	p.AddLogEntry(text, ColorCombat, round)
}

// AddSystemMessage adds a system message
func (p *Panel) AddSystemMessage(text string, round int) {
	p.AddLogEntry(text, ColorSystem, round)
}

// Entries returns the retained log entries, oldest first.
func (p *Panel) Entries() []LogEntry {
	return append([]LogEntry(nil), p.actionLog...)
}

// Clear empties the log.
func (p *Panel) Clear() {
	p.actionLog = nil
}

// VisibleLines returns the wrapped lines that fit the panel, newest last.
func (p *Panel) VisibleLines() []LogEntry {
	capacity := (p.Height - p.padding*2) / p.lineHeight
	if capacity <= 0 {
		return nil
	}
	var out []LogEntry
	for i := len(p.actionLog) - 1; i >= 0 && len(out) < capacity; i-- {
		entry := p.actionLog[i]
		for j := len(entry.Lines) - 1; j >= 0 && len(out) < capacity; j-- {
			out = append(out, LogEntry{Text: entry.Lines[j], Color: entry.Color, Round: entry.Round})
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// Draw renders the panel.
func (p *Panel) Draw(r render.Renderer, dst render.Image) {
	x, y, w, h := float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height)
	r.FillRect(dst, x, y, w, h, p.bgColor)
	r.StrokeRect(dst, x, y, w, h, 1, p.borderColor)

	ly := p.Y + p.padding
	for _, line := range p.VisibleLines() {
		r.DrawText(dst, line.Text, p.X+p.padding, ly, line.Color, p.textScale)
		ly += p.lineHeight
	}
}

// wrapText wraps text to fit within a given width (approximate)
func (p *Panel) wrapText(text string, maxWidth int) []string {
	// Rough approximation: 6 pixels per character
	charsPerLine := maxWidth / 6
	if charsPerLine < 20 {
		charsPerLine = 20
	}

	words := strings.Fields(text)
	var lines []string
	var currentLine string

	for _, word := range words {
		if len(currentLine)+len(word)+1 > charsPerLine {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		} else {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}
