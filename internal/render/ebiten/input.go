package ebiten

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"chosenoffset.com/goldbox/internal/input"
)

// InputSource polls Ebiten once per tick and turns what changed into
// normalized events.
type InputSource struct {
	lastX, lastY int
	seen         bool
	keys         []ebiten.Key
}

// NewInputSource creates a poller.
func NewInputSource() *InputSource {
	return &InputSource{}
}

var mouseButtons = []struct {
	eb  ebiten.MouseButton
	dom int
}{
	{ebiten.MouseButtonLeft, input.ButtonLeft},
	{ebiten.MouseButtonMiddle, input.ButtonMiddle},
	{ebiten.MouseButtonRight, input.ButtonRight},
}

// Poll returns the events since the previous call, keyboard first.
func (s *InputSource) Poll() []input.Event {
	var out []input.Event

	s.keys = inpututil.AppendJustPressedKeys(s.keys[:0])
	for _, k := range s.keys {
		out = append(out, keyEvent(input.KeyDown, k))
	}
	s.keys = inpututil.AppendJustReleasedKeys(s.keys[:0])
	for _, k := range s.keys {
		out = append(out, keyEvent(input.KeyUp, k))
	}

	x, y := ebiten.CursorPosition()
	if !s.seen {
		s.lastX, s.lastY, s.seen = x, y, true
	}
	if x != s.lastX || y != s.lastY {
		out = append(out, input.Event{
			Type:      input.MouseMove,
			Button:    input.ButtonNone,
			X:         float64(x),
			Y:         float64(y),
			MovementX: float64(x - s.lastX),
			MovementY: float64(y - s.lastY),
		})
		s.lastX, s.lastY = x, y
	}

	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.eb) {
			out = append(out, input.Event{Type: input.MouseDown, Button: b.dom, X: float64(x), Y: float64(y)})
		}
		if inpututil.IsMouseButtonJustReleased(b.eb) {
			out = append(out, input.Event{Type: input.MouseUp, Button: b.dom, X: float64(x), Y: float64(y)})
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		out = append(out, input.Event{Type: input.Wheel, Button: input.ButtonNone, X: float64(x), Y: float64(y), DeltaY: -wy})
	}
	return out
}

func keyEvent(t input.Type, k ebiten.Key) input.Event {
	code, key := KeyNames(k.String())
	return input.Event{Type: t, Key: key, Code: code, Button: input.ButtonNone}
}

// KeyNames maps an Ebiten key name to a physical code and a lower-cased
// key name: "A" is ("KeyA", "a"), "Digit1" is ("Digit1", "1"), "Space" is
// ("Space", " ").
func KeyNames(name string) (code, key string) {
	switch {
	case len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z':
		return "Key" + name, strings.ToLower(name)
	case strings.HasPrefix(name, "Digit") && len(name) == 6:
		return name, name[5:]
	case name == "Space":
		return name, " "
	default:
		return name, strings.ToLower(name)
	}
}

// PointerLock captures the cursor through Ebiten's cursor mode.
type PointerLock struct{}

// Lock hides and captures the cursor.
func (PointerLock) Lock() { ebiten.SetCursorMode(ebiten.CursorModeCaptured) }

// Unlock shows the cursor again.
func (PointerLock) Unlock() { ebiten.SetCursorMode(ebiten.CursorModeVisible) }
