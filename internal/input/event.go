// Package input normalizes device events, keeps pollable key and button
// state, intercepts global shortcuts and forwards the rest to the screen
// layer.
package input

// Type discriminates input events.
type Type string

const (
	KeyDown   Type = "keydown"
	KeyUp     Type = "keyup"
	MouseDown Type = "mousedown"
	MouseUp   Type = "mouseup"
	MouseMove Type = "mousemove"
	Wheel     Type = "wheel"
)

// Mouse buttons, numbered like DOM MouseEvent.button.
const (
	ButtonNone   = -1
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// Event is a normalized input event. Fields that do not apply to the event
// type are left at their zero value (Button is ButtonNone).
type Event struct {
	Type Type
	// Key is the lower-cased key name: "w", "arrowup", "enter", " ".
	Key string
	// Code is the physical key code: "KeyW", "ArrowUp", "F5".
	Code string
	// Button is the mouse button for mousedown/mouseup.
	Button int
	// X and Y are surface-relative pointer coordinates.
	X, Y float64
	// DeltaY is the wheel delta.
	DeltaY float64
	// MovementX and MovementY are relative pointer motion, reported while
	// the pointer is locked.
	MovementX, MovementY float64
}

// IsKeyboard reports whether the event is a key event.
func (e Event) IsKeyboard() bool {
	return e.Type == KeyDown || e.Type == KeyUp
}

// IsPointer reports whether the event is a mouse or wheel event.
func (e Event) IsPointer() bool {
	switch e.Type {
	case MouseDown, MouseUp, MouseMove, Wheel:
		return true
	}
	return false
}
