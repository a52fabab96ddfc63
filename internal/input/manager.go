package input

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Router receives events the manager does not intercept.
type Router interface {
	// HandleInput returns true when the event was consumed.
	HandleInput(ev Event) bool
	// ActiveID returns the id of the screen currently receiving input.
	ActiveID() string
}

// Target is a surface that pointer listeners attach to.
type Target interface {
	Listen(fn func(Event) bool) (detach func())
}

// Locker captures and releases the pointer.
type Locker interface {
	Lock()
	Unlock()
}

// Manager tracks key and button state and routes events. Keyboard events
// arrive through Deliver; pointer events arrive through whichever Target is
// attached.
type Manager struct {
	mu        sync.Mutex
	keys      map[string]bool
	buttons   map[int]bool
	shortcuts map[string]func()

	router      Router
	locker      Locker
	lockScreens map[string]bool
	locked      bool

	target Target
	detach func()

	logger *log.Logger
}

// NewManager creates an input manager that forwards to router. Pointer lock
// is requested on mousedown only while one of lockScreens is active.
func NewManager(router Router, locker Locker, logger *log.Logger, lockScreens ...string) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Manager{
		keys:        make(map[string]bool),
		buttons:     make(map[int]bool),
		shortcuts:   make(map[string]func()),
		router:      router,
		locker:      locker,
		lockScreens: make(map[string]bool),
		logger:      logger,
	}
	for _, id := range lockScreens {
		m.lockScreens[id] = true
	}
	return m
}

// RegisterShortcut binds a global handler to a physical key code. The
// keydown is never forwarded to the screen layer.
func (m *Manager) RegisterShortcut(code string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortcuts[code] = fn
}

// Attach moves the pointer listener to a new target, detaching it from the
// previous one. Pointer lock and button state belong to the old target and
// are released.
func (m *Manager) Attach(t Target) {
	m.mu.Lock()
	old := m.detach
	m.detach = nil
	m.target = t
	m.buttons = make(map[int]bool)
	wasLocked := m.locked
	m.locked = false
	m.mu.Unlock()

	if old != nil {
		old()
	}
	if wasLocked && m.locker != nil {
		m.locker.Unlock()
	}
	if t == nil {
		return
	}
	detach := t.Listen(m.handlePointer)

	m.mu.Lock()
	m.detach = detach
	m.mu.Unlock()
	m.logger.Debug("input attached to new surface")
}

// Detach removes the pointer listener from the current target.
func (m *Manager) Detach() {
	m.Attach(nil)
}

// Deliver handles a window-level keyboard event and reports whether it was
// consumed.
func (m *Manager) Deliver(ev Event) bool {
	if !ev.IsKeyboard() {
		return false
	}

	m.mu.Lock()
	switch ev.Type {
	case KeyDown:
		m.keys[ev.Key] = true
	case KeyUp:
		delete(m.keys, ev.Key)
	}
	var shortcut func()
	if ev.Type == KeyDown {
		shortcut = m.shortcuts[ev.Code]
	}
	m.mu.Unlock()

	if shortcut != nil {
		m.logger.Debug("global shortcut", "code", ev.Code)
		shortcut()
		return true
	}
	return m.forward(ev)
}

// handlePointer is the listener registered on the attached target.
func (m *Manager) handlePointer(ev Event) bool {
	m.mu.Lock()
	switch ev.Type {
	case MouseDown:
		m.buttons[ev.Button] = true
	case MouseUp:
		delete(m.buttons, ev.Button)
	}
	m.mu.Unlock()

	if ev.Type == MouseDown && m.router != nil && m.lockScreens[m.router.ActiveID()] {
		m.RequestPointerLock()
	}
	return m.forward(ev)
}

func (m *Manager) forward(ev Event) bool {
	if m.router == nil {
		return false
	}
	return m.router.HandleInput(ev)
}

// IsKeyDown reports whether a key (lower-cased name) is held.
func (m *Manager) IsKeyDown(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key]
}

// IsMouseButtonDown reports whether a mouse button is held.
func (m *Manager) IsMouseButtonDown(button int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buttons[button]
}

// RequestPointerLock captures the pointer.
func (m *Manager) RequestPointerLock() {
	m.mu.Lock()
	if m.locked || m.locker == nil {
		m.mu.Unlock()
		return
	}
	m.locked = true
	m.mu.Unlock()
	m.locker.Lock()
}

// ReleasePointerLock frees the pointer.
func (m *Manager) ReleasePointerLock() {
	m.mu.Lock()
	if !m.locked {
		m.mu.Unlock()
		return
	}
	m.locked = false
	m.mu.Unlock()
	if m.locker != nil {
		m.locker.Unlock()
	}
}

// IsPointerLocked reports whether the pointer is captured.
func (m *Manager) IsPointerLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// ClearState forgets every held key and button. Keys held when the screen
// changes would otherwise stay down until their keyup arrives.
func (m *Manager) ClearState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = make(map[string]bool)
	m.buttons = make(map[int]bool)
}
