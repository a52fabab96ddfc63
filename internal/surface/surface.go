// Package surface provides the drawing surface screens render into. A
// surface is replaced, never reconfigured: switching between the GPU-backed
// raycaster and 2D drawing swaps in a fresh surface and notifies every
// component that holds a reference to the old one.
package surface

import (
	"sort"
	"sync"

	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
)

// Surface is one generation of the drawing surface plus the pointer
// listeners attached to it.
type Surface struct {
	gen    uint64
	width  int
	height int

	mu        sync.Mutex
	img       render.Image
	listeners map[int]func(input.Event) bool
	nextID    int
	detached  bool
}

// Generation identifies this surface. Every replacement increments it.
func (s *Surface) Generation() uint64 { return s.gen }

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// Image returns the backing image, or nil once the surface is detached.
func (s *Surface) Image() render.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Detached reports whether the surface has been replaced.
func (s *Surface) Detached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

// Listen registers a pointer listener. The returned func removes it.
func (s *Surface) Listen(fn func(input.Event) bool) (detach func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	if !s.detached {
		s.listeners[id] = fn
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Listeners returns the number of attached listeners.
func (s *Surface) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Deliver dispatches a pointer event to the listeners in registration order
// and reports whether any consumed it. A detached surface delivers nothing.
func (s *Surface) Deliver(ev input.Event) bool {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return false
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(input.Event) bool, len(ids))
	for i, id := range ids {
		fns[i] = s.listeners[id]
	}
	s.mu.Unlock()

	handled := false
	for _, fn := range fns {
		if fn(ev) {
			handled = true
		}
	}
	return handled
}

func (s *Surface) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = true
	s.listeners = map[int]func(input.Event) bool{}
	if s.img != nil {
		s.img.Dispose()
		s.img = nil
	}
}

// Allocator creates backing images.
type Allocator interface {
	NewImage(width, height int) render.Image
}

type observer struct {
	id int
	fn func(*Surface)
}

// Host owns the live surface. Only its owner may call Replace.
type Host struct {
	alloc Allocator

	mu        sync.Mutex
	current   *Surface
	observers []observer
	nextID    int
}

// NewHost allocates the first surface.
func NewHost(alloc Allocator, width, height int) *Host {
	h := &Host{alloc: alloc}
	h.current = h.newSurface(1, width, height)
	return h
}

func (h *Host) newSurface(gen uint64, width, height int) *Surface {
	return &Surface{
		gen:       gen,
		width:     width,
		height:    height,
		img:       h.alloc.NewImage(width, height),
		listeners: map[int]func(input.Event) bool{},
	}
}

// Current returns the live surface.
func (h *Host) Current() *Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Replace detaches the live surface, disposes its image, allocates a fresh
// one of identical size and synchronously notifies every observer before
// returning it.
func (h *Host) Replace() *Surface {
	h.mu.Lock()
	old := h.current
	next := h.newSurface(old.gen+1, old.width, old.height)
	h.current = next
	obs := make([]func(*Surface), len(h.observers))
	for i, o := range h.observers {
		obs[i] = o.fn
	}
	h.mu.Unlock()

	old.detach()
	for _, fn := range obs {
		fn(next)
	}
	return next
}

// Observe registers fn to be called with each new surface. The returned
// func removes the observer.
func (h *Host) Observe(fn func(*Surface)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.observers = append(h.observers, observer{id: id, fn: fn})
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, o := range h.observers {
			if o.id == id {
				h.observers = append(h.observers[:i:i], h.observers[i+1:]...)
				return
			}
		}
	}
}
