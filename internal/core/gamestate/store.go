package gamestate

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Slice names a top-level section of the state tree for subscriptions.
type Slice int

const (
	// SliceAll fires on every change.
	SliceAll Slice = iota
	SliceParty
	SliceWorld
	SliceCombat
	SliceUI
	sliceCount
)

func (s Slice) String() string {
	switch s {
	case SliceAll:
		return "all"
	case SliceParty:
		return "party"
	case SliceWorld:
		return "world"
	case SliceCombat:
		return "combat"
	case SliceUI:
		return "ui"
	default:
		return "unknown"
	}
}

// Updater computes a patch from the current state. It receives a private
// copy and must not call Update or Load on the same store.
type Updater func(cur State) Patch

type subscriber struct {
	id int
	fn func(State)
}

// Store owns the single live state tree. All mutation goes through Update
// (merge) or Load (wholesale replace).
type Store struct {
	// wmu serializes writers so an updater always sees the latest tree.
	wmu sync.Mutex

	mu       sync.RWMutex
	state    State
	versions [sliceCount]uint64
	subs     [sliceCount][]subscriber
	nextID   int

	logger *log.Logger
}

// New creates a store. A nil initial state means Default().
func New(initial *State, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	st := Default()
	if initial != nil {
		st = initial.Clone()
	}
	normalize(&st)
	return &Store{state: st, logger: logger}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Version returns the change counter of a slice. SliceAll counts every
// change.
func (s *Store) Version(sl Slice) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[sl]
}

// Update applies the patch produced by fn and notifies subscribers of every
// slice the patch touched. It returns the new state.
func (s *Store) Update(fn Updater) State {
	s.wmu.Lock()
	patch := fn(s.Snapshot())
	touched := patch.touched()
	if len(touched) == 0 {
		s.wmu.Unlock()
		return s.Snapshot()
	}

	s.mu.Lock()
	next := s.state.Clone()
	patch.apply(&next)
	s.state = next
	s.versions[SliceAll]++
	for _, sl := range touched {
		s.versions[sl]++
	}
	notify := s.collect(append([]Slice{SliceAll}, touched...))
	snap := s.state.Clone()
	s.mu.Unlock()
	s.wmu.Unlock()

	for _, fn := range notify {
		fn(snap.Clone())
	}
	return snap
}

// Load replaces the whole tree, as after loading a save.
func (s *Store) Load(st State) {
	s.wmu.Lock()
	next := st.Clone()
	normalize(&next)

	s.mu.Lock()
	s.state = next
	all := make([]Slice, 0, sliceCount)
	for sl := Slice(0); sl < sliceCount; sl++ {
		s.versions[sl]++
		all = append(all, sl)
	}
	notify := s.collect(all)
	snap := s.state.Clone()
	s.mu.Unlock()
	s.wmu.Unlock()

	s.logger.Debug("state replaced", "screen", snap.UI.ActiveScreen, "map", snap.Party.Position.MapID)
	for _, fn := range notify {
		fn(snap.Clone())
	}
}

// Subscribe registers fn for changes to a slice. Callbacks run after the
// write has been committed, so they may write to the store themselves. The
// returned func removes the subscription; calling it twice is harmless.
func (s *Store) Subscribe(sl Slice, fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[sl] = append(s.subs[sl], subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			list := s.subs[sl]
			for i, sub := range list {
				if sub.id == id {
					s.subs[sl] = append(list[:i:i], list[i+1:]...)
					return
				}
			}
		})
	}
}

// collect returns the callbacks for the given slices in subscription order,
// each callback at most once. Caller holds mu.
func (s *Store) collect(slices []Slice) []func(State) {
	seen := make(map[int]bool)
	var subs []subscriber
	for _, sl := range slices {
		for _, sub := range s.subs[sl] {
			if !seen[sub.id] {
				seen[sub.id] = true
				subs = append(subs, sub)
			}
		}
	}
	// Keep registration order across slices.
	for i := 1; i < len(subs); i++ {
		for j := i; j > 0 && subs[j].id < subs[j-1].id; j-- {
			subs[j], subs[j-1] = subs[j-1], subs[j]
		}
	}
	out := make([]func(State), len(subs))
	for i, sub := range subs {
		out[i] = sub.fn
	}
	return out
}

// SetFlag sets a quest flag.
func (s *Store) SetFlag(name string, value bool) {
	s.Update(func(State) Patch {
		return Patch{World: &WorldPatch{QuestFlags: map[string]bool{name: value}}}
	})
}

// IncrementCounter adds delta to a counter and returns the new value.
func (s *Store) IncrementCounter(name string, delta int) int {
	next := s.Update(func(cur State) Patch {
		return Patch{World: &WorldPatch{Counters: map[string]int{name: cur.World.Counters[name] + delta}}}
	})
	return next.World.Counters[name]
}

// normalize fills nil collections so that every live tree has the same shape.
func normalize(st *State) {
	if st.World.QuestFlags == nil {
		st.World.QuestFlags = map[string]bool{}
	}
	if st.World.Counters == nil {
		st.World.Counters = map[string]int{}
	}
	if st.UI.ModalStack == nil {
		st.UI.ModalStack = []string{}
	}
	if st.UI.History == nil {
		st.UI.History = []string{}
	}
}
