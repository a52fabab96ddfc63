// Package turn provides initiative ordering and turn progression for
// tactical combat.
package turn

import "sort"

// Combatant is one participant of an encounter. Defeated combatants stay in
// the list with zero HP so initiative indices never shift.
type Combatant struct {
	ID         string
	Name       string
	IsEnemy    bool
	Initiative int
	CurrentHP  int
	MaxHP      int
	GridX      int
	GridY      int
	// HasActed is set when the combatant's turn ends and cleared at the
	// start of each round. Nothing gates on it; it is shown in the turn
	// order display.
	HasActed bool
	// Guarding halves incoming damage until the combatant's next turn.
	Guarding bool
}

// Alive reports whether the combatant still has hit points.
func (c *Combatant) Alive() bool { return c.CurrentHP > 0 }

// Result is the outcome of IsCombatOver.
type Result struct {
	Over      bool
	HeroesWon bool
}

// Manager tracks the initiative order, the turn cursor and the round.
type Manager struct {
	combatants []*Combatant
	current    int
	round      int

	// Callbacks
	OnRoundStart func(round int)
	OnTurnStart  func(c *Combatant)
}

// New copies the combatants and sorts them once by initiative, highest
// first. Ties keep their input order.
func New(combatants []Combatant) *Manager {
	list := make([]*Combatant, len(combatants))
	for i := range combatants {
		c := combatants[i]
		list[i] = &c
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Initiative > list[j].Initiative
	})
	return &Manager{combatants: list, round: 1}
}

// Resume rebuilds a manager from an order that was already sorted, such as
// a saved encounter. An out-of-range cursor is reset to 0 and a round below
// 1 to 1.
func Resume(order []Combatant, current, round int) *Manager {
	list := make([]*Combatant, len(order))
	for i := range order {
		c := order[i]
		list[i] = &c
	}
	if current < 0 || current >= len(list) {
		current = 0
	}
	return &Manager{combatants: list, current: current, round: max(round, 1)}
}

// Current returns the combatant whose turn it is, or nil if there are none.
func (m *Manager) Current() *Combatant {
	if len(m.combatants) == 0 {
		return nil
	}
	return m.combatants[m.current]
}

// All returns the live combatant list in initiative order. Callers may
// mutate the combatants in place.
func (m *Manager) All() []*Combatant {
	return m.combatants
}

// Order returns a copy of the combatants in initiative order.
func (m *Manager) Order() []Combatant {
	out := make([]Combatant, len(m.combatants))
	for i, c := range m.combatants {
		out[i] = *c
	}
	return out
}

// Round returns the current round number, starting at 1.
func (m *Manager) Round() int { return m.round }

// Index returns the turn cursor.
func (m *Manager) Index() int { return m.current }

// NextTurn marks the current combatant as having acted and advances to the
// next living combatant. Passing index 0 starts a new round. The cursor moves
// at most one full lap; if nobody is alive it stops there and NextTurn
// returns false.
func (m *Manager) NextTurn() bool {
	n := len(m.combatants)
	if n == 0 {
		return false
	}
	m.combatants[m.current].HasActed = true

	for attempts := 0; attempts < n; attempts++ {
		m.current = (m.current + 1) % n
		if m.current == 0 {
			m.round++
			m.resetActed()
			if m.OnRoundStart != nil {
				m.OnRoundStart(m.round)
			}
		}
		if m.combatants[m.current].Alive() {
			if m.OnTurnStart != nil {
				m.OnTurnStart(m.combatants[m.current])
			}
			return true
		}
	}
	return false
}

func (m *Manager) resetActed() {
	for _, c := range m.combatants {
		c.HasActed = false
	}
}

// Find returns the combatant with the given id.
func (m *Manager) Find(id string) *Combatant {
	for _, c := range m.combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// At returns the living combatant occupying a grid cell.
func (m *Manager) At(x, y int) *Combatant {
	for _, c := range m.combatants {
		if c.Alive() && c.GridX == x && c.GridY == y {
			return c
		}
	}
	return nil
}

// Update applies fn to the combatant with the given id.
func (m *Manager) Update(id string, fn func(c *Combatant)) bool {
	c := m.Find(id)
	if c == nil {
		return false
	}
	fn(c)
	return true
}

// ApplyDamage subtracts damage, clamping at zero, and returns the new HP.
func (m *Manager) ApplyDamage(id string, damage int) int {
	hp := 0
	m.Update(id, func(c *Combatant) {
		c.CurrentHP -= damage
		if c.CurrentHP < 0 {
			c.CurrentHP = 0
		}
		hp = c.CurrentHP
	})
	return hp
}

// Living returns the living combatants of one side in initiative order.
func (m *Manager) Living(enemies bool) []*Combatant {
	var out []*Combatant
	for _, c := range m.combatants {
		if c.IsEnemy == enemies && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// IsCombatOver reports whether one side has no living members. It does not
// depend on the cursor.
func (m *Manager) IsCombatOver() Result {
	if len(m.Living(true)) == 0 {
		return Result{Over: true, HeroesWon: true}
	}
	if len(m.Living(false)) == 0 {
		return Result{Over: true, HeroesWon: false}
	}
	return Result{}
}
