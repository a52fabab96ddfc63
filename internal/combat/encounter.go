// Package combat builds encounters, resolves attacks and mirrors the turn
// order into the game state.
package combat

import (
	"fmt"

	"chosenoffset.com/goldbox/internal/combat/turn"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/dice"
)

// Grid dimensions of the tactical board.
const (
	GridWidth  = 12
	GridHeight = 10
)

// Damage expressions.
const (
	HeroDamage  = "1d6+2"
	EnemyDamage = "1d5+1"
)

// EnemyTemplate describes one enemy of an encounter.
type EnemyTemplate struct {
	Name       string
	HP         int
	Initiative string
	GridX      int
	GridY      int
}

// Template is a named group of enemies.
type Template struct {
	ID      string
	Enemies []EnemyTemplate
}

// Templates are the built-in encounters keyed by id.
var Templates = map[string]Template{
	"random": {
		ID: "random",
		Enemies: []EnemyTemplate{
			{Name: "Goblin", HP: 8, Initiative: "1d20+2", GridX: 8, GridY: 4},
			{Name: "Orc", HP: 12, Initiative: "1d20", GridX: 9, GridY: 5},
		},
	},
	"crypt": {
		ID: "crypt",
		Enemies: []EnemyTemplate{
			{Name: "Skeleton", HP: 10, Initiative: "1d20+1", GridX: 8, GridY: 3},
			{Name: "Skeleton", HP: 10, Initiative: "1d20+1", GridX: 8, GridY: 6},
			{Name: "Ghoul", HP: 14, Initiative: "1d20", GridX: 10, GridY: 5},
		},
	},
}

// Lookup returns the template for id, falling back to "random".
func Lookup(id string) Template {
	if t, ok := Templates[id]; ok {
		return t
	}
	return Templates["random"]
}

// Build creates the combatants for an encounter: every living party member
// on the left of the board and the template's enemies on the right.
func Build(party []gamestate.Character, tmpl Template, roller *dice.Roller) ([]turn.Combatant, error) {
	var out []turn.Combatant
	row := 0
	for _, ch := range party {
		if !ch.Alive() {
			continue
		}
		roll, err := roller.Roll(fmt.Sprintf("1d20%+d", gamestate.Modifier(ch.Attributes.Dexterity)))
		if err != nil {
			return nil, err
		}
		out = append(out, turn.Combatant{
			ID:         ch.ID,
			Name:       ch.Name,
			Initiative: roll.Total,
			CurrentHP:  ch.HitPoints.Current,
			MaxHP:      ch.HitPoints.Max,
			GridX:      2 + row/GridHeight,
			GridY:      (5 + row) % GridHeight,
		})
		row++
	}
	for i, e := range tmpl.Enemies {
		roll, err := roller.Roll(e.Initiative)
		if err != nil {
			return nil, fmt.Errorf("enemy %s: %w", e.Name, err)
		}
		out = append(out, turn.Combatant{
			ID:         fmt.Sprintf("enemy%d", i+1),
			Name:       e.Name,
			IsEnemy:    true,
			Initiative: roll.Total,
			CurrentHP:  e.HP,
			MaxHP:      e.HP,
			GridX:      e.GridX,
			GridY:      e.GridY,
		})
	}
	return out, nil
}

// Attack rolls damage for attacker against target and applies it. A
// guarding target takes half, at least 1. It returns the damage dealt, or 0
// if the pair are on the same side or the target is already down.
func Attack(m *turn.Manager, roller *dice.Roller, attacker, target *turn.Combatant) int {
	if attacker == nil || target == nil || attacker.IsEnemy == target.IsEnemy || !target.Alive() {
		return 0
	}
	expr := HeroDamage
	if attacker.IsEnemy {
		expr = EnemyDamage
	}
	dmg := roller.MustRoll(expr)
	if target.Guarding {
		dmg = max(1, dmg/2)
	}
	m.ApplyDamage(target.ID, dmg)
	return dmg
}

// ChooseTarget picks the enemy AI's victim: the first living hero in turn
// order.
func ChooseTarget(m *turn.Manager) *turn.Combatant {
	heroes := m.Living(false)
	if len(heroes) == 0 {
		return nil
	}
	return heroes[0]
}

// Mirror converts the turn manager into the persisted combat slice.
func Mirror(m *turn.Manager) *gamestate.CombatState {
	order := m.Order()
	parts := make([]gamestate.CombatParticipant, len(order))
	for i, c := range order {
		parts[i] = gamestate.CombatParticipant{
			CharacterID: c.ID,
			Name:        c.Name,
			IsEnemy:     c.IsEnemy,
			Initiative:  c.Initiative,
			GridX:       c.GridX,
			GridY:       c.GridY,
			CurrentHP:   c.CurrentHP,
			MaxHP:       c.MaxHP,
			HasActed:    c.HasActed,
			Guarding:    c.Guarding,
		}
	}
	return &gamestate.CombatState{
		Participants: parts,
		CurrentTurn:  m.Index(),
		RoundNumber:  m.Round(),
	}
}

// Restore rebuilds a turn manager from a persisted combat slice, keeping
// its cursor and round.
func Restore(cs gamestate.CombatState) *turn.Manager {
	list := make([]turn.Combatant, len(cs.Participants))
	for i, p := range cs.Participants {
		list[i] = turn.Combatant{
			ID:         p.CharacterID,
			Name:       p.Name,
			IsEnemy:    p.IsEnemy,
			Initiative: p.Initiative,
			CurrentHP:  p.CurrentHP,
			MaxHP:      p.MaxHP,
			GridX:      p.GridX,
			GridY:      p.GridY,
			HasActed:   p.HasActed,
			Guarding:   p.Guarding,
		}
	}
	return turn.Resume(list, cs.CurrentTurn, cs.RoundNumber)
}

// WriteBack copies surviving hero hit points onto the party characters.
func WriteBack(party []gamestate.Character, m *turn.Manager) []gamestate.Character {
	out := make([]gamestate.Character, len(party))
	for i, ch := range party {
		out[i] = ch.Clone()
		if c := m.Find(ch.ID); c != nil && !c.IsEnemy {
			out[i].HitPoints.Current = max(0, min(c.CurrentHP, ch.HitPoints.Max))
		}
	}
	return out
}
