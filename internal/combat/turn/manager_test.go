package turn

import "testing"

func party() []Combatant {
	return []Combatant{
		{ID: "orc", Name: "Orc", IsEnemy: true, Initiative: 10, CurrentHP: 12, MaxHP: 12},
		{ID: "fighter", Name: "Fighter", Initiative: 15, CurrentHP: 20, MaxHP: 20},
		{ID: "goblin", Name: "Goblin", IsEnemy: true, Initiative: 8, CurrentHP: 8, MaxHP: 8},
		{ID: "wizard", Name: "Wizard", Initiative: 12, CurrentHP: 12, MaxHP: 12},
	}
}

func TestSortedByInitiativeDescending(t *testing.T) {
	m := New(party())
	want := []int{15, 12, 10, 8}
	for i, c := range m.Order() {
		if c.Initiative != want[i] {
			t.Errorf("Position %d: expected initiative %d, got %d", i, want[i], c.Initiative)
		}
	}
}

func TestTiesKeepInputOrder(t *testing.T) {
	m := New([]Combatant{
		{ID: "a", Initiative: 10, CurrentHP: 1},
		{ID: "b", Initiative: 12, CurrentHP: 1},
		{ID: "c", Initiative: 10, CurrentHP: 1},
		{ID: "d", Initiative: 10, CurrentHP: 1},
	})
	got := ""
	for _, c := range m.Order() {
		got += c.ID
	}
	if got != "bacd" {
		t.Errorf("Expected order bacd, got %s", got)
	}
}

func TestNextTurnCyclesAndStartsRound(t *testing.T) {
	m := New(party())
	visited := []int{m.Current().Initiative}

	for i := 0; i < 3; i++ {
		m.NextTurn()
		visited = append(visited, m.Current().Initiative)
		if m.Round() != 1 {
			t.Fatalf("Round advanced early after %d calls", i+1)
		}
	}
	want := []int{15, 12, 10, 8}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Visit %d: expected %d, got %d", i, want[i], visited[i])
		}
	}

	for _, c := range m.All()[:3] {
		if !c.HasActed {
			t.Errorf("%s should have acted", c.ID)
		}
	}

	m.NextTurn()
	if m.Round() != 2 {
		t.Errorf("Expected round 2 after 4 calls, got %d", m.Round())
	}
	if m.Index() != 0 {
		t.Errorf("Expected cursor back at 0, got %d", m.Index())
	}
	for _, c := range m.All() {
		if c.HasActed {
			t.Errorf("%s should have its acted flag cleared", c.ID)
		}
	}
}

func TestNextTurnSkipsDefeated(t *testing.T) {
	m := New(party())
	m.ApplyDamage("wizard", 100)
	m.NextTurn()
	if got := m.Current().ID; got != "orc" {
		t.Errorf("Expected orc after skipping the wizard, got %s", got)
	}
	if len(m.All()) != 4 {
		t.Error("Defeated combatants must stay in the list")
	}
}

func TestNextTurnStopsWhenEveryoneIsDown(t *testing.T) {
	m := New(party())
	for _, c := range m.All() {
		c.CurrentHP = 0
	}
	if m.NextTurn() {
		t.Error("Expected NextTurn to report no living combatant")
	}
	if m.Round() != 2 {
		t.Errorf("Expected one lap (round 2), got round %d", m.Round())
	}
	if got := m.IsCombatOver(); !got.Over {
		t.Error("Expected combat over")
	}
}

func TestIsCombatOver(t *testing.T) {
	m := New(party())
	if got := m.IsCombatOver(); got.Over {
		t.Errorf("Expected ongoing combat, got %+v", got)
	}

	m.ApplyDamage("orc", 12)
	m.ApplyDamage("goblin", 50)
	if got := m.IsCombatOver(); !got.Over || !got.HeroesWon {
		t.Errorf("Expected heroes to win, got %+v", got)
	}

	m = New(party())
	m.ApplyDamage("fighter", 20)
	m.ApplyDamage("wizard", 12)
	if got := m.IsCombatOver(); !got.Over || got.HeroesWon {
		t.Errorf("Expected heroes to lose, got %+v", got)
	}
}

func TestApplyDamageClampsAtZero(t *testing.T) {
	m := New(party())
	if hp := m.ApplyDamage("goblin", 3); hp != 5 {
		t.Errorf("Expected 5 HP, got %d", hp)
	}
	if hp := m.ApplyDamage("goblin", 30); hp != 0 {
		t.Errorf("Expected 0 HP, got %d", hp)
	}
	if m.At(0, 0) == nil {
		t.Error("Expected a living combatant at 0,0")
	}
}

func TestCallbacks(t *testing.T) {
	m := New(party())
	rounds := 0
	turns := 0
	m.OnRoundStart = func(int) { rounds++ }
	m.OnTurnStart = func(*Combatant) { turns++ }
	for i := 0; i < 8; i++ {
		m.NextTurn()
	}
	if rounds != 2 || turns != 8 {
		t.Errorf("Expected 2 rounds and 8 turns, got %d and %d", rounds, turns)
	}
}

func TestEmptyManager(t *testing.T) {
	m := New(nil)
	if m.Current() != nil {
		t.Error("Expected nil current")
	}
	if m.NextTurn() {
		t.Error("NextTurn on empty list should return false")
	}
}

func TestResumeKeepsSavedOrder(t *testing.T) {
	saved := []Combatant{
		{ID: "b", Initiative: 5, CurrentHP: 3},
		{ID: "a", Initiative: 20, CurrentHP: 3},
	}
	m := Resume(saved, 1, 3)
	if m.Current().ID != "a" || m.Round() != 3 {
		t.Fatalf("Expected a in round 3, got %s in round %d", m.Current().ID, m.Round())
	}
	if !m.NextTurn() || m.Current().ID != "b" || m.Round() != 4 {
		t.Errorf("Expected wrap to b in round 4, got %s in round %d", m.Current().ID, m.Round())
	}

	m = Resume(saved, 7, 0)
	if m.Index() != 0 || m.Round() != 1 {
		t.Errorf("Expected cursor 0 round 1, got %d and %d", m.Index(), m.Round())
	}
}
