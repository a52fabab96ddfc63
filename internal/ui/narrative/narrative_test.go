package narrative

import (
	"strings"
	"testing"

	"chosenoffset.com/goldbox/internal/render/rendertest"
)

func TestPlainNarration(t *testing.T) {
	tn := NewTurnNarrator(nil)
	lines := tn.RecordAttack("Warrior", "Goblin", 5, false, true)
	want := []string{"Warrior hits the Goblin for 5 damage.", "The Goblin falls!"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Fatalf("RecordAttack() = %q, want %q", lines, want)
	}
	tn.RecordAttack("Orc", "Warrior", 0, true, false)
	tn.Record(TurnEvent{Type: EventRoundStart, Value: 2})

	got := tn.Lines()
	if len(got) != 4 {
		t.Fatalf("Lines() = %q", got)
	}
	if got[2] != "Orc's attack misses Warrior." || got[3] != "-- Round 2 --" {
		t.Errorf("Lines() = %q", got)
	}
	tn.Reset()
	if len(tn.Events()) != 0 {
		t.Error("Reset() kept events")
	}
}

func TestDescriptionOverrides(t *testing.T) {
	tn := NewTurnNarrator(nil)
	if got := tn.Record(TurnEvent{Type: EventAttack, Description: "custom"}); got != "custom" {
		t.Errorf("Record() = %q", got)
	}
}

func TestProseIsDeterministic(t *testing.T) {
	a, b := NewProseGenerator(3), NewProseGenerator(3)
	for i := 0; i < 10; i++ {
		if va, vb := a.AttackVerb(i), b.AttackVerb(i); va != vb {
			t.Fatalf("same seed gave %q and %q", va, vb)
		}
	}
}

func TestEncounterListsEnemies(t *testing.T) {
	pg := NewProseGenerator(1)
	line := pg.Encounter([]string{"Goblin", " Orc", ""})
	if !strings.Contains(line, "Goblin and an Orc") {
		t.Errorf("Encounter() = %q", line)
	}
	if line[:1] != strings.ToUpper(line[:1]) {
		t.Errorf("Encounter() not capitalized: %q", line)
	}
	if got := pg.Encounter(nil); got != "Something stirs in the dark." {
		t.Errorf("Encounter(nil) = %q", got)
	}
	if got := listNames([]string{"Ghoul", "Imp", "Orc"}); got != "a Ghoul, an Imp and an Orc" {
		t.Errorf("listNames() = %q", got)
	}
}

func TestPanelWrapsAndKeepsNewest(t *testing.T) {
	p := NewPanel(0, 0, 136, 8*2+14*3)
	p.AddMessage("first", 1)
	p.AddCombatMessage("the quick brown fox jumps over the lazy dog again", 1)
	p.AddSystemMessage("last", 2)

	lines := p.VisibleLines()
	if len(lines) != 3 {
		t.Fatalf("VisibleLines() = %+v", lines)
	}
	if lines[2].Text != "last" || lines[2].Color != ColorSystem {
		t.Errorf("newest line = %+v", lines[2])
	}
	if lines[0].Color != ColorCombat {
		t.Errorf("wrapped combat line colour = %v", lines[0].Color)
	}

	r := &rendertest.Renderer{}
	p.Draw(r, &rendertest.Image{W: 200, H: 200})
	if !r.TextDrawn("last") || r.TextDrawn("first") {
		t.Errorf("drawn texts = %q", r.Texts)
	}
}

func TestPanelCapsEntries(t *testing.T) {
	p := NewPanel(0, 0, 200, 100)
	for i := 0; i < 60; i++ {
		p.AddMessage("line", i)
	}
	if n := len(p.Entries()); n != 50 {
		t.Errorf("kept %d entries, want 50", n)
	}
	p.Clear()
	if len(p.Entries()) != 0 {
		t.Error("Clear() kept entries")
	}
}
