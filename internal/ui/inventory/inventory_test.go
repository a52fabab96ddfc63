package inventory

import (
	"testing"

	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/ui/modal"
	"chosenoffset.com/goldbox/internal/ui/uitest"
)

func has(lines []modal.Line, text string) bool {
	for _, l := range lines {
		if l.Text == text {
			return true
		}
	}
	return false
}

func TestLinesStackAndGroup(t *testing.T) {
	lines := Lines(gamestate.Default().Party)
	for _, want := range []string{
		"Gold: 100 gp",
		"WEAPONS",
		"ARMOR",
		"CONSUMABLES",
		"- Healing Potion x2 (1 lbs) - 50gp",
		"- Rations (1 lbs) - 5gp",
		"Restores 2d4+2 HP",
		"Carried: 2 lbs   Worth: 105 gp",
	} {
		if !has(lines, want) {
			t.Errorf("missing line %q", want)
		}
	}
	if has(lines, "MISCELLANEOUS") {
		t.Error("empty misc section shown")
	}
}

func TestLinesEmpty(t *testing.T) {
	lines := Lines(gamestate.PartyState{Gold: 7})
	if !has(lines, "Gold: 7 gp") || !has(lines, "Inventory is empty") {
		t.Errorf("lines = %+v", lines)
	}
}

func TestOpenAndClose(t *testing.T) {
	h := uitest.New(t, 960, 720)
	s := New()
	h.Register(s)
	h.Stub(screen.Dungeon)
	h.Enter(screen.Dungeon, nil)

	if err := h.Manager.PushModal(screen.Inventory, nil); err != nil {
		t.Fatal(err)
	}
	h.Frame(0)
	if h.Active() != screen.Inventory {
		t.Fatalf("active = %s", h.Active())
	}
	if !has(s.Lines(), "Gold: 100 gp") {
		t.Error("content not built on enter")
	}
	h.Draw()
	if !h.Renderer.TextDrawn("INVENTORY") {
		t.Error("title not drawn")
	}

	h.Press("i")
	h.Frame(0)
	if h.Active() != screen.Dungeon {
		t.Errorf("active = %s, want dungeon after closing", h.Active())
	}
	if got := h.Store.Snapshot().UI.ModalStack; len(got) != 0 {
		t.Errorf("modal stack = %v", got)
	}
}
