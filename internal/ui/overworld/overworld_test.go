package overworld

import (
	"math"
	"testing"
	"time"

	"chosenoffset.com/goldbox/internal/config"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/dice"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/ui/uitest"
)

func setup(t *testing.T, chance float64, interval time.Duration) (*uitest.Harness, *Screen) {
	t.Helper()
	cfg := config.Default().Overworld
	cfg.EncounterChance = chance
	cfg.EncounterInterval = interval

	h := uitest.New(t, 960, 720)
	s := New(cfg, dice.NewSeeded(1))
	h.Register(s)
	h.Stub(screen.MainMenu, screen.Dungeon, screen.Combat, screen.CharacterSheet, screen.Inventory)
	h.Enter(screen.Overworld, nil)
	return h, s
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEnterUsesSavedPosition(t *testing.T) {
	_, s := setup(t, 0, time.Second)
	if x, y := s.Position(); x != 16 || y != 16 {
		t.Errorf("position = (%v, %v), want the default (16, 16)", x, y)
	}
}

func TestMountainsBlockMovement(t *testing.T) {
	h, s := setup(t, 0, time.Second)
	s.Place(1.2, 5.5)
	h.Hold("a")
	h.Frame(0.1)

	if x, _ := s.Position(); x != 1.2 {
		t.Errorf("x = %v, want 1.2: the mountain border is impassable", x)
	}
}

func TestDiagonalMovementIsNormalized(t *testing.T) {
	h, s := setup(t, 0, time.Second)
	s.Place(5.5, 5.5)
	h.Hold("d")
	h.Hold("s")
	h.Frame(0.25)

	x, y := s.Position()
	step := diagonal * 4 * 0.25
	if !near(x, 5.5+step) || !near(y, 5.5+step) {
		t.Errorf("position = (%v, %v), want both axes advanced by %v", x, y, step)
	}
}

func TestEncounterOnGrass(t *testing.T) {
	h, s := setup(t, 1, 3*time.Second)
	s.Place(5.5, 5.5)
	h.Hold("d")
	for i := 0; i < 3; i++ {
		h.Frame(1)
	}
	h.Settle()

	if h.Active() != screen.Combat {
		t.Fatalf("active = %s, want combat", h.Active())
	}
	if got := h.Stubs[screen.Combat].LastParams().String("encounterType"); got != "random" {
		t.Errorf("encounterType = %q", got)
	}
	pos := h.Store.Snapshot().Party.Position
	if pos.MapID != "overworld" || !near(pos.X, 17.5) {
		t.Errorf("saved position = %+v, want overworld x=17.5", pos)
	}
}

func TestNoEncounterOnRoad(t *testing.T) {
	h, s := setup(t, 1, time.Second)
	s.Place(5.5, 16.5)
	h.Hold("d")
	for i := 0; i < 4; i++ {
		h.Frame(0.5)
	}
	if h.Active() != screen.Overworld || h.Manager.State() != screen.Idle {
		t.Errorf("active = %s state = %v, want to stay on the road", h.Active(), h.Manager.State())
	}
}

func TestEnterDungeonAndReturn(t *testing.T) {
	h, s := setup(t, 0, time.Second)
	s.Place(44.3, 4.6)

	if _, ok := s.NearbyDungeon(); !ok {
		t.Fatal("dungeon entrance should be in reach")
	}
	h.Press("enter")
	h.Settle()

	if h.Active() != screen.Dungeon {
		t.Fatalf("active = %s, want dungeon", h.Active())
	}
	if got := h.Stubs[screen.Dungeon].LastParams().String("dungeonId"); got != "dungeon_1" {
		t.Errorf("dungeonId = %q", got)
	}
	st := h.Store.Snapshot()
	if st.World.CurrentMap != "dungeon_1" {
		t.Errorf("current map = %q", st.World.CurrentMap)
	}
	if pos := st.Party.Position; pos.MapID != "overworld" || !near(pos.X, 44.3) {
		t.Errorf("saved position = %+v", pos)
	}

	s.Place(5, 5)
	h.Enter(screen.Overworld, nil)
	if x, y := s.Position(); !near(x, 44.3) || !near(y, 4.6) {
		t.Errorf("position after return = (%v, %v), want (44.3, 4.6)", x, y)
	}
	if got := h.Store.Snapshot().World.CurrentMap; got != "overworld" {
		t.Errorf("current map after return = %q", got)
	}
}

func TestEnterAwayFromDungeonDoesNothing(t *testing.T) {
	h, _ := setup(t, 0, time.Second)
	if !h.Press("enter") {
		t.Error("enter should be consumed")
	}
	if h.Manager.State() != screen.Idle || h.Active() != screen.Overworld {
		t.Error("enter away from a dungeon must not transition")
	}
}

func TestModalKeys(t *testing.T) {
	h, _ := setup(t, 0, time.Second)
	h.Press("i")
	h.Frame(0)
	if h.Active() != screen.Inventory || h.Manager.ModalDepth() != 1 {
		t.Fatalf("active = %s depth = %d, want inventory over the map", h.Active(), h.Manager.ModalDepth())
	}
}

func TestViewportClampsToMap(t *testing.T) {
	_, s := setup(t, 0, time.Second)
	s.Place(1, 1)
	if x, y := s.View(); x != 0 || y != 0 {
		t.Errorf("view = (%v, %v), want (0, 0)", x, y)
	}
	s.Place(63, 63)
	if x, y := s.View(); x != 64-ViewportWidth || y != 64-ViewportHeight {
		t.Errorf("view = (%v, %v), want the bottom-right corner", x, y)
	}
}

func TestDrawShowsGoldAndPrompt(t *testing.T) {
	h, s := setup(t, 0, time.Second)
	s.Place(44.5, 4.5)
	h.Draw()

	for _, want := range []string{"Gold: 100", "The Sunken Crypt", "Press ENTER to enter dungeon"} {
		if !h.Renderer.TextDrawn(want) {
			t.Errorf("%q not drawn", want)
		}
	}
}

func TestWalkable(t *testing.T) {
	for code, want := range map[int]bool{0: true, 1: true, 2: true, 3: false, 4: false, 5: true, 6: true} {
		if Walkable(code) != want {
			t.Errorf("Walkable(%d) = %v", code, !want)
		}
	}
}

func TestReturnFromDungeonStartsAtEntrance(t *testing.T) {
	h, s := setup(t, 0, time.Second)
	h.Enter(screen.Dungeon, nil)
	h.Store.Update(func(gamestate.State) gamestate.Patch {
		return gamestate.Patch{Party: &gamestate.PartyPatch{Position: gamestate.PositionTo(gamestate.WorldPosition{MapID: "dungeon_2", X: 3, Y: 3})}}
	})

	h.Enter(screen.Overworld, nil)
	if x, y := s.Position(); x != 22.5 || y != 58.5 {
		t.Errorf("position = (%v, %v), want the Goblin Warrens entrance", x, y)
	}
}
