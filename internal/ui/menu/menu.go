// Package menu is the title screen: new game, continue, save and load.
package menu

import (
	"context"
	"errors"
	"image/color"
	"time"

	"chosenoffset.com/goldbox/internal/audio"
	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
)

// Item is one menu entry.
type Item int

const (
	NewGame Item = iota
	Continue
	SaveGame
	LoadGame
)

func (i Item) String() string {
	switch i {
	case NewGame:
		return "New Game"
	case Continue:
		return "Continue"
	case SaveGame:
		return "Save Game"
	case LoadGame:
		return "Load Game"
	default:
		return "?"
	}
}

var items = []Item{NewGame, Continue, SaveGame, LoadGame}

const (
	entryWidth   = 280
	entryHeight  = 40
	entryGap     = 16
	messageTTL   = 3.0
	fadeDuration = 500 * time.Millisecond
)

var (
	backgroundColor = color.RGBA{10, 10, 20, 255}
	goldColor       = color.RGBA{212, 175, 55, 255}
	idleColor       = color.RGBA{180, 180, 180, 255}
	hintColor       = color.RGBA{136, 136, 136, 255}
	messageColor    = color.RGBA{255, 100, 100, 255}
)

// Screen is the main menu.
type Screen struct {
	sc           *screen.Context
	slots        gamestate.SlotStore
	overworldMap string

	selected int
	message  string
	msgTimer float64
}

// New creates the menu. Save and load use the manual slot in slots.
// overworldMap names the map that resumes on the overworld screen; any
// other current map resumes in the dungeon.
func New(slots gamestate.SlotStore, overworldMap string) *Screen {
	return &Screen{slots: slots, overworldMap: overworldMap}
}

func (s *Screen) ID() screen.ID { return screen.MainMenu }

func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	return nil
}

func (s *Screen) Enter(context.Context, screen.ID, screen.Params) error {
	s.selected = 0
	s.message = ""
	s.msgTimer = 0
	return nil
}

func (s *Screen) Exit(context.Context, screen.ID) error { return nil }

// Selected returns the highlighted entry.
func (s *Screen) Selected() Item { return items[s.selected] }

// Message returns the status line, empty once it has expired.
func (s *Screen) Message() string { return s.message }

func (s *Screen) Update(dt float64) {
	if s.msgTimer > 0 {
		s.msgTimer -= dt
		if s.msgTimer <= 0 {
			s.message = ""
		}
	}
}

func (s *Screen) Draw(dst render.Image) {
	r := s.sc.Renderer
	w, h := dst.Size()
	dst.Fill(backgroundColor)

	title := "GOLD BOX CRPG"
	tw, _ := r.MeasureText(title, 3)
	r.DrawText(dst, title, (w-tw)/2, h/4, goldColor, 3)

	for i, it := range items {
		x, y := entryRect(i, w, h)
		clr := idleColor
		if i == s.selected {
			clr = goldColor
			r.FillRect(dst, float32(x), float32(y), entryWidth, entryHeight, color.RGBA{212, 175, 55, 26})
			r.StrokeRect(dst, float32(x), float32(y), entryWidth, entryHeight, 2, goldColor)
		}
		label := it.String()
		lw, lh := r.MeasureText(label, 1.5)
		r.DrawText(dst, label, x+(entryWidth-lw)/2, y+(entryHeight-lh)/2, clr, 1.5)
	}

	if s.message != "" {
		mw, _ := r.MeasureText(s.message, 1.2)
		_, y := entryRect(len(items), w, h)
		r.DrawText(dst, s.message, (w-mw)/2, y+entryGap, messageColor, 1.2)
	}

	hint := "Use Arrow Keys or Mouse | Enter to Select"
	hw, _ := r.MeasureText(hint, 1)
	r.DrawText(dst, hint, (w-hw)/2, h-40, hintColor, 1)
}

func (s *Screen) HandleInput(ev input.Event) bool {
	switch ev.Type {
	case input.KeyDown:
		switch ev.Key {
		case "arrowup", "w":
			s.move(-1)
			return true
		case "arrowdown", "s":
			s.move(1)
			return true
		case "enter", " ":
			s.activate(items[s.selected])
			return true
		}
	case input.MouseMove:
		if i, ok := s.itemAt(ev.X, ev.Y); ok {
			s.selected = i
			return true
		}
	case input.MouseDown:
		if ev.Button != input.ButtonLeft {
			return false
		}
		if i, ok := s.itemAt(ev.X, ev.Y); ok {
			s.selected = i
			s.activate(items[i])
			return true
		}
	}
	return false
}

func (s *Screen) move(delta int) {
	s.selected = (s.selected + delta + len(items)) % len(items)
	s.sc.Play(audio.CueSelect)
}

func (s *Screen) activate(it Item) {
	ctx := context.Background()
	s.sc.Play(audio.CueConfirm)
	switch it {
	case NewGame:
		s.sc.Store.Load(gamestate.Default())
		s.travel(s.sc.Store.Snapshot())
	case Continue:
		s.travel(s.sc.Store.Snapshot())
	case SaveGame:
		if err := s.sc.Store.Save(ctx, s.slots, gamestate.SlotManual); err != nil {
			s.say("Save failed.")
			return
		}
		s.sc.Play(audio.CueSave)
		s.say("Game saved.")
	case LoadGame:
		st, err := s.sc.Store.Restore(ctx, s.slots, gamestate.SlotManual)
		switch {
		case errors.Is(err, gamestate.ErrNoSave):
			s.say("No saved game found.")
		case err != nil:
			s.say("Load failed.")
		default:
			s.travel(st)
		}
	}
}

// travel resumes play where st left off.
func (s *Screen) travel(st gamestate.State) {
	id, params := Destination(st, s.overworldMap)
	if err := s.sc.Manager.Go(context.Background(), id, screen.Options{
		Effect:   screen.Fade,
		Duration: fadeDuration,
		Params:   params,
	}); err != nil {
		s.sc.Logger.Error("failed to leave menu", "to", id, "err", err)
	}
}

// Destination picks the screen that resumes st: an unfinished encounter,
// then the dungeon named by the current map, else the overworld.
func Destination(st gamestate.State, overworldMap string) (screen.ID, screen.Params) {
	switch {
	case st.Combat != nil:
		return screen.Combat, nil
	case st.World.CurrentMap != "" && st.World.CurrentMap != overworldMap:
		return screen.Dungeon, screen.Params{"dungeonId": st.World.CurrentMap}
	default:
		return screen.Overworld, nil
	}
}

func (s *Screen) say(msg string) {
	s.message = msg
	s.msgTimer = messageTTL
}

func (s *Screen) itemAt(x, y float64) (int, bool) {
	w, h := s.sc.Surface().Size()
	for i := range items {
		ex, ey := entryRect(i, w, h)
		if pointInRect(int(x), int(y), rect{x: ex, y: ey, w: entryWidth, h: entryHeight}) {
			return i, true
		}
	}
	return 0, false
}

// entryRect returns the top-left corner of entry i.
func entryRect(i, w, h int) (int, int) {
	top := h/2 - (len(items)*(entryHeight+entryGap))/2
	return (w - entryWidth) / 2, top + i*(entryHeight+entryGap)
}

type rect struct {
	x, y, w, h int
}

func pointInRect(px, py int, r rect) bool {
	return px >= r.x && px <= r.x+r.w && py >= r.y && py <= r.y+r.h
}
