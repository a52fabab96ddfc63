// Package inventory is the party inventory modal.
package inventory

import (
	"context"
	"fmt"

	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	items "chosenoffset.com/goldbox/internal/inventory"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/ui/modal"
)

// Screen lists the party's gold and stacked items.
type Screen struct {
	sc  *screen.Context
	box modal.Box
}

func New() *Screen {
	return &Screen{box: modal.Box{Title: "INVENTORY", Footer: "Press ESC or I to close", Width: 600}}
}

func (s *Screen) ID() screen.ID { return screen.Inventory }

func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	return nil
}

func (s *Screen) Enter(context.Context, screen.ID, screen.Params) error {
	s.box.Reset(Lines(s.sc.Store.Snapshot().Party))
	return nil
}

func (s *Screen) Exit(context.Context, screen.ID) error { return nil }

func (s *Screen) Update(float64) {}

// Lines returns the current content.
func (s *Screen) Lines() []modal.Line { return s.box.Lines }

func (s *Screen) HandleInput(ev input.Event) bool {
	if modal.Closes(ev, "i") {
		if err := s.sc.Manager.PopModal(); err != nil {
			s.sc.Logger.Warn("failed to close inventory", "err", err)
		}
		return true
	}
	if d := modal.ScrollDelta(ev); d != 0 {
		_, h := s.sc.Surface().Size()
		s.box.Scroll(d, modal.Visible(h))
	}
	return true
}

func (s *Screen) Draw(dst render.Image) {
	s.box.Draw(s.sc.Renderer, dst)
}

// Lines formats the party's purse and pack.
func Lines(p gamestate.PartyState) []modal.Line {
	out := []modal.Line{{Text: fmt.Sprintf("Gold: %d gp", p.Gold), Color: modal.Gold}}
	if len(p.Inventory) == 0 {
		return append(out, modal.Line{Rule: true}, modal.Line{Text: "Inventory is empty", Color: modal.Dim})
	}

	for _, sec := range items.Group(p.Inventory) {
		out = append(out, modal.Section(sec.Title)...)
		if len(sec.Slots) == 0 {
			out = append(out, modal.Line{Text: "None", Color: modal.Dim})
		}
		for _, slot := range sec.Slots {
			out = append(out, modal.Plain("- "+slot.Line()))
			if slot.Item.Description != "" {
				out = append(out, modal.Line{Text: slot.Item.Description, Color: modal.Dim, Indent: 16})
			}
		}
	}

	out = append(out, modal.Line{Rule: true}, modal.Line{
		Text:  fmt.Sprintf("Carried: %g lbs   Worth: %d gp", items.TotalWeight(p.Inventory), items.TotalValue(p.Inventory)),
		Color: modal.Dim,
	})
	return out
}
