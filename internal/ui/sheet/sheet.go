// Package sheet is the character sheet modal.
package sheet

import (
	"context"
	"fmt"
	"strings"

	"chosenoffset.com/goldbox/internal/core/gamestate"
	"chosenoffset.com/goldbox/internal/input"
	"chosenoffset.com/goldbox/internal/render"
	"chosenoffset.com/goldbox/internal/screen"
	"chosenoffset.com/goldbox/internal/ui/modal"
)

// Screen shows one party member's sheet over the suspended screen.
type Screen struct {
	sc    *screen.Context
	box   modal.Box
	index int
	count int
}

func New() *Screen {
	return &Screen{box: modal.Box{Title: "CHARACTER SHEET", Width: 600}}
}

func (s *Screen) ID() screen.ID { return screen.CharacterSheet }

func (s *Screen) Init(_ context.Context, sc *screen.Context) error {
	s.sc = sc
	return nil
}

// Enter shows the first party member.
func (s *Screen) Enter(context.Context, screen.ID, screen.Params) error {
	s.index = 0
	s.refresh()
	return nil
}

func (s *Screen) Exit(context.Context, screen.ID) error { return nil }

func (s *Screen) Update(float64) {}

// Index returns which party member is shown.
func (s *Screen) Index() int { return s.index }

// Lines returns the current content.
func (s *Screen) Lines() []modal.Line { return s.box.Lines }

func (s *Screen) refresh() {
	chars := s.sc.Store.Snapshot().Party.Characters
	s.count = len(chars)
	if s.count == 0 {
		s.box.Footer = "Press ESC to close"
		s.box.Reset([]modal.Line{modal.Plain("No character data available")})
		return
	}
	s.box.Footer = "Press ESC or C to close"
	if s.count > 1 {
		s.box.Footer = fmt.Sprintf("%d/%d  LEFT/RIGHT to switch  ESC or C to close", s.index+1, s.count)
	}
	s.box.Reset(Lines(chars[s.index]))
}

func (s *Screen) HandleInput(ev input.Event) bool {
	if modal.Closes(ev, "c") {
		if err := s.sc.Manager.PopModal(); err != nil {
			s.sc.Logger.Warn("failed to close character sheet", "err", err)
		}
		return true
	}
	if ev.Type == input.KeyDown && s.count > 1 {
		switch ev.Key {
		case "arrowleft", "a":
			s.index = (s.index - 1 + s.count) % s.count
			s.refresh()
			return true
		case "arrowright", "d", "tab":
			s.index = (s.index + 1) % s.count
			s.refresh()
			return true
		}
	}
	if d := modal.ScrollDelta(ev); d != 0 {
		_, h := s.sc.Surface().Size()
		s.box.Scroll(d, modal.Visible(h))
	}
	// Nothing reaches the screen underneath.
	return true
}

func (s *Screen) Draw(dst render.Image) {
	s.box.Draw(s.sc.Renderer, dst)
}

// Lines formats a character for display.
func Lines(ch gamestate.Character) []modal.Line {
	out := []modal.Line{
		modal.Plain("Name: " + ch.Name),
		modal.Plain("Class: " + ch.Class),
		modal.Plain(fmt.Sprintf("Level: %d", ch.Level)),
		modal.Plain("Ancestry: " + ch.Ancestry),
		modal.Plain("Background: " + ch.Background),
	}

	a := ch.Attributes
	out = append(out, modal.Section("ATTRIBUTES")...)
	out = append(out,
		modal.Plain(fmt.Sprintf("%-20s%s", attr("STR", a.Strength), attr("DEX", a.Dexterity))),
		modal.Plain(fmt.Sprintf("%-20s%s", attr("CON", a.Constitution), attr("INT", a.Intelligence))),
		modal.Plain(fmt.Sprintf("%-20s%s", attr("WIS", a.Wisdom), attr("CHA", a.Charisma))),
	)

	out = append(out, modal.Section("COMBAT")...)
	out = append(out,
		modal.Plain(fmt.Sprintf("HP: %d / %d", ch.HitPoints.Current, ch.HitPoints.Max)),
		modal.Plain(fmt.Sprintf("AC: %d", ch.ArmorClass)),
	)

	out = append(out, modal.Section("SKILLS")...)
	if len(ch.Skills) == 0 {
		out = append(out, modal.Plain("None"))
	}
	for _, sk := range ch.Skills {
		out = append(out, modal.Plain(fmt.Sprintf("%s: +%d", sk.Name, sk.Rank)))
	}

	out = append(out, modal.Section("FEATS")...)
	if len(ch.Feats) == 0 {
		out = append(out, modal.Plain("None"))
	}
	for _, f := range ch.Feats {
		out = append(out, modal.Plain(f.Name))
	}

	if len(ch.Spells) > 0 {
		out = append(out, modal.Section("SPELL SLOTS")...)
		for _, sp := range ch.Spells {
			out = append(out, modal.Plain(fmt.Sprintf("Level %d: %d/%d", sp.Level, sp.Total-sp.Used, sp.Total)))
		}
	}

	out = append(out, modal.Section("EQUIPMENT")...)
	out = append(out, equipped("Main Hand", ch.Equipment.MainHand)...)
	out = append(out, equipped("Off Hand", ch.Equipment.OffHand)...)
	out = append(out, equipped("Armor", ch.Equipment.Armor)...)

	if len(ch.Conditions) > 0 {
		names := make([]string, len(ch.Conditions))
		for i, c := range ch.Conditions {
			names[i] = c.Name
			if !c.Permanent() {
				names[i] = fmt.Sprintf("%s (%d)", c.Name, c.Duration)
			}
		}
		out = append(out, modal.Section("CONDITIONS")...)
		out = append(out, modal.Plain(strings.Join(names, ", ")))
	}
	return out
}

func attr(label string, score int) string {
	return fmt.Sprintf("%s: %d (%+d)", label, score, gamestate.Modifier(score))
}

func equipped(slot string, it *gamestate.Item) []modal.Line {
	if it == nil {
		return []modal.Line{modal.Plain(slot + ": None")}
	}
	out := []modal.Line{modal.Plain(slot + ": " + it.Name)}
	if it.Description != "" {
		out = append(out, modal.Line{Text: it.Description, Color: modal.Dim, Indent: 16})
	}
	return out
}
