// Package inventory groups, counts and edits the party's shared item list.
// Items are stored one entry per unit in the game state; this package
// presents them stacked by id.
package inventory

import (
	"fmt"
	"strings"

	"chosenoffset.com/goldbox/internal/core/gamestate"
)

// Slot is one stacked item and its quantity.
type Slot struct {
	Item  gamestate.Item
	Count int
}

// Line formats the slot for display: name, count, total weight and value.
func (s Slot) Line() string {
	var b strings.Builder
	b.WriteString(s.Item.Name)
	if s.Count > 1 {
		fmt.Fprintf(&b, " x%d", s.Count)
	}
	if s.Item.Weight > 0 {
		fmt.Fprintf(&b, " (%g lbs)", s.Item.Weight*float64(s.Count))
	}
	if s.Item.Value > 0 {
		fmt.Fprintf(&b, " - %dgp", s.Item.Value)
	}
	return b.String()
}

// Section is the stacked items of one type.
type Section struct {
	Type  gamestate.ItemType
	Title string
	Slots []Slot
}

var sections = []struct {
	typ   gamestate.ItemType
	title string
}{
	{gamestate.ItemWeapon, "WEAPONS"},
	{gamestate.ItemArmor, "ARMOR"},
	{gamestate.ItemConsumable, "CONSUMABLES"},
	{gamestate.ItemMisc, "MISCELLANEOUS"},
}

// Group stacks items by id and sorts them into typed sections in display
// order. Unknown types fall into misc, and the misc section is omitted
// when empty. Within a section, stacks keep first-seen order.
func Group(items []gamestate.Item) []Section {
	out := make([]Section, len(sections))
	index := make(map[gamestate.ItemType]int, len(sections))
	for i, s := range sections {
		out[i] = Section{Type: s.typ, Title: s.title}
		index[s.typ] = i
	}

	for _, slot := range Stack(items) {
		i, ok := index[slot.Item.Type]
		if !ok {
			i = index[gamestate.ItemMisc]
		}
		out[i].Slots = append(out[i].Slots, slot)
	}

	if last := len(out) - 1; len(out[last].Slots) == 0 {
		out = out[:last]
	}
	return out
}

// Stack collapses items with the same id, keeping first-seen order.
func Stack(items []gamestate.Item) []Slot {
	var out []Slot
	pos := make(map[string]int)
	for _, it := range items {
		if i, ok := pos[it.ID]; ok {
			out[i].Count++
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, Slot{Item: it, Count: 1})
	}
	return out
}

// Count returns the quantity of an item (0 if not present)
func Count(items []gamestate.Item, id string) int {
	n := 0
	for _, it := range items {
		if it.ID == id {
			n++
		}
	}
	return n
}

// Add returns a new list with count copies of item appended.
func Add(items []gamestate.Item, item gamestate.Item, count int) []gamestate.Item {
	out := make([]gamestate.Item, len(items), len(items)+max(count, 0))
	copy(out, items)
	for i := 0; i < count; i++ {
		out = append(out, item)
	}
	return out
}

// Remove returns a new list without count units of id. It fails, leaving
// items untouched, when fewer than count are carried.
func Remove(items []gamestate.Item, id string, count int) ([]gamestate.Item, bool) {
	if count <= 0 {
		return items, true
	}
	if Count(items, id) < count {
		return items, false
	}
	out := make([]gamestate.Item, 0, len(items)-count)
	// Drop from the end so earlier stacks keep their order.
	drop := count
	for i := len(items) - 1; i >= 0; i-- {
		if drop > 0 && items[i].ID == id {
			drop--
			continue
		}
		out = append(out, items[i])
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out, true
}

// TotalWeight sums the weight of every carried unit.
func TotalWeight(items []gamestate.Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	return total
}

// TotalValue sums the value of every carried unit in gold pieces.
func TotalValue(items []gamestate.Item) int {
	total := 0
	for _, it := range items {
		total += it.Value
	}
	return total
}
