package gamestate

// Clone returns a deep copy of the state tree.
func (s State) Clone() State {
	out := State{
		Party: s.Party.clone(),
		World: s.World.clone(),
		UI:    s.UI.clone(),
	}
	if s.Combat != nil {
		c := s.Combat.Clone()
		out.Combat = &c
	}
	return out
}

func (p PartyState) clone() PartyState {
	out := p
	out.Characters = cloneCharacters(p.Characters)
	out.Inventory = cloneSlice(p.Inventory)
	return out
}

func (w WorldState) clone() WorldState {
	out := w
	if w.QuestFlags != nil {
		out.QuestFlags = make(map[string]bool, len(w.QuestFlags))
		for k, v := range w.QuestFlags {
			out.QuestFlags[k] = v
		}
	}
	if w.Counters != nil {
		out.Counters = make(map[string]int, len(w.Counters))
		for k, v := range w.Counters {
			out.Counters[k] = v
		}
	}
	return out
}

func (u UIState) clone() UIState {
	return UIState{
		ActiveScreen: u.ActiveScreen,
		ModalStack:   cloneSlice(u.ModalStack),
		History:      cloneSlice(u.History),
	}
}

// Clone returns a deep copy of the combat state.
func (c CombatState) Clone() CombatState {
	out := c
	out.Participants = cloneSlice(c.Participants)
	return out
}

// Clone returns a deep copy of the character.
func (c Character) Clone() Character {
	out := c
	out.Skills = cloneSlice(c.Skills)
	out.Feats = cloneSlice(c.Feats)
	out.Spells = cloneSlice(c.Spells)
	out.Conditions = cloneSlice(c.Conditions)
	out.Equipment = Equipment{
		MainHand: cloneItem(c.Equipment.MainHand),
		OffHand:  cloneItem(c.Equipment.OffHand),
		Armor:    cloneItem(c.Equipment.Armor),
	}
	return out
}

func cloneCharacters(in []Character) []Character {
	if in == nil {
		return nil
	}
	out := make([]Character, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneItem(it *Item) *Item {
	if it == nil {
		return nil
	}
	cp := *it
	return &cp
}

// cloneSlice copies a slice of plain values, keeping nil as nil.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
