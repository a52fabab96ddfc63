package gamestate

// Patch describes a partial update to the state tree. Nil fields are left
// untouched. Nested records merge field by field, slices replace wholesale
// (pass an empty non-nil slice to clear one) and the quest flag and counter
// maps merge key by key.
type Patch struct {
	Party  *PartyPatch
	World  *WorldPatch
	Combat *CombatState
	// ClearCombat ends the active encounter. It wins over Combat.
	ClearCombat bool
	UI          *UIPatch
}

// PartyPatch is a partial update of the party slice.
type PartyPatch struct {
	Characters []Character
	Position   *PositionPatch
	Gold       *int
	Inventory  []Item
}

// PositionPatch is a partial update of the world position.
type PositionPatch struct {
	MapID  *string
	X      *float64
	Y      *float64
	Facing *float64
}

// WorldPatch is a partial update of the world slice.
type WorldPatch struct {
	CurrentMap *string
	QuestFlags map[string]bool
	Counters   map[string]int
}

// UIPatch is a partial update of the ui slice.
type UIPatch struct {
	ActiveScreen *string
	ModalStack   []string
	History      []string
}

// Ptr returns a pointer to v, for filling patch fields inline.
func Ptr[T any](v T) *T { return &v }

// PositionTo builds a patch that sets every field of the position.
func PositionTo(p WorldPosition) *PositionPatch {
	return &PositionPatch{MapID: Ptr(p.MapID), X: Ptr(p.X), Y: Ptr(p.Y), Facing: Ptr(p.Facing)}
}

// touched reports which slices the patch writes.
func (p Patch) touched() []Slice {
	var out []Slice
	if p.Party != nil {
		out = append(out, SliceParty)
	}
	if p.World != nil {
		out = append(out, SliceWorld)
	}
	if p.Combat != nil || p.ClearCombat {
		out = append(out, SliceCombat)
	}
	if p.UI != nil {
		out = append(out, SliceUI)
	}
	return out
}

// apply merges the patch into s, which must be a private copy.
func (p Patch) apply(s *State) {
	if pp := p.Party; pp != nil {
		if pp.Characters != nil {
			s.Party.Characters = cloneCharacters(pp.Characters)
		}
		if pos := pp.Position; pos != nil {
			if pos.MapID != nil {
				s.Party.Position.MapID = *pos.MapID
			}
			if pos.X != nil {
				s.Party.Position.X = *pos.X
			}
			if pos.Y != nil {
				s.Party.Position.Y = *pos.Y
			}
			if pos.Facing != nil {
				s.Party.Position.Facing = *pos.Facing
			}
		}
		if pp.Gold != nil {
			s.Party.Gold = *pp.Gold
		}
		if pp.Inventory != nil {
			s.Party.Inventory = cloneSlice(pp.Inventory)
		}
	}

	if wp := p.World; wp != nil {
		if wp.CurrentMap != nil {
			s.World.CurrentMap = *wp.CurrentMap
		}
		if len(wp.QuestFlags) > 0 && s.World.QuestFlags == nil {
			s.World.QuestFlags = make(map[string]bool, len(wp.QuestFlags))
		}
		for k, v := range wp.QuestFlags {
			s.World.QuestFlags[k] = v
		}
		if len(wp.Counters) > 0 && s.World.Counters == nil {
			s.World.Counters = make(map[string]int, len(wp.Counters))
		}
		for k, v := range wp.Counters {
			s.World.Counters[k] = v
		}
	}

	switch {
	case p.ClearCombat:
		s.Combat = nil
	case p.Combat != nil:
		c := p.Combat.Clone()
		s.Combat = &c
	}

	if up := p.UI; up != nil {
		if up.ActiveScreen != nil {
			s.UI.ActiveScreen = *up.ActiveScreen
		}
		if up.ModalStack != nil {
			s.UI.ModalStack = cloneSlice(up.ModalStack)
		}
		if up.History != nil {
			s.UI.History = cloneSlice(up.History)
		}
	}
}
