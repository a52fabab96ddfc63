package gamestate

// Save slot names.
const (
	SlotManual = "goldbox_save"
	SlotQuick  = "goldbox_quicksave"
)

// Default returns the deterministic starting state: one Fighter on the
// overworld with 100 gold and a few supplies.
func Default() State {
	warrior := Character{
		ID:         "hero1",
		Name:       "Warrior",
		Ancestry:   "Human",
		Background: "Soldier",
		Class:      "Fighter",
		Level:      1,
		Attributes: Attributes{
			Strength:     16,
			Dexterity:    14,
			Constitution: 15,
			Intelligence: 10,
			Wisdom:       12,
			Charisma:     10,
		},
		HitPoints:  HitPoints{Current: 12, Max: 12},
		ArmorClass: 16,
		Skills: []Skill{
			{ID: "athletics", Name: "Athletics", Rank: 3},
			{ID: "intimidation", Name: "Intimidation", Rank: 2},
		},
		Feats:  []Feat{{ID: "power_attack", Name: "Power Attack"}},
		Spells: []SpellSlot{},
		Equipment: Equipment{
			MainHand: &Item{ID: "longsword", Name: "Longsword", Type: ItemWeapon, Weight: 3, Value: 15, Description: "1d8 slashing damage"},
			Armor:    &Item{ID: "chain_mail", Name: "Chain Mail", Type: ItemArmor, Weight: 40, Value: 50, Description: "AC +6"},
		},
		Conditions: []Condition{},
	}

	potion := Item{ID: "potion_healing", Name: "Healing Potion", Type: ItemConsumable, Weight: 0.5, Value: 50, Description: "Restores 2d4+2 HP"}

	return State{
		Party: PartyState{
			Characters: []Character{warrior},
			Position:   WorldPosition{MapID: "overworld", X: 16, Y: 16, Facing: 0},
			Gold:       100,
			Inventory: []Item{
				potion,
				potion,
				{ID: "rations", Name: "Rations", Type: ItemConsumable, Weight: 1, Value: 5, Description: "One day of food"},
			},
		},
		World: WorldState{
			CurrentMap: "overworld",
			QuestFlags: map[string]bool{},
			Counters:   map[string]int{},
		},
		Combat: nil,
		UI: UIState{
			ActiveScreen: "main-menu",
			ModalStack:   []string{},
			History:      []string{},
		},
	}
}
