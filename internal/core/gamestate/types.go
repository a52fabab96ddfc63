// Package gamestate holds the single live game state tree and the store that
// mutates, observes and persists it.
package gamestate

// Attributes are the six core ability scores.
type Attributes struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Modifier returns the standard ability modifier for a score.
func Modifier(score int) int {
	// Floor division so 9 gives -1 rather than 0.
	if score < 10 {
		return (score - 11) / 2
	}
	return (score - 10) / 2
}

// HitPoints tracks current and maximum hit points.
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Skill is a trained skill with a rank.
type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Feat is a named character feat.
type Feat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpellSlot tracks used and total slots of one spell level.
type SpellSlot struct {
	Level int `json:"level"`
	Used  int `json:"used"`
	Total int `json:"total"`
}

// ItemType classifies an item.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemConsumable ItemType = "consumable"
	ItemMisc       ItemType = "misc"
)

// Item is a carried or equipped object.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Weight      float64  `json:"weight"`
	Value       int      `json:"value"`
	Description string   `json:"description,omitempty"`
}

// Equipment holds the three equipment slots. A nil slot is empty.
type Equipment struct {
	MainHand *Item `json:"mainHand"`
	OffHand  *Item `json:"offHand"`
	Armor    *Item `json:"armor"`
}

// Condition is a status effect. Duration -1 means permanent.
type Condition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// Permanent reports whether the condition never expires.
func (c Condition) Permanent() bool { return c.Duration < 0 }

// Character is a party member.
type Character struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Ancestry   string      `json:"ancestry"`
	Background string      `json:"background"`
	Class      string      `json:"class"`
	Level      int         `json:"level"`
	Attributes Attributes  `json:"attributes"`
	HitPoints  HitPoints   `json:"hitPoints"`
	ArmorClass int         `json:"armorClass"`
	Skills     []Skill     `json:"skills"`
	Feats      []Feat      `json:"feats"`
	Spells     []SpellSlot `json:"spells"`
	Equipment  Equipment   `json:"equipment"`
	Conditions []Condition `json:"conditions"`
}

// Alive reports whether the character has hit points left.
func (c Character) Alive() bool { return c.HitPoints.Current > 0 }

// WorldPosition is the party's single resume point for overworld and
// dungeon modes. Facing is in radians.
type WorldPosition struct {
	MapID  string  `json:"mapId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing float64 `json:"facing"`
}

// CombatParticipant mirrors one combatant of the active encounter.
type CombatParticipant struct {
	CharacterID string `json:"characterId"`
	Name        string `json:"name"`
	IsEnemy     bool   `json:"isEnemy"`
	Initiative  int    `json:"initiative"`
	GridX       int    `json:"gridX"`
	GridY       int    `json:"gridY"`
	CurrentHP   int    `json:"currentHP"`
	MaxHP       int    `json:"maxHP"`
	HasActed    bool   `json:"hasActed"`
	Guarding    bool   `json:"guarding,omitempty"`
}

// CombatState is the active encounter, if any.
type CombatState struct {
	Participants []CombatParticipant `json:"participants"`
	CurrentTurn  int                 `json:"currentTurn"`
	RoundNumber  int                 `json:"roundNumber"`
}

// PartyState holds the party, its position, gold and shared inventory.
type PartyState struct {
	Characters []Character   `json:"characters"`
	Position   WorldPosition `json:"position"`
	Gold       int           `json:"gold"`
	Inventory  []Item        `json:"inventory"`
}

// WorldState holds the current map and quest progress.
type WorldState struct {
	CurrentMap string          `json:"currentMap"`
	QuestFlags map[string]bool `json:"questFlags"`
	Counters   map[string]int  `json:"counters"`
}

// Flag returns the value of a quest flag (false if not set).
func (w WorldState) Flag(name string) bool { return w.QuestFlags[name] }

// Counter returns the value of a counter (0 if not set).
func (w WorldState) Counter(name string) int { return w.Counters[name] }

// UIState tracks the active screen, the modal stack and navigation history.
type UIState struct {
	ActiveScreen string   `json:"activeScreen"`
	ModalStack   []string `json:"modalStack"`
	History      []string `json:"history"`
}

// State is the root of the game state tree.
type State struct {
	Party  PartyState   `json:"party"`
	World  WorldState   `json:"world"`
	Combat *CombatState `json:"combat"`
	UI     UIState      `json:"ui"`
}
