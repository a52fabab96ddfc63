package narrative

import (
	"fmt"
	"math/rand"
	"strings"
)

// ProseGenerator picks varied wording from fixed text pools.
type ProseGenerator struct {
	rng *rand.Rand

	lightVerbs  []string
	heavyVerbs  []string
	encounters  []string
	heavyDamage int
}

// NewProseGenerator creates a generator. The same seed gives the same
// wording.
func NewProseGenerator(seed int64) *ProseGenerator {
	pg := &ProseGenerator{
		rng:         rand.New(rand.NewSource(seed)),
		heavyDamage: 6,
	}
	pg.initTextPools()
	return pg
}

func (pg *ProseGenerator) initTextPools() {
	pg.lightVerbs = []string{"hits", "strikes", "nicks", "clips", "catches"}
	pg.heavyVerbs = []string{"smashes", "cleaves", "batters", "rends"}
	pg.encounters = []string{
		"%s leap from hiding!",
		"%s block the road ahead.",
		"You are ambushed by %s!",
		"%s close in, weapons drawn.",
	}
}

func (pg *ProseGenerator) pickRandom(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[pg.rng.Intn(len(options))]
}

// AttackVerb returns a verb scaled to the damage dealt.
func (pg *ProseGenerator) AttackVerb(damage int) string {
	if damage >= pg.heavyDamage {
		return pg.pickRandom(pg.heavyVerbs)
	}
	return pg.pickRandom(pg.lightVerbs)
}

// Encounter opens a fight against the named enemies.
func (pg *ProseGenerator) Encounter(names []string) string {
	var kept []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return "Something stirs in the dark."
	}
	list := listNames(kept)
	line := fmt.Sprintf(pg.pickRandom(pg.encounters), list)
	// "a Goblin ..." at the start of a sentence
	return strings.ToUpper(line[:1]) + line[1:]
}

// listNames joins "a Goblin", "an Orc" style phrases with commas and "and".
func listNames(names []string) string {
	phrases := make([]string, len(names))
	for i, n := range names {
		phrases[i] = article(n) + " " + n
	}
	switch len(phrases) {
	case 1:
		return phrases[0]
	case 2:
		return phrases[0] + " and " + phrases[1]
	default:
		return strings.Join(phrases[:len(phrases)-1], ", ") + " and " + phrases[len(phrases)-1]
	}
}

func article(word string) string {
	if word == "" {
		return "a"
	}
	switch strings.ToLower(word[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}
	return "a"
}
