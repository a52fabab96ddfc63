// Package dice rolls tabletop dice expressions such as "1d8+2" or "4d6kh3".
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned for expressions that cannot be parsed.
var ErrInvalidExpression = errors.New("invalid dice expression")

// RollResult contains the result of a dice roll
type RollResult struct {
	Total      int    // Final computed value
	Rolls      []int  // Individual die rolls
	Expression string // Original expression
	Breakdown  string // Human-readable breakdown of the roll
}

// Roller rolls dice with a configurable random source
type Roller struct {
	rng *rand.Rand
}

// NewRoller creates a new Roller with the given random source
func NewRoller(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// NewSeeded creates a Roller from a seed.
func NewSeeded(seed int64) *Roller {
	return NewRoller(rand.New(rand.NewSource(seed)))
}

// termRegex splits an expression into signed terms.
var termRegex = regexp.MustCompile(`[+-]?[^+-]+`)

// diceRegex matches dice notation like "3d6", "d20", "4d6kh3"
var diceRegex = regexp.MustCompile(`^(\d*)d(\d+)(?:(kh|kl)(\d+))?$`)

// Roll evaluates a sum of dice terms and integer constants.
// Supported syntax:
//   - Basic dice: "3d6", "d20"
//   - Modifiers: "1d8+2", "2d4+2", "1d6-1"
//   - Keep highest/lowest: "4d6kh3", "2d20kl1"
//   - Constants: "5"
func (r *Roller) Roll(expression string) (*RollResult, error) {
	expr := strings.ToLower(strings.ReplaceAll(expression, " ", ""))
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}
	terms := termRegex.FindAllString(expr, -1)
	if strings.Join(terms, "") != expr {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExpression, expression)
	}

	result := &RollResult{Expression: expression}
	var parts []string
	for _, term := range terms {
		sign := 1
		switch term[0] {
		case '-':
			sign = -1
			term = term[1:]
		case '+':
			term = term[1:]
		}

		value, breakdown, rolls, err := r.evaluateTerm(term)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		result.Total += sign * value
		result.Rolls = append(result.Rolls, rolls...)

		switch {
		case len(parts) == 0 && sign < 0:
			parts = append(parts, "-"+breakdown)
		case len(parts) == 0:
			parts = append(parts, breakdown)
		case sign < 0:
			parts = append(parts, "- "+breakdown)
		default:
			parts = append(parts, "+ "+breakdown)
		}
	}
	result.Breakdown = strings.Join(parts, " ")
	return result, nil
}

// MustRoll is Roll for expressions known at compile time.
func (r *Roller) MustRoll(expression string) int {
	res, err := r.Roll(expression)
	if err != nil {
		panic(err)
	}
	return res.Total
}

// Between returns a uniform integer in [lo, hi].
func (r *Roller) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func (r *Roller) Chance(p float64) bool {
	return r.rng.Float64() < p
}

// evaluateTerm evaluates a single term (dice or constant)
func (r *Roller) evaluateTerm(term string) (int, string, []int, error) {
	if num, err := strconv.Atoi(term); err == nil {
		return num, strconv.Itoa(num), nil, nil
	}

	matches := diceRegex.FindStringSubmatch(term)
	if matches == nil {
		return 0, "", nil, fmt.Errorf("invalid term: %s", term)
	}

	numDice := 1
	if matches[1] != "" {
		numDice, _ = strconv.Atoi(matches[1])
	}
	sides, _ := strconv.Atoi(matches[2])
	if numDice <= 0 || sides <= 0 || numDice > 1000 {
		return 0, "", nil, fmt.Errorf("invalid dice specification: %s", term)
	}

	rolls := make([]int, numDice)
	for i := range rolls {
		rolls[i] = r.rng.Intn(sides) + 1
	}

	kept := rolls
	breakdown := fmt.Sprintf("[%s]", joinInts(rolls, ", "))
	if mod := matches[3]; mod != "" {
		n, _ := strconv.Atoi(matches[4])
		if n > 0 && n < len(rolls) {
			sorted := append([]int(nil), rolls...)
			sort.Ints(sorted)
			if mod == "kh" {
				kept = sorted[len(sorted)-n:]
			} else {
				kept = sorted[:n]
			}
			breakdown = fmt.Sprintf("[%s] %s%d → [%s]", joinInts(rolls, ", "), mod, n, joinInts(kept, ", "))
		}
	}

	total := 0
	for _, roll := range kept {
		total += roll
	}
	return total, breakdown, rolls, nil
}

// joinInts joins a slice of ints with a separator
func joinInts(nums []int, sep string) string {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, sep)
}
