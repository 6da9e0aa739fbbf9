// Package handeval ranks a set of hole and community cards into a
// totally-ordered five-card poker hand.
package handeval

import (
	"fmt"
	"sort"

	"berrypoker/pkg/deck"
)

// Category is a poker hand category, ordered from weakest to strongest.
// A royal flush has no category of its own: it is a straight flush with
// an ace-high tiebreaker.
type Category int

// Category constants, in increasing strength
const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = map[Category]string{
	HighCard:      "High Card",
	OnePair:       "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}

	return "Unknown"
}

// Result is a scored five-card hand, comparable to any other Result via Compare
type Result struct {
	Category    Category     `json:"category"`
	Tiebreakers []int        `json:"tiebreakers"`
	Cards       []*deck.Card `json:"cards"`
	Description string       `json:"description"`
}

// Compare returns >0 if r beats other, <0 if other beats r, and 0 for a tie
func (r Result) Compare(other Result) int {
	if r.Category != other.Category {
		return int(r.Category) - int(other.Category)
	}

	for i := 0; i < len(r.Tiebreakers) && i < len(other.Tiebreakers); i++ {
		if diff := r.Tiebreakers[i] - other.Tiebreakers[i]; diff != 0 {
			return diff
		}
	}

	return 0
}

// maxTiebreakers is the widest tiebreaker vector any category produces (high card: 5 kickers)
const maxTiebreakers = 5

// Strength encodes Category and Tiebreakers into a single comparable integer,
// most significant first, using fixed-width base-15 digits (ranks run 2..14).
// Two Results compare the same way via Strength() as via Compare().
func (r Result) Strength() int {
	strength := int(r.Category)
	for i := 0; i < maxTiebreakers; i++ {
		strength *= 15
		if i < len(r.Tiebreakers) {
			strength += r.Tiebreakers[i]
		}
	}

	return strength
}

var rankNames = map[int]string{
	11: "Jack", 12: "Queen", 13: "King", 14: "Ace",
}

func rankName(rank int) string {
	if name, ok := rankNames[rank]; ok {
		return name
	}

	return fmt.Sprintf("%d", rank)
}

// Best evaluates every 5-card subset of the supplied cards (a hand of 5, 6, or 7
// cards, as during run-it-twice partial showdowns) and returns the strongest.
func Best(cards []*deck.Card) (Result, error) {
	if len(cards) < 5 {
		return Result{}, fmt.Errorf("need at least 5 cards to evaluate a hand, got %d", len(cards))
	}

	var best Result
	first := true

	for _, combo := range combinations(cards, 5) {
		result := evaluateFive(combo)
		if first || result.Compare(best) > 0 {
			best = result
			first = false
		}
	}

	return best, nil
}

// combinations returns every 5-card subset of cards
func combinations(cards []*deck.Card, k int) [][]*deck.Card {
	n := len(cards)
	if k > n {
		return nil
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}

	var out [][]*deck.Card
	for {
		combo := make([]*deck.Card, k)
		for i, idx := range indices {
			combo[i] = cards[idx]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}

	return out
}

func evaluateFive(cards []*deck.Card) Result {
	values := make([]int, len(cards))
	for i, c := range cards {
		values[i] = c.Rank
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	counts := map[int]int{}
	for _, v := range values {
		counts[v]++
	}

	isFlush := true
	for _, c := range cards {
		if c.Suit != cards[0].Suit {
			isFlush = false
			break
		}
	}

	isStraight, straightHigh := checkStraight(values)

	switch {
	case isFlush && isStraight:
		return Result{
			Category:    StraightFlush,
			Tiebreakers: []int{straightHigh},
			Cards:       cards,
			Description: fmt.Sprintf("Straight Flush, %s high", rankName(straightHigh)),
		}
	case hasCount(counts, 4):
		quad := valueWithCount(counts, 4)[0]
		kicker := valueWithCount(counts, 1)[0]
		return Result{
			Category:    FourOfAKind,
			Tiebreakers: []int{quad, kicker},
			Cards:       cards,
			Description: fmt.Sprintf("Four of a Kind, %ss", rankName(quad)),
		}
	case hasCount(counts, 3) && hasCount(counts, 2):
		trips := valueWithCount(counts, 3)[0]
		pair := valueWithCount(counts, 2)[0]
		return Result{
			Category:    FullHouse,
			Tiebreakers: []int{trips, pair},
			Cards:       cards,
			Description: fmt.Sprintf("Full House, %ss full of %ss", rankName(trips), rankName(pair)),
		}
	case isFlush:
		return Result{
			Category:    Flush,
			Tiebreakers: values,
			Cards:       cards,
			Description: fmt.Sprintf("Flush, %s high", rankName(values[0])),
		}
	case isStraight:
		return Result{
			Category:    Straight,
			Tiebreakers: []int{straightHigh},
			Cards:       cards,
			Description: fmt.Sprintf("Straight, %s high", rankName(straightHigh)),
		}
	case hasCount(counts, 3):
		trips := valueWithCount(counts, 3)[0]
		kickers := valueWithCount(counts, 1)
		return Result{
			Category:    ThreeOfAKind,
			Tiebreakers: append([]int{trips}, kickers...),
			Cards:       cards,
			Description: fmt.Sprintf("Three of a Kind, %ss", rankName(trips)),
		}
	case countOfCount(counts, 2) == 2:
		pairs := valueWithCount(counts, 2)
		kicker := valueWithCount(counts, 1)[0]
		return Result{
			Category:    TwoPair,
			Tiebreakers: append(append([]int{}, pairs...), kicker),
			Cards:       cards,
			Description: fmt.Sprintf("Two Pair, %ss and %ss", rankName(pairs[0]), rankName(pairs[1])),
		}
	case hasCount(counts, 2):
		pair := valueWithCount(counts, 2)[0]
		kickers := valueWithCount(counts, 1)
		return Result{
			Category:    OnePair,
			Tiebreakers: append([]int{pair}, kickers...),
			Cards:       cards,
			Description: fmt.Sprintf("Pair of %ss", rankName(pair)),
		}
	default:
		return Result{
			Category:    HighCard,
			Tiebreakers: values,
			Cards:       cards,
			Description: fmt.Sprintf("High Card, %s", rankName(values[0])),
		}
	}
}

// checkStraight returns whether the values (may contain duplicates) form a straight,
// and if so, the high card. The wheel (A-2-3-4-5) is a straight with a high card of 5,
// ranking below any 6-high straight.
func checkStraight(values []int) (bool, int) {
	distinct := map[int]bool{}
	for _, v := range values {
		distinct[v] = true
	}

	unique := make([]int, 0, len(distinct))
	for v := range distinct {
		unique = append(unique, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))

	if len(unique) != 5 {
		return false, 0
	}

	if unique[0]-unique[4] == 4 {
		return true, unique[0]
	}

	if unique[0] == 14 && unique[1] == 5 && unique[2] == 4 && unique[3] == 3 && unique[4] == 2 {
		return true, 5
	}

	return false, 0
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}

	return false
}

func countOfCount(counts map[int]int, n int) int {
	total := 0
	for _, c := range counts {
		if c == n {
			total++
		}
	}

	return total
}

// valueWithCount returns the ranks that occur exactly n times, sorted descending
func valueWithCount(counts map[int]int, n int) []int {
	var values []int
	for v, c := range counts {
		if c == n {
			values = append(values, v)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	return values
}
