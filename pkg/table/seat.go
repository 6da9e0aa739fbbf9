package table

import "berrypoker/pkg/deck"

// Seat holds one player's state for the current and ongoing hands
type Seat struct {
	Index       int       `json:"seat"`
	DisplayName string    `json:"displayName"`
	Stack       int       `json:"stack"`
	HoleCards   deck.Hand `json:"-"`

	CurrentBet   int `json:"currentBet"`
	TotalWagered int `json:"totalWagered"`

	Folded     bool `json:"folded"`
	AllIn      bool `json:"allIn"`
	SittingOut bool `json:"sittingOut"`
	HasActed   bool `json:"-"`

	// pendingRemoval marks a player who left mid-hand: they stay seated
	// (folded, committed to any pots already built) until the hand is
	// awarded, then their seat is vacated.
	pendingRemoval bool
}

// inHand returns true if the seat was dealt cards this hand and hasn't folded
func (s *Seat) inHand() bool {
	return len(s.HoleCards) > 0 && !s.Folded
}

// toAct returns true if the seat can still act in the current betting round
func (s *Seat) toAct(highBet int) bool {
	if !s.inHand() || s.AllIn {
		return false
	}

	return !s.HasActed || s.CurrentBet < highBet
}

// resetForHand clears all per-hand state, keeping the stack and seating flags
func (s *Seat) resetForHand() {
	s.HoleCards = nil
	s.CurrentBet = 0
	s.TotalWagered = 0
	s.Folded = false
	s.AllIn = false
	s.HasActed = false
	s.pendingRemoval = false
}

// resetForRound clears per-street betting state ahead of the next round
func (s *Seat) resetForRound() {
	s.CurrentBet = 0
	s.HasActed = false
}

// commit moves chips from the seat's stack into its current-round bet,
// capping at the available stack, and returns the amount actually moved
func (s *Seat) commit(amount int) int {
	if amount > s.Stack {
		amount = s.Stack
	}

	s.Stack -= amount
	s.CurrentBet += amount
	s.TotalWagered += amount

	if s.Stack == 0 {
		s.AllIn = true
	}

	return amount
}
