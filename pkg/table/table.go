// Package table implements the No-Limit Texas Hold'em betting engine:
// seats, community cards, phase, and the rules for dealing, betting, and
// awarding a hand.
package table

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"berrypoker/internal/rng"
	"berrypoker/pkg/deck"
	"berrypoker/pkg/handeval"
)

// MaxSeats is the largest seat index plus one; seats run [0, MaxSeats)
const MaxSeats = 9

// ErrSeatTaken is returned when joining an occupied seat
var ErrSeatTaken = UserError("seat is already taken")

// ErrNameTaken is returned when joining with a display name already seated
var ErrNameTaken = UserError("that name is already seated")

// ErrBuyInOutOfRange is returned when a buy-in falls outside [MinBuyIn, MaxBuyIn]
var ErrBuyInOutOfRange = UserError("buy-in is out of range")

// ErrNotEnoughPlayers is returned when a hand is started with too few eligible seats
var ErrNotEnoughPlayers = UserError("not enough players to start a hand")

// ErrHandInProgress is returned when start_game is called while a hand is already running
var ErrHandInProgress = UserError("a hand is already in progress")

// HandResult describes one seated player's showdown outcome, used in the
// hand-ended broadcast and in persisted hand history.
type HandResult struct {
	SeatIndex   int    `json:"seat"`
	PlayerName  string `json:"player_name"`
	Description string `json:"description"`
	IsWinner    bool   `json:"-"`
}

// Table is a single No-Limit Hold'em game: its seats, the shared deck and
// board, and the current betting round's bookkeeping.
type Table struct {
	RoomID     string
	SmallBlind int
	BigBlind   int
	MinBuyIn   int
	MaxBuyIn   int

	Seats     [MaxSeats]*Seat
	deck      *deck.Deck
	Community deck.Hand

	Phase      Phase
	DealerSeat int
	ActingSeat int

	HighBet       int
	LastRaiseSize int
	HandNumber    int

	rng    rng.Generator
	logger logrus.FieldLogger

	// LastHandResults is populated after a showdown or fold-out award, and
	// consumed by the room engine to build the hand_ended broadcast.
	LastHandResults []HandResult
	LastWinners     []string
	LastPotTotal    int

	// LastSecondCommunity holds the second board dealt by a run-it-twice
	// hand, alongside LastHandResults' first-run board in Community.
	LastSecondCommunity deck.Hand

	// RunTwiceEligible is true while the table is paused waiting for the
	// all-in players named in runTwicePlayers to choose whether to run
	// the board twice.
	RunTwiceEligible bool
	runTwicePhase    Phase
	runTwicePlayers  []int
	runTwiceChoices  map[int]bool
	savedDeck        []*deck.Card
	savedCommunity   deck.Hand
}

// New returns an empty table ready to seat players
func New(roomID string, smallBlind, bigBlind, minBuyIn, maxBuyIn int, gen rng.Generator, logger logrus.FieldLogger) *Table {
	return &Table{
		RoomID:     roomID,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MinBuyIn:   minBuyIn,
		MaxBuyIn:   maxBuyIn,
		Phase:      PhaseWaiting,
		DealerSeat: -1,
		rng:        gen,
		logger:     logger.WithField("room_id", roomID),
	}
}

// Join seats a new player. Fails if the seat is occupied, the name is
// already seated, or the buy-in is out of range.
func (t *Table) Join(seatIdx int, displayName string, buyIn int) error {
	if seatIdx < 0 || seatIdx >= MaxSeats {
		return UserError(fmt.Sprintf("invalid seat: %d", seatIdx))
	}

	if t.Seats[seatIdx] != nil {
		return ErrSeatTaken
	}

	if buyIn < t.MinBuyIn || buyIn > t.MaxBuyIn {
		return ErrBuyInOutOfRange
	}

	for _, s := range t.Seats {
		if s != nil && s.DisplayName == displayName {
			return ErrNameTaken
		}
	}

	t.Seats[seatIdx] = &Seat{
		Index:       seatIdx,
		DisplayName: displayName,
		Stack:       buyIn,
	}

	return nil
}

// Leave removes a player from their seat. If a hand is in progress and the
// player was dealt into it, they are auto-folded and their seat is only
// vacated once the hand is awarded.
func (t *Table) Leave(seatIdx int) error {
	s := t.Seats[seatIdx]
	if s == nil {
		return UserError("seat is empty")
	}

	if t.Phase != PhaseWaiting && t.Phase != PhaseHandOver && len(s.HoleCards) > 0 {
		s.Folded = true
		s.pendingRemoval = true
		if t.ActingSeat == seatIdx {
			t.advanceAfterFold()
		}
		return nil
	}

	t.Seats[seatIdx] = nil
	return nil
}

// SitOut toggles a seat's sitting-out flag; it takes effect starting next hand
func (t *Table) SitOut(seatIdx int) error {
	s := t.Seats[seatIdx]
	if s == nil {
		return UserError("seat is empty")
	}

	s.SittingOut = !s.SittingOut
	return nil
}

// eligibleSeats returns seat indices, in seat order, of the seats taking part
// in the hand: between hands, every occupied seat whose player is not sitting
// out; while a hand is in progress, the seats dealt into it, so sitting out
// or sitting down mid-hand only changes the order from the next hand on.
// Stacks are not checked here. Used for hand initiation, dealer rotation and
// turn order.
func (t *Table) eligibleSeats() []int {
	handLive := t.Phase != PhaseWaiting && t.Phase != PhaseHandOver

	var seats []int
	for i, s := range t.Seats {
		if s == nil {
			continue
		}
		if (handLive && len(s.HoleCards) > 0) || (!handLive && !s.SittingOut) {
			seats = append(seats, i)
		}
	}

	return seats
}

// occupiedSeatsFrom returns occupied, non-sitting-out seat indices in
// clockwise order starting just after `from`, wrapping around the table.
func (t *Table) occupiedSeatsFrom(from int) []int {
	all := t.eligibleSeats()
	if len(all) == 0 {
		return nil
	}

	// find the first seat strictly greater than from; if none, wrap to the first
	start := 0
	for i, seat := range all {
		if seat > from {
			start = i
			break
		}
	}

	ordered := make([]int, 0, len(all))
	for i := 0; i < len(all); i++ {
		ordered = append(ordered, all[(start+i)%len(all)])
	}

	return ordered
}

// nextSeat returns the next seat clockwise from `current` matching the filters,
// or -1 if none exists.
func (t *Table) nextSeat(current int, skipFolded, skipAllIn bool) int {
	for _, seat := range t.occupiedSeatsFrom(current) {
		s := t.Seats[seat]
		if s == nil {
			continue
		}
		if skipFolded && s.Folded {
			continue
		}
		if skipAllIn && s.AllIn {
			continue
		}
		if seat == current {
			continue
		}

		return seat
	}

	return -1
}

// activeSeatCount returns the number of seats eligible to be dealt into a hand
func (t *Table) activeSeatCount() int {
	return len(t.eligibleSeats())
}

// seatsInHand returns seat indices of players dealt into the current hand who haven't folded
func (t *Table) seatsInHand() []int {
	var seats []int
	for i, s := range t.Seats {
		if s != nil && s.inHand() {
			seats = append(seats, i)
		}
	}

	return seats
}

// seatsToAct returns seat indices of players who can still act this round
func (t *Table) seatsToAct() []int {
	var seats []int
	for _, i := range t.seatsInHand() {
		if t.Seats[i].toAct(t.HighBet) {
			seats = append(seats, i)
		}
	}

	return seats
}

// GetCurrentTurn returns the seat index of the player to act, or -1 if not in a betting round
func (t *Table) GetCurrentTurn() int {
	if !t.Phase.isBettingRound() {
		return -1
	}

	return t.ActingSeat
}

// checkInvariants validates acting-seat consistency and non-negative stacks
// after a mutation. A violation indicates a logic bug, not a user error.
func (t *Table) checkInvariants() error {
	for _, s := range t.Seats {
		if s != nil && s.Stack < 0 {
			return fmt.Errorf("seat %d has a negative stack: %d", s.Index, s.Stack)
		}
	}

	if t.Phase.isBettingRound() && t.ActingSeat >= 0 {
		s := t.Seats[t.ActingSeat]
		if s == nil || !s.inHand() || s.AllIn {
			return errors.New("acting seat is not eligible to act")
		}
	}

	return nil
}

// Pot returns the sum of every seat's contribution to the current hand,
// i.e. the total chips at stake across all pot tiers at this moment.
func (t *Table) Pot() int {
	total := 0
	for _, s := range t.Seats {
		if s != nil {
			total += s.TotalWagered
		}
	}

	return total
}

// evaluateShowdownHands returns each in-hand seat's best 5-card hand from its hole cards and the board
func (t *Table) evaluateShowdownHands() (map[int]handeval.Result, error) {
	results := make(map[int]handeval.Result)
	for _, i := range t.seatsInHand() {
		s := t.Seats[i]
		cards := make([]*deck.Card, 0, 7)
		cards = append(cards, s.HoleCards...)
		cards = append(cards, t.Community...)

		result, err := handeval.Best(cards)
		if err != nil {
			return nil, err
		}

		results[i] = result
	}

	return results, nil
}
