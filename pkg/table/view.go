package table

import "berrypoker/pkg/deck"

// SeatView is the public, shared view of one seat
type SeatView struct {
	Seat         int          `json:"seat"`
	DisplayName  string       `json:"displayName"`
	Stack        int          `json:"stack"`
	CurrentBet   int          `json:"currentBet"`
	TotalWagered int          `json:"totalWagered"`
	Folded       bool         `json:"folded"`
	AllIn        bool         `json:"allIn"`
	SittingOut   bool         `json:"sittingOut"`
	HasCards     bool         `json:"hasCards"`
	Position     string       `json:"position,omitempty"`
	HoleCards    []*deck.Card `json:"hole_cards,omitempty"`
}

// PublicState is the game state broadcast to every connected client. It is
// rendered per-recipient: PublicStateFor fills in YourCards/ValidActions/
// MinRaise/CallAmount for the seat it's built for, and reveals other seats'
// HoleCards once the hand reaches showdown.
type PublicState struct {
	RoomID            string       `json:"room_id"`
	SmallBlind        int          `json:"small_blind"`
	BigBlind          int          `json:"big_blind"`
	Phase             Phase        `json:"phase"`
	Players           []SeatView   `json:"players"`
	CommunityCards    []*deck.Card `json:"community_cards"`
	Pot               int          `json:"pot"`
	CurrentBet        int          `json:"current_bet"`
	CurrentPlayerSeat int          `json:"current_player_seat"`
	DealerSeat        int          `json:"dealer_seat"`
	HandNumber        int          `json:"hand_number"`

	YourCards    []*deck.Card  `json:"your_cards,omitempty"`
	ValidActions []ValidAction `json:"valid_actions,omitempty"`
	MinRaise     int           `json:"min_raise,omitempty"`
	CallAmount   int           `json:"call_amount,omitempty"`

	// RunTwiceEligible/RunTwicePlayers describe an in-progress run-it-twice
	// vote; once the hand ends, its outcome is reported on the hand_ended
	// envelope, not here.
	RunTwiceEligible bool  `json:"run_twice_eligible,omitempty"`
	RunTwicePlayers  []int `json:"run_twice_players,omitempty"`
}

// PublicState builds the common, recipient-independent state of the table.
// Callers wanting a specific seat's cards and valid actions should use
// PublicStateFor instead.
func (t *Table) PublicState() PublicState {
	players := make([]SeatView, 0, MaxSeats)
	for i, s := range t.Seats {
		if s == nil {
			continue
		}

		players = append(players, SeatView{
			Seat:         i,
			DisplayName:  s.DisplayName,
			Stack:        s.Stack,
			CurrentBet:   s.CurrentBet,
			TotalWagered: s.TotalWagered,
			Folded:       s.Folded,
			AllIn:        s.AllIn,
			SittingOut:   s.SittingOut,
			HasCards:     len(s.HoleCards) > 0,
			Position:     t.PositionName(i),
		})
	}

	return PublicState{
		RoomID:            t.RoomID,
		SmallBlind:        t.SmallBlind,
		BigBlind:          t.BigBlind,
		Phase:             t.Phase,
		Players:           players,
		CommunityCards:    []*deck.Card(t.Community),
		Pot:               t.Pot(),
		CurrentBet:        t.HighBet,
		CurrentPlayerSeat: t.ActingSeat,
		DealerSeat:        t.DealerSeat,
		HandNumber:        t.HandNumber,
		RunTwiceEligible:  t.RunTwiceEligible,
		RunTwicePlayers:   t.runTwicePlayers,
	}
}

// PublicStateFor builds the game_state view for one specific recipient: it
// reveals that seat's own hole cards (and, once the hand reaches showdown,
// every non-folded seat's), and fills in the acting seat's valid actions.
func (t *Table) PublicStateFor(seatIdx int) PublicState {
	state := t.PublicState()

	showdownReveal := t.Phase == PhaseShowdown || t.Phase == PhaseHandOver
	for i := range state.Players {
		sv := &state.Players[i]
		seat := t.Seats[sv.Seat]
		if seat == nil {
			continue
		}

		if sv.Seat == seatIdx || (showdownReveal && !seat.Folded) {
			sv.HoleCards = []*deck.Card(seat.HoleCards)
		}
	}

	s := t.Seats[seatIdx]
	if s == nil {
		return state
	}

	state.YourCards = []*deck.Card(s.HoleCards)

	if seatIdx == t.ActingSeat {
		state.ValidActions = t.ValidActions(seatIdx)
		for _, a := range state.ValidActions {
			switch a.Action {
			case ActionCall:
				state.CallAmount = a.Amount
			case ActionBet, ActionRaise:
				state.MinRaise = a.Min
			}
		}
	}

	return state
}

// SecondCommunity exposes the run-it-twice second board (if any) as the same
// {rank,suit} card type used everywhere else, for the hand_ended envelope.
func (t *Table) SecondCommunity() []*deck.Card {
	if len(t.LastSecondCommunity) == 0 {
		return nil
	}
	return []*deck.Card(t.LastSecondCommunity)
}

