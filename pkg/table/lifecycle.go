package table

import "berrypoker/pkg/deck"

// StartHand begins a new hand: rotates the dealer, posts blinds, deals hole
// cards, and sets the first seat to act. Requires at least two eligible
// (seated, not sitting out) seats with a stack.
func (t *Table) StartHand() error {
	if t.Phase != PhaseWaiting && t.Phase != PhaseHandOver {
		return ErrHandInProgress
	}

	t.removePendingSeats()

	eligible := t.eligibleSeats()
	if len(eligible) < 2 {
		return ErrNotEnoughPlayers
	}

	t.HandNumber++

	t.deck = deck.New()
	t.deck.Shuffle(t.rng)
	t.Community = make(deck.Hand, 0, 5)
	t.HighBet = 0
	t.LastRaiseSize = t.BigBlind
	t.LastHandResults = nil
	t.LastWinners = nil
	t.LastPotTotal = 0
	t.LastSecondCommunity = nil
	t.RunTwiceEligible = false
	t.runTwicePlayers = nil
	t.runTwiceChoices = nil
	t.savedDeck = nil
	t.savedCommunity = nil

	for _, s := range t.Seats {
		if s != nil {
			s.resetForHand()
		}
	}

	t.advanceDealer()
	t.postBlinds()
	t.dealHoleCards()

	t.Phase = PhasePreFlop
	t.setFirstToActPreFlop()

	return t.checkInvariants()
}

// removePendingSeats vacates seats that were left mid-hand and are now
// safe to clear, since the previous hand has been awarded.
func (t *Table) removePendingSeats() {
	for i, s := range t.Seats {
		if s != nil && s.pendingRemoval {
			t.Seats[i] = nil
		}
	}

	for i, s := range t.Seats {
		if s != nil && s.Stack == 0 {
			t.Seats[i] = nil
		}
	}
}

// advanceDealer moves the button to the next eligible seat clockwise
func (t *Table) advanceDealer() {
	eligible := t.eligibleSeats()
	if t.DealerSeat < 0 {
		t.DealerSeat = eligible[0]
		return
	}

	if next := t.nextEligibleFrom(t.DealerSeat); next >= 0 {
		t.DealerSeat = next
	}
}

// nextEligibleFrom returns the next eligible (seated, not sitting out) seat
// clockwise from `from`, regardless of folded/all-in state.
func (t *Table) nextEligibleFrom(from int) int {
	eligible := t.eligibleSeats()
	if len(eligible) == 0 {
		return -1
	}

	start := 0
	for i, seat := range eligible {
		if seat > from {
			start = i
			break
		}
	}

	for i := 0; i < len(eligible); i++ {
		seat := eligible[(start+i)%len(eligible)]
		if seat != from {
			return seat
		}
	}

	return -1
}

func (t *Table) isHeadsUp() bool {
	return t.activeSeatCount() == 2
}

// sbSeat returns the small blind seat: the dealer in heads-up, otherwise the next eligible seat left of the dealer
func (t *Table) sbSeat() int {
	if t.isHeadsUp() {
		return t.DealerSeat
	}

	return t.nextEligibleFrom(t.DealerSeat)
}

// bbSeat returns the big blind seat: the next eligible seat left of the small blind
func (t *Table) bbSeat() int {
	return t.nextEligibleFrom(t.sbSeat())
}

func (t *Table) postBlinds() {
	sb := t.Seats[t.sbSeat()]
	bb := t.Seats[t.bbSeat()]

	sb.commit(min(t.SmallBlind, sb.Stack+sb.CurrentBet))
	bb.commit(min(t.BigBlind, bb.Stack+bb.CurrentBet))

	t.HighBet = bb.CurrentBet
}

func (t *Table) dealHoleCards() {
	order := t.occupiedSeatsFrom(t.DealerSeat)

	for i := 0; i < 2; i++ {
		for _, seat := range order {
			card, _ := t.deck.Draw()
			t.Seats[seat].HoleCards.AddCard(card)
		}
	}
}

// setFirstToActPreFlop sets the acting seat for the pre-flop round:
// heads-up the small blind (dealer) acts first, otherwise the seat left of
// the big blind (UTG).
func (t *Table) setFirstToActPreFlop() {
	if t.isHeadsUp() {
		seat := t.sbSeat()
		if t.Seats[seat].AllIn {
			seat = t.nextSeat(seat, true, true)
		}
		t.ActingSeat = seat
		return
	}

	t.ActingSeat = t.nextSeat(t.bbSeat(), true, true)
}

// setFirstToActPostFlop sets the acting seat for post-flop rounds: heads-up
// the big blind acts first, otherwise the first in-hand seat left of the dealer.
func (t *Table) setFirstToActPostFlop() {
	if t.isHeadsUp() {
		bb := t.bbSeat()
		s := t.Seats[bb]
		if !s.Folded && !s.AllIn {
			t.ActingSeat = bb
			return
		}
	}

	t.ActingSeat = t.nextSeat(t.DealerSeat, true, true)
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
