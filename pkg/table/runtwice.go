package table

import (
	"berrypoker/pkg/deck"
	"berrypoker/pkg/handeval"
	"berrypoker/pkg/potengine"
)

// offerRunTwice pauses a hand that has reached a point where no more betting
// is possible but the board isn't complete yet, letting the remaining all-in
// players vote on running the rest of the board twice. If the board is
// already complete, or too few players remain to make the choice meaningful,
// it falls straight through to a single run-out.
func (t *Table) offerRunTwice() error {
	if t.Phase == PhaseRiver {
		return t.runShowdown()
	}

	inHand := t.seatsInHand()
	if len(inHand) < 2 {
		return t.runOutBoard()
	}

	t.runTwicePhase = t.Phase
	t.runTwicePlayers = inHand
	t.runTwiceChoices = make(map[int]bool)
	t.savedCommunity = t.Community.Clone()
	t.savedDeck = make([]*deck.Card, len(t.deck.Cards))
	copy(t.savedDeck, t.deck.Cards)

	t.RunTwiceEligible = true
	t.Phase = PhaseWaitingRunTwice

	return nil
}

// ProcessRunTwiceChoice records one eligible player's run-it-twice vote. Once
// every eligible player has chosen, the hand resolves: any "run once" vote
// runs the board out a single time, otherwise the board is run twice and
// every pot split in half between the two runs' winners.
func (t *Table) ProcessRunTwiceChoice(seatIdx int, wantsTwice bool) error {
	if t.Phase != PhaseWaitingRunTwice {
		return UserError("not waiting for a run-it-twice choice")
	}

	if !containsSeat(t.runTwicePlayers, seatIdx) {
		return UserError("you are not eligible for a run-it-twice choice")
	}

	if _, chosen := t.runTwiceChoices[seatIdx]; chosen {
		return UserError("you already made your choice")
	}

	t.runTwiceChoices[seatIdx] = wantsTwice
	if len(t.runTwiceChoices) < len(t.runTwicePlayers) {
		return nil
	}

	runTwice := true
	for _, wants := range t.runTwiceChoices {
		if !wants {
			runTwice = false
			break
		}
	}

	t.RunTwiceEligible = false
	t.Phase = t.runTwicePhase

	if !runTwice {
		return t.runOutBoard()
	}

	return t.runItTwice()
}

func containsSeat(seats []int, seat int) bool {
	for _, s := range seats {
		if s == seat {
			return true
		}
	}

	return false
}

// runItTwice deals two independent completions of the board from the saved
// deck state, evaluates a showdown against each, and awards every pot split
// half-and-half between the two runs' winners.
func (t *Table) runItTwice() error {
	if err := t.dealRemainingStreets(); err != nil {
		return err
	}

	firstCommunity := t.Community.Clone()
	firstEvals, err := t.evaluateShowdownHands()
	if err != nil {
		return err
	}

	t.deck.Cards = make([]*deck.Card, len(t.savedDeck))
	copy(t.deck.Cards, t.savedDeck)
	t.shuffleRemainingDeck()
	t.Community = t.savedCommunity.Clone()
	t.Phase = t.runTwicePhase

	if err := t.dealRemainingStreets(); err != nil {
		return err
	}

	secondCommunity := t.Community.Clone()
	secondEvals, err := t.evaluateShowdownHands()
	if err != nil {
		return err
	}

	return t.awardRunTwice(firstEvals, secondEvals, firstCommunity, secondCommunity)
}

// dealRemainingStreets deals every street through the river with no betting,
// the same progression runOutBoard uses for a single run.
func (t *Table) dealRemainingStreets() error {
	for t.Phase != PhaseRiver {
		switch t.Phase {
		case PhasePreFlop:
			t.burnAndDeal(3)
			t.Phase = PhaseFlop
		case PhaseFlop:
			t.burnAndDeal(1)
			t.Phase = PhaseTurn
		case PhaseTurn:
			t.burnAndDeal(1)
			t.Phase = PhaseRiver
		}
	}

	return nil
}

// shuffleRemainingDeck re-shuffles whatever cards are left in the deck in
// place. Unlike Deck.Shuffle, it never rebuilds a fresh 52-card deck, since a
// second run must be dealt from the same cards the first run didn't use.
func (t *Table) shuffleRemainingDeck() {
	cards := t.deck.Cards
	for j := len(cards) - 1; j > 0; j-- {
		i := t.rng.Intn(j + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// awardRunTwice splits every pot in half between the two runs' winners,
// crediting an odd leftover chip to the first run's side, matching the
// single-run tie-break rule.
func (t *Table) awardRunTwice(firstEvals, secondEvals map[int]handeval.Result, firstCommunity, secondCommunity deck.Hand) error {
	inHand := t.seatsInHand()
	pots := potengine.BuildPots(t.contributions())
	orderFromDealer := t.occupiedSeatsFrom(t.DealerSeat)

	firstRankings := rankingsFrom(firstEvals)
	secondRankings := rankingsFrom(secondEvals)

	payouts := map[int]int{}
	total := 0
	for _, pot := range pots {
		total += pot.Amount

		firstHalf := pot.Amount - pot.Amount/2
		secondHalf := pot.Amount / 2

		for seat, amount := range potengine.Award(potengine.Pot{Amount: firstHalf, Eligible: pot.Eligible}, firstRankings, orderFromDealer) {
			payouts[seat] += amount
		}
		for seat, amount := range potengine.Award(potengine.Pot{Amount: secondHalf, Eligible: pot.Eligible}, secondRankings, orderFromDealer) {
			payouts[seat] += amount
		}
	}

	winnerSet := map[int]bool{}
	for seat, amount := range payouts {
		t.Seats[seat].Stack += amount
		winnerSet[seat] = true
	}

	t.Community = firstCommunity
	t.LastSecondCommunity = secondCommunity
	t.Phase = PhaseHandOver
	t.LastPotTotal = total
	t.LastHandResults = t.buildHandResults(inHand, firstEvals, winnerSet)
	t.LastWinners = nil
	for _, r := range t.LastHandResults {
		if r.IsWinner {
			t.LastWinners = append(t.LastWinners, r.PlayerName)
		}
	}

	return nil
}

func rankingsFrom(evals map[int]handeval.Result) []potengine.Ranking {
	rankings := make([]potengine.Ranking, 0, len(evals))
	for seat, result := range evals {
		rankings = append(rankings, potengine.Ranking{SeatID: seat, Rank: result.Strength()})
	}

	return rankings
}
