package table

import (
	"berrypoker/pkg/handeval"
	"berrypoker/pkg/potengine"
)

// advanceAfterFold re-runs the advance-game check after a seat is auto-folded
// (e.g. because they disconnected mid-hand), the same way it runs after any
// applied action.
func (t *Table) advanceAfterFold() {
	_ = t.advanceGame()
}

// contributions returns every seat's total chips committed this hand, folded
// or not, for building side pots at showdown or on an early fold-out win.
func (t *Table) contributions() []potengine.Contribution {
	var contributions []potengine.Contribution
	for i, s := range t.Seats {
		if s == nil || s.TotalWagered == 0 {
			continue
		}

		contributions = append(contributions, potengine.Contribution{
			SeatID:  i,
			Total:   s.TotalWagered,
			Folded:  s.Folded,
			IsAllIn: s.AllIn,
		})
	}

	return contributions
}

// awardUncontested ends the hand when every player but one has folded: the
// remaining player wins every pot without a showdown, including a refund of
// any excess they bet that no one else called.
func (t *Table) awardUncontested(inHand []int) error {
	t.Phase = PhaseHandOver
	t.ActingSeat = -1

	if len(inHand) == 0 {
		return nil
	}

	winner := inHand[0]
	total := 0
	for _, pot := range potengine.BuildPots(t.contributions()) {
		total += pot.Amount
	}

	t.Seats[winner].Stack += total
	t.LastPotTotal = total
	t.LastWinners = []string{t.Seats[winner].DisplayName}
	t.LastHandResults = []HandResult{{
		SeatIndex:   winner,
		PlayerName:  t.Seats[winner].DisplayName,
		Description: "won uncontested",
		IsWinner:    true,
	}}

	return nil
}

// runShowdown evaluates every in-hand seat's best hand, builds side pots from
// the hand's contributions, and awards each pot to its best-ranked eligible
// seat(s), splitting ties with the extra chip going to the seat closest to
// the left of the dealer.
func (t *Table) runShowdown() error {
	t.Phase = PhaseShowdown
	t.ActingSeat = -1

	inHand := t.seatsInHand()
	if len(inHand) <= 1 {
		return t.awardUncontested(inHand)
	}

	evals, err := t.evaluateShowdownHands()
	if err != nil {
		return err
	}

	pots := potengine.BuildPots(t.contributions())
	orderFromDealer := t.occupiedSeatsFrom(t.DealerSeat)

	rankings := make([]potengine.Ranking, 0, len(evals))
	for seat, result := range evals {
		rankings = append(rankings, potengine.Ranking{SeatID: seat, Rank: result.Strength()})
	}

	payouts := map[int]int{}
	total := 0
	for _, pot := range pots {
		total += pot.Amount
		for seat, amount := range potengine.Award(pot, rankings, orderFromDealer) {
			payouts[seat] += amount
		}
	}

	winnerSet := map[int]bool{}
	for seat, amount := range payouts {
		t.Seats[seat].Stack += amount
		winnerSet[seat] = true
	}

	t.Phase = PhaseHandOver
	t.LastPotTotal = total
	t.LastHandResults = t.buildHandResults(inHand, evals, winnerSet)
	t.LastWinners = nil
	for _, r := range t.LastHandResults {
		if r.IsWinner {
			t.LastWinners = append(t.LastWinners, r.PlayerName)
		}
	}

	return nil
}

func (t *Table) buildHandResults(inHand []int, evals map[int]handeval.Result, winnerSet map[int]bool) []HandResult {
	results := make([]HandResult, 0, len(inHand))
	for _, seat := range t.occupiedSeatsFrom(t.DealerSeat) {
		result, ok := evals[seat]
		if !ok {
			continue
		}

		results = append(results, HandResult{
			SeatIndex:   seat,
			PlayerName:  t.Seats[seat].DisplayName,
			Description: result.Description,
			IsWinner:    winnerSet[seat],
		})
	}

	return results
}
