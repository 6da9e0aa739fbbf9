package potengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPots_noAllIns(t *testing.T) {
	pots := BuildPots([]Contribution{
		{SeatID: 1, Total: 100},
		{SeatID: 2, Total: 100},
		{SeatID: 3, Total: 100},
	})

	if assert.Len(t, pots, 1) {
		assert.Equal(t, 300, pots[0].Amount)
		assert.ElementsMatch(t, []int{1, 2, 3}, pots[0].Eligible)
	}
}

func TestBuildPots_sidePotFromShortAllIn(t *testing.T) {
	// seat 1 all-in for 50, seats 2 and 3 both put in 100
	pots := BuildPots([]Contribution{
		{SeatID: 1, Total: 50, IsAllIn: true},
		{SeatID: 2, Total: 100},
		{SeatID: 3, Total: 100},
	})

	if assert.Len(t, pots, 2) {
		assert.Equal(t, 150, pots[0].Amount) // 50 * 3
		assert.ElementsMatch(t, []int{1, 2, 3}, pots[0].Eligible)

		assert.Equal(t, 100, pots[1].Amount) // (100-50) * 2
		assert.ElementsMatch(t, []int{2, 3}, pots[1].Eligible)
	}
}

func TestBuildPots_foldedContributionsCountButAreNotEligible(t *testing.T) {
	pots := BuildPots([]Contribution{
		{SeatID: 1, Total: 100, Folded: true},
		{SeatID: 2, Total: 100},
	})

	if assert.Len(t, pots, 1) {
		assert.Equal(t, 200, pots[0].Amount)
		assert.Equal(t, []int{2}, pots[0].Eligible)
	}
}

func TestBuildPots_uncalledBetIsRefundedViaSoleEligibility(t *testing.T) {
	pots := BuildPots([]Contribution{
		{SeatID: 1, Total: 300},
		{SeatID: 2, Total: 100, Folded: true},
	})

	if assert.Len(t, pots, 1) {
		assert.Equal(t, 400, pots[0].Amount)
		assert.Equal(t, []int{1}, pots[0].Eligible)
	}
}

func TestAward_leftoverChipsGoLeftOfDealer(t *testing.T) {
	pot := Pot{Amount: 100, Eligible: []int{1, 2, 3}}
	rankings := []Ranking{
		{SeatID: 1, Rank: 5},
		{SeatID: 2, Rank: 5},
		{SeatID: 3, Rank: 5},
	}

	// dealer is seat 3, so order-from-dealer starts at seat 1
	payouts := Award(pot, rankings, []int{1, 2, 3})

	assert.Equal(t, 34, payouts[1])
	assert.Equal(t, 33, payouts[2])
	assert.Equal(t, 33, payouts[3])
}

func TestAward_onlyBestRankAmongEligibleWins(t *testing.T) {
	pot := Pot{Amount: 100, Eligible: []int{1, 2}}
	rankings := []Ranking{
		{SeatID: 1, Rank: 10},
		{SeatID: 2, Rank: 5},
		{SeatID: 3, Rank: 99}, // not eligible for this pot
	}

	payouts := Award(pot, rankings, []int{1, 2, 3})
	assert.Equal(t, 100, payouts[1])
	assert.Equal(t, 0, payouts[2])
}
