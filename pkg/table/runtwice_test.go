package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allInPreFlop drives a heads-up hand to the point where both seats are
// all-in before the river, returning the table paused for the run-it-twice
// choice.
func allInPreFlop(t *testing.T, seed int64) *Table {
	t.Helper()
	tbl := newTestTable(t, seed)
	require.NoError(t, tbl.Join(0, "A", 200))
	require.NoError(t, tbl.Join(1, "B", 200))
	require.NoError(t, tbl.StartHand())

	turn := tbl.GetCurrentTurn()
	_, _, err := tbl.Apply(turn, ActionAllIn, 0)
	require.NoError(t, err)

	turn = tbl.GetCurrentTurn()
	_, _, err = tbl.Apply(turn, ActionAllIn, 0)
	require.NoError(t, err)

	return tbl
}

func TestOfferRunTwice_pausesForBothAllIn(t *testing.T) {
	tbl := allInPreFlop(t, 10)

	assert.Equal(t, PhaseWaitingRunTwice, tbl.Phase)
	assert.True(t, tbl.RunTwiceEligible)
	assert.ElementsMatch(t, []int{0, 1}, tbl.runTwicePlayers)
}

func TestProcessRunTwiceChoice_unanimousYesDealsTwoBoards(t *testing.T) {
	tbl := allInPreFlop(t, 11)

	require.NoError(t, tbl.ProcessRunTwiceChoice(0, true))
	require.NoError(t, tbl.ProcessRunTwiceChoice(1, true))

	assert.Equal(t, PhaseHandOver, tbl.Phase)
	assert.False(t, tbl.RunTwiceEligible)
	assert.Len(t, tbl.Community, 5)
	assert.Len(t, tbl.LastSecondCommunity, 5)
	assert.NotEqual(t, tbl.Community, tbl.LastSecondCommunity)

	totalStack := tbl.Seats[0].Stack + tbl.Seats[1].Stack
	assert.Equal(t, 400, totalStack, "chips must be conserved across a split run-it-twice pot")
}

func TestProcessRunTwiceChoice_anyNoRunsOnce(t *testing.T) {
	tbl := allInPreFlop(t, 12)

	require.NoError(t, tbl.ProcessRunTwiceChoice(0, false))
	require.NoError(t, tbl.ProcessRunTwiceChoice(1, true))

	assert.Equal(t, PhaseHandOver, tbl.Phase)
	assert.Len(t, tbl.Community, 5)
	assert.Empty(t, tbl.LastSecondCommunity, "a single dissenting vote must not run the board twice")
}

func TestProcessRunTwiceChoice_rejectsIneligibleSeatAndDoubleVote(t *testing.T) {
	tbl := allInPreFlop(t, 13)

	err := tbl.ProcessRunTwiceChoice(0, true)
	require.NoError(t, err)

	err = tbl.ProcessRunTwiceChoice(0, true)
	assert.Error(t, err, "a seat cannot vote twice")

	err = tbl.ProcessRunTwiceChoice(2, true)
	assert.Error(t, err, "a seat outside the hand cannot vote")
}

func TestOfferRunTwice_riverGoesStraightToShowdown(t *testing.T) {
	tbl := newTestTable(t, 14)
	require.NoError(t, tbl.Join(0, "A", 200))
	require.NoError(t, tbl.Join(1, "B", 200))
	require.NoError(t, tbl.StartHand())
	tbl.burnAndDeal(3)
	tbl.burnAndDeal(1)
	tbl.burnAndDeal(1)
	tbl.Phase = PhaseRiver

	require.NoError(t, tbl.offerRunTwice())
	assert.Equal(t, PhaseHandOver, tbl.Phase, "a completed board must resolve straight to showdown")
}
