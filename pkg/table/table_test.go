package table

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berrypoker/internal/rng"
	"berrypoker/pkg/potengine"
)

func newTestTable(t *testing.T, seed int64) *Table {
	t.Helper()
	tbl := New("room-1", 5, 10, 100, 1000, rng.NewMath(seed), logrus.StandardLogger())
	return tbl
}

func seatN(t *testing.T, tbl *Table, n int, stack int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, tbl.Join(i, string(rune('A'+i)), stack))
	}
}

func TestStartHand_headsUpBlindsAndOption(t *testing.T) {
	tbl := newTestTable(t, 1)
	seatN(t, tbl, 2, 200)

	require.NoError(t, tbl.StartHand())

	// heads-up: dealer posts SB, other player posts BB
	dealer := tbl.Seats[tbl.DealerSeat]
	other := tbl.Seats[(tbl.DealerSeat+1)%2]
	assert.Equal(t, 5, dealer.CurrentBet)
	assert.Equal(t, 10, other.CurrentBet)
	assert.Equal(t, 10, tbl.HighBet)

	// dealer (SB) acts first pre-flop heads-up
	assert.Equal(t, tbl.DealerSeat, tbl.GetCurrentTurn())

	// dealer calls, action passes to BB who still has the option to raise or check
	_, _, err := tbl.Apply(tbl.DealerSeat, ActionCall, 0)
	require.NoError(t, err)
	assert.Equal(t, other.Index, tbl.GetCurrentTurn())

	valid := tbl.ValidActions(other.Index)
	var sawCheck bool
	for _, a := range valid {
		if a.Action == ActionCheck {
			sawCheck = true
		}
	}
	assert.True(t, sawCheck, "big blind must retain the option to check")
}

func TestApply_minRaiseTracking(t *testing.T) {
	tbl := newTestTable(t, 2)
	seatN(t, tbl, 3, 1000)
	require.NoError(t, tbl.StartHand())

	utg := tbl.GetCurrentTurn()
	_, _, err := tbl.Apply(utg, ActionRaise, 30)
	require.NoError(t, err)

	// last raise size is now 30-10=20, so a raise must go to at least 30+20=50
	next := tbl.GetCurrentTurn()
	_, _, err = tbl.Apply(next, ActionRaise, 45)
	assert.Error(t, err, "raise to 45 is smaller than the minimum raise of 50")

	_, _, err = tbl.Apply(next, ActionRaise, 55)
	assert.NoError(t, err, "raise to 55 meets the minimum raise")
	assert.Equal(t, 55, tbl.HighBet)
	assert.Equal(t, 25, tbl.LastRaiseSize)
}

func TestApply_shortAllInDoesNotReopenAction(t *testing.T) {
	tbl := newTestTable(t, 3)
	require.NoError(t, tbl.Join(0, "A", 1000))
	require.NoError(t, tbl.Join(1, "B", 135))
	require.NoError(t, tbl.Join(2, "C", 1000))
	require.NoError(t, tbl.StartHand())

	first := tbl.GetCurrentTurn()
	require.Equal(t, 0, first, "dealer acts first in a 3-handed preflop round")
	_, _, err := tbl.Apply(first, ActionRaise, 100)
	require.NoError(t, err)

	second := tbl.GetCurrentTurn()
	require.Equal(t, 1, second)
	// B can only get to 135, short of the 190 minimum raise: a legal short all-in
	kind, amount, err := tbl.Apply(second, ActionAllIn, 0)
	require.NoError(t, err)
	assert.Equal(t, ActionAllIn, kind)
	assert.Equal(t, 135, amount)
	assert.Equal(t, 90, tbl.LastRaiseSize, "a short all-in must not update the last raise size")
}

func TestApply_shortAllInDoesNotAllowAlreadyActedSeatToRaise(t *testing.T) {
	tbl := newTestTable(t, 30)
	tbl.MinBuyIn = 40
	require.NoError(t, tbl.Join(0, "A", 100))
	require.NoError(t, tbl.Join(1, "B", 100))
	require.NoError(t, tbl.Join(2, "C", 40))
	require.NoError(t, tbl.StartHand())

	first := tbl.GetCurrentTurn()
	require.Equal(t, 0, first, "dealer acts first in a 3-handed preflop round")
	_, _, err := tbl.Apply(first, ActionRaise, 30)
	require.NoError(t, err)

	second := tbl.GetCurrentTurn()
	require.Equal(t, 1, second)
	_, _, err = tbl.Apply(second, ActionCall, 0)
	require.NoError(t, err)

	third := tbl.GetCurrentTurn()
	require.Equal(t, 2, third)
	// C can only reach 40, short of the 50 minimum raise: a legal short all-in
	// that does not reopen action for A or B.
	kind, amount, err := tbl.Apply(third, ActionAllIn, 0)
	require.NoError(t, err)
	assert.Equal(t, ActionAllIn, kind)
	assert.Equal(t, 40, amount)

	// action returns to A, who already raised this round: they may only call
	// or fold, not raise again, even though C's all-in left them facing a bet.
	valid := tbl.ValidActions(0)
	var sawRaise, sawCall bool
	for _, a := range valid {
		switch a.Action {
		case ActionRaise, ActionBet:
			sawRaise = true
		case ActionCall:
			sawCall = true
		}
	}
	assert.False(t, sawRaise, "action must not reopen for a player who already raised")
	assert.True(t, sawCall, "the player must still be offered a call for the extra chips")

	_, _, err = tbl.Apply(0, ActionRaise, 100)
	assert.Error(t, err, "raising after a non-reopening short all-in must be rejected")
}

func TestApply_sidePotWithUncalledRefund(t *testing.T) {
	tbl := newTestTable(t, 4)
	tbl.MinBuyIn = 50
	require.NoError(t, tbl.Join(0, "A", 50))
	require.NoError(t, tbl.Join(1, "B", 300))
	require.NoError(t, tbl.Join(2, "C", 400))
	require.NoError(t, tbl.StartHand())

	// drive all three players all-in preflop: A for 50, B for 300, C for 400
	for tbl.Phase == PhasePreFlop {
		_, _, err := tbl.Apply(tbl.GetCurrentTurn(), ActionAllIn, 0)
		require.NoError(t, err)
	}

	assert.NotEqual(t, PhasePreFlop, tbl.Phase)

	// a main pot all three contest, a side pot between B and C, and C's
	// uncalled last 100 as a pot only C is eligible for
	pots := potengine.BuildPots(tbl.contributions())
	require.Len(t, pots, 3)
	assert.Equal(t, potengine.Pot{Amount: 150, Eligible: []int{0, 1, 2}}, pots[0])
	assert.Equal(t, potengine.Pot{Amount: 500, Eligible: []int{1, 2}}, pots[1])
	assert.Equal(t, potengine.Pot{Amount: 100, Eligible: []int{2}}, pots[2])
}

func TestApply_foldOutAwardsUncontested(t *testing.T) {
	tbl := newTestTable(t, 5)
	seatN(t, tbl, 2, 200)
	require.NoError(t, tbl.StartHand())

	turn := tbl.GetCurrentTurn()
	other := tbl.Seats[(turn+1)%2]
	startingStack := other.Stack

	_, _, err := tbl.Apply(turn, ActionFold, 0)
	require.NoError(t, err)

	assert.Equal(t, PhaseHandOver, tbl.Phase)
	assert.Equal(t, []string{other.DisplayName}, tbl.LastWinners)
	assert.Greater(t, other.Stack, startingStack)
}

func TestLeave_midHandAutoFoldsAndDefersSeatRemoval(t *testing.T) {
	tbl := newTestTable(t, 6)
	seatN(t, tbl, 3, 200)
	require.NoError(t, tbl.StartHand())

	turn := tbl.GetCurrentTurn()
	require.NoError(t, tbl.Leave(turn))

	assert.NotNil(t, tbl.Seats[turn], "seat should stay occupied until the hand is awarded")
	assert.True(t, tbl.Seats[turn].Folded)
}

func TestPositionName_threeHanded(t *testing.T) {
	tbl := newTestTable(t, 7)
	seatN(t, tbl, 3, 200)
	require.NoError(t, tbl.StartHand())

	assert.Equal(t, "BTN", tbl.PositionName(tbl.DealerSeat))
}
