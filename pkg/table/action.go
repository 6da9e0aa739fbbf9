package table

import "fmt"

// ActionKind is a betting action a seated player can take
type ActionKind string

// ActionKind constants
const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionBet   ActionKind = "bet"
	ActionRaise ActionKind = "raise"
	ActionAllIn ActionKind = "all_in"
)

// ValidAction describes one action the acting seat may currently take, along
// with the chip bounds the client needs to render it.
type ValidAction struct {
	Action ActionKind `json:"action"`
	Amount int        `json:"amount,omitempty"`
	Min    int        `json:"min,omitempty"`
	Max    int        `json:"max,omitempty"`
}

// ValidActions returns the actions available to the seat if it is their turn to act
func (t *Table) ValidActions(seatIdx int) []ValidAction {
	if t.GetCurrentTurn() != seatIdx {
		return nil
	}

	s := t.Seats[seatIdx]
	var actions []ValidAction

	if s.CurrentBet == t.HighBet {
		actions = append(actions, ValidAction{Action: ActionCheck})
	} else {
		actions = append(actions, ValidAction{Action: ActionCall, Amount: min(t.HighBet-s.CurrentBet, s.Stack)})
	}

	maxTarget := s.CurrentBet + s.Stack
	minTarget := t.HighBet + t.LastRaiseSize
	if minTarget > maxTarget {
		minTarget = maxTarget
	}

	if maxTarget > t.HighBet && !s.HasActed {
		kind := ActionRaise
		if t.HighBet == 0 {
			kind = ActionBet
		}
		actions = append(actions, ValidAction{Action: kind, Min: minTarget, Max: maxTarget})
	}

	return append(actions, ValidAction{Action: ActionFold})
}

// Apply validates and applies an action from the acting seat, then advances
// the round or hand as far as it now can go without further player input.
// It returns the effective action kind performed (call may become all_in)
// and an amount for the broadcast envelope: the chips committed by a call,
// or the total the bet is raised to by a bet, raise or raising all-in.
func (t *Table) Apply(seatIdx int, kind ActionKind, amount int) (ActionKind, int, error) {
	if !t.Phase.isBettingRound() {
		return "", 0, UserError("not in a betting round")
	}

	if t.ActingSeat != seatIdx {
		return "", 0, UserError("it is not your turn")
	}

	s := t.Seats[seatIdx]
	if s == nil || !s.inHand() || s.AllIn {
		return "", 0, UserError("you cannot act right now")
	}

	var resultKind ActionKind
	var resultAmount int
	var err error

	switch kind {
	case ActionFold:
		s.Folded = true
		s.HasActed = true
		resultKind, resultAmount = ActionFold, 0
	case ActionCheck:
		if s.CurrentBet != t.HighBet {
			return "", 0, UserError("cannot check, you must call or fold")
		}
		s.HasActed = true
		resultKind, resultAmount = ActionCheck, 0
	case ActionCall:
		if t.HighBet <= s.CurrentBet {
			return "", 0, UserError("there is nothing to call")
		}
		committed := s.commit(t.HighBet - s.CurrentBet)
		s.HasActed = true
		resultKind, resultAmount = ActionCall, committed
		if s.AllIn {
			resultKind = ActionAllIn
		}
	case ActionAllIn:
		maxTarget := s.CurrentBet + s.Stack
		if maxTarget <= t.HighBet {
			// not enough chips left to raise: an all-in here is just a call for the rest of the stack
			committed := s.commit(s.Stack)
			s.HasActed = true
			resultKind, resultAmount = ActionAllIn, committed
			break
		}

		resultKind, resultAmount, err = t.applyRaiseOrAllIn(s, kind, amount)
	case ActionBet, ActionRaise:
		resultKind, resultAmount, err = t.applyRaiseOrAllIn(s, kind, amount)
	default:
		return "", 0, UserError(fmt.Sprintf("unknown action: %s", kind))
	}

	if err != nil {
		return "", 0, err
	}

	if err := t.advanceGame(); err != nil {
		return resultKind, resultAmount, err
	}

	return resultKind, resultAmount, t.checkInvariants()
}

// applyRaiseOrAllIn unifies "raise to X" and "shove for the rest of my stack"
// into one code path, per the min-raise/short-all-in rule: a raise that is
// smaller than the current min-raise is only legal if it puts the player
// all-in, and such a short all-in neither updates last-raise-size nor
// re-opens action for players who have already acted this round. A player
// who has already acted this round and whose action was never reopened by
// a full-sized raise (resetActedFlagsExcept) may only call or fold, even if
// they're forced back to the table by an intervening short all-in.
func (t *Table) applyRaiseOrAllIn(s *Seat, kind ActionKind, amount int) (ActionKind, int, error) {
	if s.HasActed {
		return "", 0, UserError("action has not been reopened to you: you may only call or fold")
	}

	target := amount
	if kind == ActionAllIn {
		target = s.CurrentBet + s.Stack
	}

	if target <= s.CurrentBet {
		return "", 0, UserError("raise amount must exceed your current bet")
	}

	maxTarget := s.CurrentBet + s.Stack
	if target > maxTarget {
		return "", 0, UserError("you don't have enough chips for that raise")
	}

	isAllIn := target == maxTarget

	if target <= t.HighBet {
		return "", 0, UserError("raise must exceed the current bet")
	}

	minTarget := t.HighBet + t.LastRaiseSize
	if !isAllIn && target < minTarget {
		return "", 0, UserError(fmt.Sprintf("minimum raise is to %d", minTarget))
	}

	raiseIncrement := target - t.HighBet
	wasFullRaise := raiseIncrement >= t.LastRaiseSize

	s.commit(target - s.CurrentBet)
	s.HasActed = true
	t.HighBet = target

	if wasFullRaise {
		t.LastRaiseSize = raiseIncrement
		t.resetActedFlagsExcept(s.Index)
	}

	resultKind := ActionRaise
	switch {
	case isAllIn:
		resultKind = ActionAllIn
	case kind == ActionBet:
		resultKind = ActionBet
	}

	return resultKind, target, nil
}

// resetActedFlagsExcept clears has-acted for every other in-hand, non-all-in
// seat, giving them a fresh right to act after a full-sized raise.
func (t *Table) resetActedFlagsExcept(seatIdx int) {
	for _, i := range t.seatsInHand() {
		if i == seatIdx || t.Seats[i].AllIn {
			continue
		}

		t.Seats[i].HasActed = false
	}
}

// advanceGame runs after every applied action: it checks for a fold-out win,
// otherwise either passes the turn to the next seat or, if the round is
// complete, advances the phase (dealing more cards, running the board out
// when no one can act further, or reaching showdown).
func (t *Table) advanceGame() error {
	inHand := t.seatsInHand()
	if len(inHand) <= 1 {
		return t.awardUncontested(inHand)
	}

	if toAct := t.seatsToAct(); len(toAct) > 0 {
		t.ActingSeat = t.nextSeat(t.ActingSeat, true, true)
		return nil
	}

	return t.advancePhaseOrRunout()
}

// advancePhaseOrRunout closes out the betting round and moves to the next
// street, running the board out without further betting if fewer than two
// in-hand players are still able to act.
func (t *Table) advancePhaseOrRunout() error {
	for _, s := range t.Seats {
		if s != nil {
			s.resetForRound()
		}
	}
	t.HighBet = 0
	t.LastRaiseSize = t.BigBlind

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
	case PhaseRiver:
		return t.runShowdown()
	}

	t.setFirstToActPostFlop()

	nonAllIn := 0
	for _, i := range t.seatsInHand() {
		if !t.Seats[i].AllIn {
			nonAllIn++
		}
	}

	if nonAllIn <= 1 {
		return t.offerRunTwice()
	}

	return nil
}

// runOutBoard deals every remaining street with no more betting, then goes to showdown
func (t *Table) runOutBoard() error {
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

	return t.runShowdown()
}

func (t *Table) burnAndDeal(n int) {
	_, _ = t.deck.Draw() // burn
	for i := 0; i < n; i++ {
		card, _ := t.deck.Draw()
		t.Community.AddCard(card)
	}
}
