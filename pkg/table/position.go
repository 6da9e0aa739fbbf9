package table

// PositionName returns the seat's position label (BTN, SB, BB, UTG, ...)
// relative to the dealer among currently eligible (seated, not sitting-out)
// seats, or "" if the seat isn't eligible or no dealer has been set yet.
func (t *Table) PositionName(seat int) string {
	if t.DealerSeat < 0 {
		return ""
	}

	active := t.eligibleSeats()
	if len(active) < 2 {
		return ""
	}

	seatIdx := indexOf(active, seat)
	dealerIdx := indexOf(active, t.DealerSeat)
	if seatIdx < 0 || dealerIdx < 0 {
		return ""
	}

	numPlayers := len(active)
	relativePos := ((seatIdx - dealerIdx) % numPlayers + numPlayers) % numPlayers

	if numPlayers == 2 {
		if relativePos == 0 {
			return "BTN"
		}

		return "BB"
	}

	switch relativePos {
	case 0:
		return "BTN"
	case 1:
		return "SB"
	case 2:
		return "BB"
	}

	posAfterBB := relativePos - 2
	positionsAfterBB := numPlayers - 3
	if positionsAfterBB <= 0 {
		return ""
	}

	switch {
	case posAfterBB == positionsAfterBB:
		return "CO"
	case positionsAfterBB >= 2 && posAfterBB == positionsAfterBB-1:
		return "HJ"
	case posAfterBB == 1:
		return "UTG"
	case posAfterBB == 2 && positionsAfterBB >= 4:
		return "UTG+1"
	case positionsAfterBB >= 5 && posAfterBB == 3:
		return "MP"
	case positionsAfterBB >= 6 && posAfterBB == 4:
		return "MP+1"
	default:
		return "MP"
	}
}

func indexOf(seats []int, seat int) int {
	for i, s := range seats {
		if s == seat {
			return i
		}
	}

	return -1
}
