package table

import (
	"encoding/json"
	"fmt"
)

// Phase is where a hand is in its lifecycle
type Phase int

// Phase constants, in the order a hand moves through them
const (
	PhaseWaiting Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseWaitingRunTwice
	PhaseShowdown
	PhaseHandOver
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePreFlop:
		return "pre-flop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseWaitingRunTwice:
		return "waiting-run-twice"
	case PhaseShowdown:
		return "showdown"
	case PhaseHandOver:
		return "hand-over"
	}

	return ""
}

// MarshalJSON encodes the phase as its string name
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a phase back from its string name, the inverse of
// MarshalJSON, needed to restore a table snapshot.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	phases := []Phase{
		PhaseWaiting, PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver,
		PhaseWaitingRunTwice, PhaseShowdown, PhaseHandOver,
	}
	for _, candidate := range phases {
		if candidate.String() == name {
			*p = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown phase: %q", name)
}

// isBettingRound returns true if the phase has an active betting round
func (p Phase) isBettingRound() bool {
	return p == PhasePreFlop || p == PhaseFlop || p == PhaseTurn || p == PhaseRiver
}
