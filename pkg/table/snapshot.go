package table

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"berrypoker/internal/rng"
	"berrypoker/pkg/deck"
)

// SnapshotSchemaVersion is bumped whenever the Snapshot layout changes in a
// way that isn't backward compatible with older persisted rooms.
const SnapshotSchemaVersion = 1

// SeatSnapshot is one seat's persisted state
type SeatSnapshot struct {
	Index        int    `json:"seat"`
	DisplayName  string `json:"display_name"`
	Stack        int    `json:"stack"`
	HoleCards    string `json:"hole_cards,omitempty"`
	CurrentBet   int    `json:"current_bet"`
	TotalWagered int    `json:"total_wagered"`
	Folded       bool   `json:"folded"`
	AllIn        bool   `json:"all_in"`
	SittingOut   bool   `json:"sitting_out"`
	HasActed     bool   `json:"has_acted"`
}

// Snapshot is the full persisted state of a table, sufficient to resume a
// hand exactly where it left off, including the remaining, already-shuffled deck.
type Snapshot struct {
	SchemaVersion int                     `json:"schema_version"`
	RoomID        string                  `json:"room_id"`
	SmallBlind    int                     `json:"small_blind"`
	BigBlind      int                     `json:"big_blind"`
	MinBuyIn      int                     `json:"min_buy_in"`
	MaxBuyIn      int                     `json:"max_buy_in"`
	Seats         [MaxSeats]*SeatSnapshot `json:"seats"`
	DeckCards     string                  `json:"deck_cards,omitempty"`
	Community     string                  `json:"community,omitempty"`
	Phase         Phase                   `json:"phase"`
	DealerSeat    int                     `json:"dealer_seat"`
	ActingSeat    int                     `json:"acting_seat"`
	HighBet       int                     `json:"high_bet"`
	LastRaiseSize int                     `json:"last_raise_size"`
	HandNumber    int                     `json:"hand_number"`
}

// Snapshot serializes the table's full state
func (t *Table) Snapshot() Snapshot {
	snap := Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		RoomID:        t.RoomID,
		SmallBlind:    t.SmallBlind,
		BigBlind:      t.BigBlind,
		MinBuyIn:      t.MinBuyIn,
		MaxBuyIn:      t.MaxBuyIn,
		Phase:         t.Phase,
		DealerSeat:    t.DealerSeat,
		ActingSeat:    t.ActingSeat,
		HighBet:       t.HighBet,
		LastRaiseSize: t.LastRaiseSize,
		HandNumber:    t.HandNumber,
	}

	for i, s := range t.Seats {
		if s == nil {
			continue
		}

		snap.Seats[i] = &SeatSnapshot{
			Index:        s.Index,
			DisplayName:  s.DisplayName,
			Stack:        s.Stack,
			HoleCards:    deck.CardsToString(s.HoleCards),
			CurrentBet:   s.CurrentBet,
			TotalWagered: s.TotalWagered,
			Folded:       s.Folded,
			AllIn:        s.AllIn,
			SittingOut:   s.SittingOut,
			HasActed:     s.HasActed,
		}
	}

	if t.deck != nil {
		snap.DeckCards = deck.CardsToString(t.deck.Cards)
	}
	snap.Community = deck.CardsToString(t.Community)

	return snap
}

// MarshalSnapshot serializes the table to the JSON blob stored by the persistence layer
func (t *Table) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

// RestoreSnapshot rebuilds a table from a persisted snapshot
func RestoreSnapshot(data []byte, gen rng.Generator, logger logrus.FieldLogger) (*Table, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("could not unmarshal snapshot: %w", err)
	}

	if snap.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version: %d", snap.SchemaVersion)
	}

	t := New(snap.RoomID, snap.SmallBlind, snap.BigBlind, snap.MinBuyIn, snap.MaxBuyIn, gen, logger)
	t.Phase = snap.Phase
	t.DealerSeat = snap.DealerSeat
	t.ActingSeat = snap.ActingSeat
	t.HighBet = snap.HighBet
	t.LastRaiseSize = snap.LastRaiseSize
	t.HandNumber = snap.HandNumber

	for i, s := range snap.Seats {
		if s == nil {
			continue
		}

		holeCards, err := deck.CardsFromString(s.HoleCards)
		if err != nil {
			return nil, fmt.Errorf("could not restore hole cards for seat %d: %w", i, err)
		}

		t.Seats[i] = &Seat{
			Index:        s.Index,
			DisplayName:  s.DisplayName,
			Stack:        s.Stack,
			HoleCards:    holeCards,
			CurrentBet:   s.CurrentBet,
			TotalWagered: s.TotalWagered,
			Folded:       s.Folded,
			AllIn:        s.AllIn,
			SittingOut:   s.SittingOut,
			HasActed:     s.HasActed,
		}
	}

	community, err := deck.CardsFromString(snap.Community)
	if err != nil {
		return nil, fmt.Errorf("could not restore community cards: %w", err)
	}
	t.Community = community

	if len(snap.DeckCards) > 0 {
		cards, err := deck.CardsFromString(snap.DeckCards)
		if err != nil {
			return nil, fmt.Errorf("could not restore deck: %w", err)
		}
		t.deck = &deck.Deck{Cards: cards}
	}

	// the run-it-twice vote itself is not stored: reopen it from the saved board
	if t.Phase == PhaseWaitingRunTwice {
		switch len(t.Community) {
		case 0:
			t.Phase = PhasePreFlop
		case 3:
			t.Phase = PhaseFlop
		default:
			t.Phase = PhaseTurn
		}
		if err := t.offerRunTwice(); err != nil {
			return nil, fmt.Errorf("could not reopen run-it-twice choice: %w", err)
		}
	}

	return t, nil
}
