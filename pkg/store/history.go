package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// PlayerHandResult is one seated player's outcome in a recorded hand
type PlayerHandResult struct {
	PlayerName    string   `json:"player_name"`
	StartingStack int      `json:"starting_stack"`
	EndingStack   int      `json:"ending_stack"`
	Profit        int      `json:"profit"`
	IsWinner      bool     `json:"is_winner"`
	HoleCards     []string `json:"hole_cards"`
}

// ActionRecord is one betting action taken during a hand, kept for the
// action-by-action replay embedded in a hand's history entry and, once the
// hand is recorded, persisted as its own action_history row.
type ActionRecord struct {
	PlayerName string `json:"player_name"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
	Phase      string `json:"phase"`
	Sequence   int    `json:"sequence"`
}

// HandSummary is a row from the hands table
type HandSummary struct {
	ID          int64     `json:"id"`
	RoomID      string    `json:"room_id"`
	HandNumber  int       `json:"hand_number"`
	PotSize     int       `json:"pot_size"`
	WinnerNames []string  `json:"winner_names"`
	CreatedAt   time.Time `json:"created_at"`
}

// HandDetail is a hand summary plus its actions and per-player results
type HandDetail struct {
	HandSummary
	Actions       []ActionRecord     `json:"actions"`
	PlayerResults []PlayerHandResult `json:"player_results"`
}

// PlayerStats is a player's lifetime record across every recorded hand
type PlayerStats struct {
	PlayerName  string    `json:"player_name"`
	HandsPlayed int       `json:"hands_played"`
	HandsWon    int       `json:"hands_won"`
	TotalProfit int       `json:"total_profit"`
	BiggestPot  int       `json:"biggest_pot"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordHand persists a completed hand and rolls its results into each
// player's running stats, returning the new hand's id.
func RecordHand(ctx context.Context, roomID string, handNumber, potSize int, winners []string, actions []ActionRecord, results []PlayerHandResult) (int64, error) {
	tx, err := Instance().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO hands (room_id, hand_number, pot_size, winner_names, actions)
		VALUES (?, ?, ?, ?, ?)
	`, roomID, handNumber, potSize, strings.Join(winners, ","), actionsJSON)
	if err != nil {
		return 0, err
	}

	handID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, action := range actions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO action_history (hand_id, player_name, action, amount, phase, sequence)
			VALUES (?, ?, ?, ?, ?, ?)
		`, handID, action.PlayerName, action.Action, action.Amount, action.Phase, action.Sequence); err != nil {
			return 0, err
		}
	}

	for _, result := range results {
		holeCardsJSON, err := json.Marshal(result.HoleCards)
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player_hand_results
				(hand_id, player_name, starting_stack, ending_stack, profit, is_winner, hole_cards)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, handID, result.PlayerName, result.StartingStack, result.EndingStack, result.Profit, result.IsWinner, holeCardsJSON); err != nil {
			return 0, err
		}

		won := 0
		if result.IsWinner {
			won = 1
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO player_stats (name, hands_played, hands_won, total_profit, biggest_pot, updated_at)
			VALUES (?, 1, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				hands_played = hands_played + 1,
				hands_won = hands_won + excluded.hands_won,
				total_profit = total_profit + excluded.total_profit,
				biggest_pot = MAX(biggest_pot, excluded.biggest_pot),
				updated_at = CURRENT_TIMESTAMP
		`, result.PlayerName, won, result.Profit, potSize); err != nil {
			return 0, err
		}
	}

	return handID, tx.Commit()
}

// GetHandHistory returns the most recent hands played in a room, newest first
func GetHandHistory(ctx context.Context, roomID string, limit int) ([]HandSummary, error) {
	rows, err := Instance().QueryContext(ctx, `
		SELECT id, room_id, hand_number, pot_size, winner_names, created_at
		FROM hands
		WHERE room_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hands []HandSummary
	for rows.Next() {
		var h HandSummary
		var winnerNames string
		if err := rows.Scan(&h.ID, &h.RoomID, &h.HandNumber, &h.PotSize, &winnerNames, &h.CreatedAt); err != nil {
			return nil, err
		}

		h.WinnerNames = strings.Split(winnerNames, ",")
		hands = append(hands, h)
	}

	return hands, rows.Err()
}

// GetHandDetails returns one hand's full record, or nil if it doesn't exist
func GetHandDetails(ctx context.Context, handID int64) (*HandDetail, error) {
	var detail HandDetail
	var winnerNames string
	var actionsJSON []byte

	row := Instance().QueryRowContext(ctx, `
		SELECT id, room_id, hand_number, pot_size, winner_names, actions, created_at
		FROM hands WHERE id = ?
	`, handID)

	if err := row.Scan(&detail.ID, &detail.RoomID, &detail.HandNumber, &detail.PotSize, &winnerNames, &actionsJSON, &detail.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	detail.WinnerNames = strings.Split(winnerNames, ",")
	if err := json.Unmarshal(actionsJSON, &detail.Actions); err != nil {
		return nil, err
	}

	rows, err := Instance().QueryContext(ctx, `
		SELECT player_name, starting_stack, ending_stack, profit, is_winner, hole_cards
		FROM player_hand_results WHERE hand_id = ?
	`, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var result PlayerHandResult
		var holeCardsJSON []byte
		if err := rows.Scan(&result.PlayerName, &result.StartingStack, &result.EndingStack, &result.Profit, &result.IsWinner, &holeCardsJSON); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(holeCardsJSON, &result.HoleCards); err != nil {
			return nil, err
		}

		detail.PlayerResults = append(detail.PlayerResults, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &detail, nil
}

// GetPlayerStats returns one player's lifetime stats, or nil if they've never played a recorded hand
func GetPlayerStats(ctx context.Context, playerName string) (*PlayerStats, error) {
	var stats PlayerStats
	row := Instance().QueryRowContext(ctx, `
		SELECT name, hands_played, hands_won, total_profit, biggest_pot, updated_at
		FROM player_stats WHERE name = ?
	`, playerName)

	if err := row.Scan(&stats.PlayerName, &stats.HandsPlayed, &stats.HandsWon, &stats.TotalProfit, &stats.BiggestPot, &stats.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &stats, nil
}

// GetLeaderboard returns the top players by total profit
func GetLeaderboard(ctx context.Context, limit int) ([]PlayerStats, error) {
	rows, err := Instance().QueryContext(ctx, `
		SELECT name, hands_played, hands_won, total_profit, biggest_pot, updated_at
		FROM player_stats
		ORDER BY total_profit DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayerStats(rows)
}

// GetAllStats returns every player's lifetime stats, alphabetically
func GetAllStats(ctx context.Context) ([]PlayerStats, error) {
	rows, err := Instance().QueryContext(ctx, `
		SELECT name, hands_played, hands_won, total_profit, biggest_pot, updated_at
		FROM player_stats
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlayerStats(rows)
}

func scanPlayerStats(rows *sql.Rows) ([]PlayerStats, error) {
	var stats []PlayerStats
	for rows.Next() {
		var s PlayerStats
		if err := rows.Scan(&s.PlayerName, &s.HandsPlayed, &s.HandsWon, &s.TotalProfit, &s.BiggestPot, &s.UpdatedAt); err != nil {
			return nil, err
		}

		stats = append(stats, s)
	}

	return stats, rows.Err()
}
