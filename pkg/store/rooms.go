package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// RoomSnapshot is a persisted room's serialized state
type RoomSnapshot struct {
	RoomID        string
	SchemaVersion int
	State         []byte
	UpdatedAt     time.Time
}

// SaveRoomSnapshot upserts a room's serialized state. It always replaces the
// full row, so a room's persisted state is a single point-in-time snapshot,
// not a history.
func SaveRoomSnapshot(ctx context.Context, roomID string, schemaVersion int, state []byte) error {
	_, err := Instance().ExecContext(ctx, `
		INSERT INTO rooms (room_id, schema_version, state, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(room_id) DO UPDATE SET
			schema_version = excluded.schema_version,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, roomID, schemaVersion, state)

	return err
}

// LoadRoomSnapshot returns a room's persisted state, or found=false if none exists
func LoadRoomSnapshot(ctx context.Context, roomID string) (snapshot RoomSnapshot, found bool, err error) {
	row := Instance().QueryRowContext(ctx, `
		SELECT room_id, schema_version, state, updated_at FROM rooms WHERE room_id = ?
	`, roomID)

	if err := row.Scan(&snapshot.RoomID, &snapshot.SchemaVersion, &snapshot.State, &snapshot.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RoomSnapshot{}, false, nil
		}

		return RoomSnapshot{}, false, err
	}

	return snapshot, true, nil
}

// ListFreshRoomSnapshots returns every persisted room updated at or after
// `since`, for recovery at startup within the freshness window.
func ListFreshRoomSnapshots(ctx context.Context, since time.Time) ([]RoomSnapshot, error) {
	rows, err := Instance().QueryContext(ctx, `
		SELECT room_id, schema_version, state, updated_at FROM rooms WHERE updated_at >= ?
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []RoomSnapshot
	for rows.Next() {
		var s RoomSnapshot
		if err := rows.Scan(&s.RoomID, &s.SchemaVersion, &s.State, &s.UpdatedAt); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// DeleteRoomSnapshot removes a room's persisted state, e.g. once it's been
// idle-purged from the in-memory registry.
func DeleteRoomSnapshot(ctx context.Context, roomID string) error {
	_, err := Instance().ExecContext(ctx, `DELETE FROM rooms WHERE room_id = ?`, roomID)
	return err
}

// PurgeStaleRoomSnapshots deletes every persisted room last updated before `before`
func PurgeStaleRoomSnapshots(ctx context.Context, before time.Time) (int64, error) {
	result, err := Instance().ExecContext(ctx, `DELETE FROM rooms WHERE updated_at < ?`, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
