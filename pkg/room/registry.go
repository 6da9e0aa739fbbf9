package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"berrypoker/internal/rng"
	"berrypoker/pkg/store"
	"berrypoker/pkg/table"
)

// ErrRoomNotFound is returned when looking up a room ID that doesn't exist
var ErrRoomNotFound = fmt.Errorf("room not found")

// maxConsecutivePersistFailures is the Transient-failure threshold after
// which a room's snapshot write is treated as Fatal and the room is aborted,
// rather than retrying forever against e.g. a full disk or corrupt database.
const maxConsecutivePersistFailures = 5

// Registry tracks every live room, dispatches connecting clients to the
// right one, and periodically persists and purges rooms. Its own map access
// is serialized by a lock distinct from any individual room's run loop.
type Registry struct {
	lock  sync.RWMutex
	rooms map[string]*Room

	gen    rng.Generator
	logger logrus.FieldLogger

	persistInterval time.Duration
	idleTimeout     time.Duration

	stop chan struct{}
}

// NewRegistry returns an empty registry
func NewRegistry(gen rng.Generator, logger logrus.FieldLogger, persistInterval, idleTimeout time.Duration) *Registry {
	return &Registry{
		rooms:           make(map[string]*Room),
		gen:             gen,
		logger:          logger,
		persistInterval: persistInterval,
		idleTimeout:     idleTimeout,
		stop:            make(chan struct{}),
	}
}

// StartShift starts the periodic persistence and idle-purge sweepers
func (reg *Registry) StartShift() {
	go reg.persistLoop()
	go reg.purgeLoop()
}

// StopShift stops the sweepers
func (reg *Registry) StopShift() {
	close(reg.stop)
}

// CreateRoom allocates a new room with a fresh UUID and starts its run loop
func (reg *Registry) CreateRoom(smallBlind, bigBlind, minBuyIn, maxBuyIn int) *Room {
	roomID := uuid.New().String()
	r := New(roomID, smallBlind, bigBlind, minBuyIn, maxBuyIn, reg.gen, reg.logger)
	r.StartShift()

	reg.lock.Lock()
	reg.rooms[roomID] = r
	reg.lock.Unlock()

	return r
}

// GetRoom returns a live room by ID
func (reg *Registry) GetRoom(roomID string) (*Room, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	r, ok := reg.rooms[roomID]
	return r, ok
}

// Rooms returns every live room
func (reg *Registry) Rooms() []*Room {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}

	return rooms
}

// Connect attaches a client to a room by ID, returning ErrRoomNotFound if it doesn't exist
func (reg *Registry) Connect(roomID string, c *Client) error {
	r, ok := reg.GetRoom(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	r.AddClient(c)
	return nil
}

// Disconnect detaches a client from its room. It does not end the room's
// shift, even when the room is now empty.
func (reg *Registry) Disconnect(roomID string, c *Client) {
	r, ok := reg.GetRoom(roomID)
	if !ok {
		return
	}

	r.RemoveClient(c)
}

// Recover reloads every room persisted within the freshness window (the
// last `since` duration) and resumes its run loop.
func (reg *Registry) Recover(ctx context.Context, since time.Duration) (int, error) {
	snapshots, err := store.ListFreshRoomSnapshots(ctx, time.Now().Add(-since))
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, snap := range snapshots {
		t, err := table.RestoreSnapshot(snap.State, reg.gen, reg.logger)
		if err != nil {
			reg.logger.WithError(err).WithField("room_id", snap.RoomID).Error("could not restore room snapshot")
			continue
		}

		r := NewFromTable(t, reg.logger)
		r.StartShift()

		reg.lock.Lock()
		reg.rooms[snap.RoomID] = r
		reg.lock.Unlock()

		recovered++
	}

	return recovered, nil
}

func (reg *Registry) persistLoop() {
	ticker := time.NewTicker(reg.persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reg.persistDirtyRooms()
		case <-reg.stop:
			return
		}
	}
}

func (reg *Registry) persistDirtyRooms() {
	for _, r := range reg.Rooms() {
		if !r.IsDirty() {
			continue
		}

		blob, err := r.Snapshot()
		if err != nil {
			reg.logger.WithError(err).WithField("room_id", r.ID).Error("could not serialize room")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.SaveRoomSnapshot(ctx, r.ID, table.SnapshotSchemaVersion, blob)
		cancel()

		if err != nil {
			reg.logger.WithError(err).WithField("room_id", r.ID).Error("could not persist room")
			if r.RecordPersistFailure() {
				reg.logger.WithField("room_id", r.ID).Error("room exceeded persistence failure threshold, aborting")
				r.AbortAsync(fmt.Errorf("snapshot persistence failed %d times in a row: %w", maxConsecutivePersistFailures, err))
			}
			continue
		}

		r.MarkPersisted()
	}
}

func (reg *Registry) purgeLoop() {
	ticker := time.NewTicker(reg.idleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			reg.purgeIdleRooms()
		case <-reg.stop:
			return
		}
	}
}

func (reg *Registry) purgeIdleRooms() {
	reg.lock.Lock()
	var idle []string
	for id, r := range reg.rooms {
		if len(r.Clients()) == 0 && r.IdleSince() > reg.idleTimeout {
			idle = append(idle, id)
		}
	}
	for _, id := range idle {
		reg.rooms[id].EndShift()
		delete(reg.rooms, id)
	}
	reg.lock.Unlock()

	for _, id := range idle {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := store.DeleteRoomSnapshot(ctx, id); err != nil {
			reg.logger.WithError(err).WithField("room_id", id).Error("could not delete idle room snapshot")
		}
		cancel()
	}
}
