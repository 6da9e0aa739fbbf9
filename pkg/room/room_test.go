package room

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"berrypoker/internal/rng"
	"berrypoker/pkg/store"
	"berrypoker/pkg/table"
)

func TestMain(m *testing.M) {
	if err := store.LoadInstance(":memory:"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	r := New("room-1", 5, 10, 100, 1000, rng.NewMath(1), logrus.StandardLogger())
	r.StartShift()
	t.Cleanup(r.EndShift)
	return r
}

func mustEnvelope(t *testing.T, msgType string, data interface{}) *Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &Envelope{Type: msgType, Data: raw}
}

// recvEnvelope drains c's outbound channel until it sees an envelope of the
// given type, or fails the test after a second.
func recvEnvelope(t *testing.T, c *Client, msgType string) *Envelope {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-c.SendChan():
			if env, ok := msg.(*Envelope); ok && env.Type == msgType {
				return env
			}
		case <-deadline:
			t.Fatalf("timed out waiting for a %q message", msgType)
			return nil
		}
	}
}

func joinSeat(t *testing.T, r *Room, c *Client, seat, buyIn int) {
	t.Helper()
	c.ReceivedMessage(mustEnvelope(t, "join", joinRequest{Seat: seat, BuyIn: buyIn}))
	recvEnvelope(t, c, "game_state")
}

func TestRoom_JoinBroadcastsSeatToEveryClient(t *testing.T) {
	r := newTestRoom(t)
	a := NewClient("Alice")
	b := NewClient("Bob")
	r.AddClient(a)
	r.AddClient(b)
	recvEnvelope(t, a, "game_state")
	recvEnvelope(t, b, "game_state")

	joinSeat(t, r, a, 0, 200)

	env := recvEnvelope(t, b, "game_state")
	var state table.PublicState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Len(t, state.Players, 1)
	assert.Equal(t, "Alice", state.Players[0].DisplayName)
	assert.True(t, r.IsDirty())
}

func TestRoom_StartGameAndFoldAwardsUncontested(t *testing.T) {
	r := newTestRoom(t)
	a := NewClient("Alice")
	b := NewClient("Bob")
	r.AddClient(a)
	r.AddClient(b)
	recvEnvelope(t, a, "game_state")
	recvEnvelope(t, b, "game_state")

	joinSeat(t, r, a, 0, 200)
	joinSeat(t, r, b, 1, 200)

	a.ReceivedMessage(mustEnvelope(t, "start_game", nil))
	recvEnvelope(t, a, "hand_started")
	env := recvEnvelope(t, a, "game_state")
	var state table.PublicState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Equal(t, table.PhasePreFlop, state.Phase)

	acting := state.CurrentPlayerSeat
	actor, other := a, b
	if acting == b.seatIdx {
		actor, other = b, a
	}

	actor.ReceivedMessage(mustEnvelope(t, "action", actionRequest{Action: string(table.ActionFold)}))

	env = recvEnvelope(t, other, "player_action")
	var actionMsg playerActionPayload
	require.NoError(t, json.Unmarshal(env.Data, &actionMsg))
	assert.Equal(t, table.ActionFold, actionMsg.Kind)

	env = recvEnvelope(t, other, "hand_ended")
	var ended handEndedPayload
	require.NoError(t, json.Unmarshal(env.Data, &ended))
	require.Len(t, ended.Winners, 1)
	assert.Equal(t, other.displayName, ended.Winners[0])
}

func TestRoom_UnknownMessageTypeReturnsError(t *testing.T) {
	r := newTestRoom(t)
	c := NewClient("Alice")
	r.AddClient(c)
	recvEnvelope(t, c, "game_state")

	c.ReceivedMessage(&Envelope{Type: "not-a-real-type"})

	env := recvEnvelope(t, c, "error")
	assert.Contains(t, string(env.Data), "unknown message type")
}

func TestRoom_ActionWithoutSeatReturnsError(t *testing.T) {
	r := newTestRoom(t)
	c := NewClient("Spectator")
	r.AddClient(c)
	recvEnvelope(t, c, "game_state")

	c.ReceivedMessage(mustEnvelope(t, "action", actionRequest{Action: string(table.ActionCheck)}))

	env := recvEnvelope(t, c, "error")
	assert.Contains(t, string(env.Data), errNotSeated.Error())
}

func TestRoom_RemoveClientFoldsMidHandAndEmptiesRoom(t *testing.T) {
	r := newTestRoom(t)
	a := NewClient("Alice")
	b := NewClient("Bob")
	r.AddClient(a)
	r.AddClient(b)
	recvEnvelope(t, a, "game_state")
	recvEnvelope(t, b, "game_state")

	joinSeat(t, r, a, 0, 200)
	joinSeat(t, r, b, 1, 200)

	a.ReceivedMessage(mustEnvelope(t, "start_game", nil))
	recvEnvelope(t, a, "game_state")

	assert.False(t, r.RemoveClient(a))
	state := r.PublicState()
	require.Len(t, state.Players, 2)
	assert.True(t, state.Players[0].Folded, "a player leaving mid-hand is folded and keeps the seat until the hand ends")
	assert.True(t, r.RemoveClient(b))
}
