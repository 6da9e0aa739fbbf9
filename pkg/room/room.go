package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"berrypoker/internal/rng"
	"berrypoker/pkg/deck"
	"berrypoker/pkg/store"
	"berrypoker/pkg/table"
)

type state int

const (
	stateClientEvent state = iota
	stateGameEvent
)

const chatBufferSize = 100
const preHandPause = 3 * time.Second

// Room runs a single table's serialized event loop: every join, leave,
// action, and hand transition is applied on one goroutine, so the table
// never needs its own locking.
type Room struct {
	ID string

	table   *table.Table
	clients map[*Client]bool
	lock    sync.RWMutex

	chat []ChatEntry

	execInRunLoop chan func()
	stateChanged  chan state
	close         chan bool
	closeOnce     sync.Once

	dirty           bool
	lastActivity    time.Time
	persistFailures int

	// aborted is set once a Fatal-class error (an invariant violation, not a
	// rejected player action) is detected; the room stops accepting messages
	// once true.
	aborted bool

	// handStartStacks and handActions accumulate over the course of a hand
	// so the finished hand can be recorded to storage in one shot.
	handStartStacks map[int]int
	handActions     []store.ActionRecord

	logger logrus.FieldLogger
}

// New creates a room around a fresh table. It does not start the run loop; call StartShift for that.
func New(roomID string, smallBlind, bigBlind, minBuyIn, maxBuyIn int, gen rng.Generator, logger logrus.FieldLogger) *Room {
	return NewFromTable(table.New(roomID, smallBlind, bigBlind, minBuyIn, maxBuyIn, gen, logger), logger)
}

// NewFromTable wraps an already-constructed table (e.g. one restored from a snapshot)
func NewFromTable(t *table.Table, logger logrus.FieldLogger) *Room {
	return &Room{
		ID:            t.RoomID,
		table:         t,
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		stateChanged:  make(chan state, 256),
		close:         make(chan bool),
		lastActivity:  time.Now(),
		logger:        logger.WithField("room_id", t.RoomID),
	}
}

// StartShift starts the room's run loop in its own goroutine
func (r *Room) StartShift() {
	go r.runLoop()
}

// EndShift stops the run loop. Safe to call more than once, e.g. once from
// an idle purge and once from a Fatal-error abort racing it.
func (r *Room) EndShift() {
	r.closeOnce.Do(func() { close(r.close) })
}

func (r *Room) runLoop() {
	r.logger.Debug("room run loop starting")

	for {
		select {
		case s := <-r.stateChanged:
			switch s {
			case stateClientEvent, stateGameEvent:
				r.broadcastState()
			}
		case fn := <-r.execInRunLoop:
			fn()
		case <-r.close:
			r.logger.Debug("room run loop terminating")
			return
		}
	}
}

// Clients returns a snapshot of currently connected clients
func (r *Room) Clients() []*Client {
	r.lock.RLock()
	defer r.lock.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}

// AddClient attaches a client to the room. Must return quickly: the actual
// welcome state is sent from inside the run loop.
func (r *Room) AddClient(c *Client) {
	r.lock.Lock()
	c.room = r
	r.clients[c] = true
	r.lock.Unlock()

	r.execInRunLoop <- func() {
		r.lastActivity = time.Now()
		c.Send(newEnvelope("game_state", r.stateFor(c)))
	}
}

// stateFor renders the per-recipient game_state view for c: its own hole
// cards and, when it's the acting seat, its valid actions. Unseated clients
// (spectators) get the common view with no hole cards or valid actions.
func (r *Room) stateFor(c *Client) table.PublicState {
	if c.seatIdx >= 0 {
		return r.table.PublicStateFor(c.seatIdx)
	}
	return r.table.PublicState()
}

// RemoveClient detaches a client, auto-folding them if they were mid-hand,
// and reports whether the room is now empty.
func (r *Room) RemoveClient(c *Client) (empty bool) {
	r.lock.Lock()
	delete(r.clients, c)
	nClients := len(r.clients)
	r.lock.Unlock()

	r.execInRunLoop <- func() {
		if c.seatIdx >= 0 {
			_ = r.table.Leave(c.seatIdx)
			r.dirty = true
			r.broadcast(newEnvelope("player_disconnected", playerDisconnectedPayload{Seat: c.seatIdx, Name: c.displayName}))
		}
		r.lastActivity = time.Now()
		r.broadcastState()
	}

	return nClients == 0
}

// IsDirty reports whether the table has changed since the last persistence tick
func (r *Room) IsDirty() bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.dirty
}

// MarkPersisted clears the dirty flag and resets the consecutive-failure
// counter after a successful snapshot write
func (r *Room) MarkPersisted() {
	r.lock.Lock()
	r.dirty = false
	r.persistFailures = 0
	r.lock.Unlock()
}

// RecordPersistFailure counts one failed snapshot write and reports whether
// the room has now hit maxConsecutivePersistFailures in a row.
func (r *Room) RecordPersistFailure() (exceeded bool) {
	r.lock.Lock()
	r.persistFailures++
	exceeded = r.persistFailures >= maxConsecutivePersistFailures
	r.lock.Unlock()
	return exceeded
}

// AbortAsync schedules a Fatal-class abort on the run loop from outside it
// (e.g. from the registry's persistence sweep).
func (r *Room) AbortAsync(cause error) {
	r.execInRunLoop <- func() { r.abort(cause) }
}

// IdleSince reports the duration since the room last saw client or game activity
func (r *Room) IdleSince() time.Duration {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return time.Since(r.lastActivity)
}

// Snapshot returns the underlying table's persisted representation
func (r *Room) Snapshot() ([]byte, error) {
	return r.table.MarshalSnapshot()
}

// PublicState returns the room's current public state, computed on the run
// loop so it never races with an in-flight mutation.
func (r *Room) PublicState() table.PublicState {
	result := make(chan table.PublicState, 1)
	r.execInRunLoop <- func() {
		result <- r.table.PublicState()
	}

	return <-result
}

// RoomSettings mirrors the blind/buy-in configuration a room was created with
type RoomSettings struct {
	SmallBlind int `json:"small_blind"`
	BigBlind   int `json:"big_blind"`
	MinBuyIn   int `json:"min_buy_in"`
	MaxBuyIn   int `json:"max_buy_in"`
}

// SeatOccupancy is one seat's public identity, without any in-hand state
type SeatOccupancy struct {
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	Stack       int    `json:"stack"`
}

// Summary is the lightweight, always-safe-to-poll view of a room: its
// configuration and who is sitting where, without exposing live hand state.
type Summary struct {
	RoomID   string          `json:"room_id"`
	Settings RoomSettings    `json:"settings"`
	Seats    []SeatOccupancy `json:"seats"`
}

// Summary returns the room's settings and seat occupancy, computed on the
// run loop so it never races with an in-flight mutation.
func (r *Room) Summary() Summary {
	result := make(chan Summary, 1)
	r.execInRunLoop <- func() {
		summary := Summary{
			RoomID: r.ID,
			Settings: RoomSettings{
				SmallBlind: r.table.SmallBlind,
				BigBlind:   r.table.BigBlind,
				MinBuyIn:   r.table.MinBuyIn,
				MaxBuyIn:   r.table.MaxBuyIn,
			},
		}

		for _, s := range r.table.Seats {
			if s != nil {
				summary.Seats = append(summary.Seats, SeatOccupancy{Seat: s.Index, DisplayName: s.DisplayName, Stack: s.Stack})
			}
		}

		result <- summary
	}

	return <-result
}

// ReceivedMessage dispatches one incoming client message onto the run loop
func (r *Room) ReceivedMessage(c *Client, msg *Envelope) {
	r.execInRunLoop <- func() {
		r.lastActivity = time.Now()
		r.handle(c, msg)
	}
}

// handle must only be called from the run loop
func (r *Room) handle(c *Client, msg *Envelope) {
	if r.aborted {
		c.Send(newErrorEnvelope(errRoomAborted))
		return
	}

	switch msg.Type {
	case "join":
		r.handleJoin(c, msg)
	case "leave":
		r.handleLeave(c)
	case "sit_out":
		r.handleSitOut(c)
	case "start_game":
		r.handleStartGame(c)
	case "action":
		r.handleAction(c, msg)
	case "run_twice_choice":
		r.handleRunTwiceChoice(c, msg)
	case "chat":
		r.handleChat(c, msg)
	case "spectate":
		r.handleSpectate(c)
	case "webrtc_offer", "webrtc_answer", "webrtc_ice":
		r.forwardSignal(c, msg)
	default:
		c.Send(newErrorEnvelope(unknownMessageError(msg.Type)))
	}
}

// reportTableError triages an error returned by a table mutation. A
// table.UserError is Policy-class: safe to relay to the client verbatim, and
// the room carries on. Anything else came out of checkInvariants, which only
// fires on a logic bug, not player input; that's Fatal-class, so the room
// aborts instead of continuing to serve moves against a table that already
// failed its own consistency check.
func (r *Room) reportTableError(c *Client, err error) {
	if _, ok := err.(table.UserError); ok {
		c.Send(newErrorEnvelope(err))
		return
	}

	r.abort(err)
}

// abort shuts the room down after a Fatal-class error: it logs the cause,
// keeps the room marked dirty so its faulted snapshot is written to storage
// for diagnosis instead of being silently overwritten by the next successful
// write, tells every connected client, and disconnects them. It is a no-op
// if the room already aborted.
func (r *Room) abort(cause error) {
	if r.aborted {
		return
	}
	r.aborted = true
	r.dirty = true

	r.logger.WithError(cause).Error("room aborted after a fatal error")
	r.broadcast(newErrorEnvelope(errRoomAborted))

	for _, c := range r.Clients() {
		go func(c *Client) { c.Close <- "room error" }(c)
	}

	r.EndShift()
}

// handleSpectate registers the connection as an observer: it doesn't touch
// seating, it just confirms the mode and sends a fresh snapshot.
func (r *Room) handleSpectate(c *Client) {
	c.Send(newEnvelope("spectating", spectatingPayload{RoomID: r.ID}))
	c.Send(newEnvelope("game_state", r.table.PublicState()))
}

// forwardSignal relays a WebRTC signaling envelope to its named target's
// live connection without inspecting the payload beyond the target field.
func (r *Room) forwardSignal(c *Client, msg *Envelope) {
	var req signalRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	for _, target := range r.Clients() {
		if target.displayName == req.Target {
			target.Send(msg)
			return
		}
	}
}

func (r *Room) handleJoin(c *Client, msg *Envelope) {
	var req joinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	if err := r.table.Join(req.Seat, c.displayName, req.BuyIn); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	c.seatIdx = req.Seat
	r.dirty = true
	r.chatSystem(req.Seat, c.displayName+" joined the table")
	c.Send(newEnvelope("joined", joinedPayload{Seat: req.Seat}))
	r.broadcast(newEnvelope("player_joined", playerJoinedPayload{Seat: req.Seat, Name: c.displayName}))
	r.broadcastState()
}

func (r *Room) handleLeave(c *Client) {
	if c.seatIdx < 0 {
		return
	}

	seat := c.seatIdx
	if err := r.table.Leave(seat); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	r.chatSystem(seat, c.displayName+" left the table")
	c.seatIdx = -1
	r.dirty = true
	r.broadcast(newEnvelope("player_left", playerLeftPayload{Seat: seat, Name: c.displayName}))
	r.broadcastState()
}

func (r *Room) handleSitOut(c *Client) {
	if c.seatIdx < 0 {
		c.Send(newErrorEnvelope(errNotSeated))
		return
	}

	if err := r.table.SitOut(c.seatIdx); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	r.dirty = true
	r.broadcastState()
}

func (r *Room) handleStartGame(c *Client) {
	if err := r.table.StartHand(); err != nil {
		r.reportTableError(c, err)
		return
	}

	r.beginHandTracking()
	r.dirty = true
	r.broadcast(newEnvelope("hand_started", handStartedPayload{HandNumber: r.table.HandNumber}))
	r.broadcastState()
}

// beginHandTracking captures each occupied seat's starting stack so the
// finished hand's per-player profit can be computed once it's over.
func (r *Room) beginHandTracking() {
	r.handStartStacks = make(map[int]int)
	for _, s := range r.table.Seats {
		if s != nil {
			r.handStartStacks[s.Index] = s.Stack
		}
	}
	r.handActions = nil
}

func (r *Room) handleAction(c *Client, msg *Envelope) {
	if c.seatIdx < 0 {
		c.Send(newErrorEnvelope(errNotSeated))
		return
	}

	var req actionRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	phaseBefore := r.table.Phase
	kind, amount, err := r.table.Apply(c.seatIdx, table.ActionKind(req.Action), req.Amount)
	if err != nil {
		r.reportTableError(c, err)
		return
	}

	r.dirty = true
	r.recordAction(c.displayName, phaseBefore, kind, amount)
	r.broadcast(newEnvelope("player_action", playerActionPayload{
		Seat: c.seatIdx, Name: c.displayName, Kind: kind, Amount: amount,
	}))
	r.broadcastState()

	r.afterPhaseChange()
}

// recordAction appends to the in-memory action log for the hand in progress;
// it's flushed to storage as a batch once the hand ends and a hand_id exists
// for the rows to reference.
func (r *Room) recordAction(playerName string, phase table.Phase, kind table.ActionKind, amount int) {
	r.handActions = append(r.handActions, store.ActionRecord{
		PlayerName: playerName,
		Action:     string(kind),
		Amount:     amount,
		Phase:      phase.String(),
		Sequence:   len(r.handActions),
	})
}

// afterPhaseChange reacts to a phase transition caused by the action or
// run-it-twice choice just applied: it announces a run-it-twice vote, or
// closes out and persists a finished hand.
func (r *Room) afterPhaseChange() {
	switch r.table.Phase {
	case table.PhaseWaitingRunTwice:
		r.broadcast(newEnvelope("run_twice_prompt", runTwicePromptPayload{Players: r.table.PublicState().RunTwicePlayers}))
	case table.PhaseHandOver:
		r.broadcastHandEnded()
		r.persistHandHistory()
		r.scheduleNextHand()
	}
}

// broadcastHandEnded reports a just-finished hand's outcome; must only be
// called from the run loop right after Phase transitions to PhaseHandOver.
func (r *Room) broadcastHandEnded() {
	stacks := make(map[string]int)
	for _, s := range r.table.Seats {
		if s != nil {
			stacks[s.DisplayName] = s.Stack
		}
	}

	r.broadcast(newEnvelope("hand_ended", handEndedPayload{
		Winners:         r.table.LastWinners,
		Pot:             r.table.LastPotTotal,
		HandResults:     r.table.LastHandResults,
		PlayerStacks:    stacks,
		SecondCommunity: r.table.SecondCommunity(),
	}))
}

// persistHandHistory records the just-finished hand, so must only be called
// from the run loop right after Phase transitions to PhaseHandOver.
func (r *Room) persistHandHistory() {
	results := make([]store.PlayerHandResult, 0, len(r.handStartStacks))
	winners := make(map[string]bool)
	for _, hr := range r.table.LastHandResults {
		if hr.IsWinner {
			winners[hr.PlayerName] = true
		}
	}

	for _, s := range r.table.Seats {
		if s == nil {
			continue
		}

		startingStack, tracked := r.handStartStacks[s.Index]
		if !tracked {
			continue
		}

		holeCards := make([]string, 0, len(s.HoleCards))
		for _, c := range s.HoleCards {
			holeCards = append(holeCards, deck.CardToString(c))
		}

		results = append(results, store.PlayerHandResult{
			PlayerName:    s.DisplayName,
			StartingStack: startingStack,
			EndingStack:   s.Stack,
			Profit:        s.Stack - startingStack,
			IsWinner:      winners[s.DisplayName],
			HoleCards:     holeCards,
		})
	}

	roomID := r.ID
	handNumber := r.table.HandNumber
	potSize := r.table.LastPotTotal
	winnerNames := r.table.LastWinners
	actions := r.handActions

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := store.RecordHand(ctx, roomID, handNumber, potSize, winnerNames, actions, results); err != nil {
			r.logger.WithError(err).Error("could not record hand history")
		}
	}()
}

func (r *Room) handleRunTwiceChoice(c *Client, msg *Envelope) {
	if c.seatIdx < 0 {
		c.Send(newErrorEnvelope(errNotSeated))
		return
	}

	var req runTwiceChoiceRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	if err := r.table.ProcessRunTwiceChoice(c.seatIdx, req.WantsTwice); err != nil {
		r.reportTableError(c, err)
		return
	}

	r.dirty = true
	r.broadcastState()
	r.afterPhaseChange()
}

func (r *Room) handleChat(c *Client, msg *Envelope) {
	var req chatRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		c.Send(newErrorEnvelope(err))
		return
	}

	entry := ChatEntry{Seat: c.seatIdx, Name: c.displayName, Message: req.Message}
	r.appendChat(entry)
	r.broadcast(newEnvelope("chat", entry))
}

func (r *Room) chatSystem(seat int, message string) {
	r.appendChat(ChatEntry{Seat: seat, System: true, Message: message})
}

func (r *Room) appendChat(entry ChatEntry) {
	r.chat = append(r.chat, entry)
	if len(r.chat) > chatBufferSize {
		r.chat = r.chat[len(r.chat)-chatBufferSize:]
	}
}

// scheduleNextHand gives the table a brief pause after a hand ends before
// automatically dealing the next one, so players can see the result.
func (r *Room) scheduleNextHand() {
	time.AfterFunc(preHandPause, func() {
		r.execInRunLoop <- func() {
			if r.aborted || r.table.Phase != table.PhaseHandOver {
				return
			}

			if err := r.table.StartHand(); err != nil {
				if _, ok := err.(table.UserError); !ok {
					r.abort(err)
				}
				return
			}

			r.beginHandTracking()
			r.dirty = true
			r.broadcast(newEnvelope("hand_started", handStartedPayload{HandNumber: r.table.HandNumber}))
			r.broadcastState()
		}
	})
}

// broadcastState must only be called from the run loop. Each client gets its
// own game_state envelope: PublicStateFor reveals only that seat's hole
// cards and, when it's their turn, their valid actions.
func (r *Room) broadcastState() {
	for _, c := range r.Clients() {
		c.Send(newEnvelope("game_state", r.stateFor(c)))
	}
}

func (r *Room) broadcast(msg *Envelope) {
	for _, c := range r.Clients() {
		c.Send(msg)
	}
}
