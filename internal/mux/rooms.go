package mux

import (
	"encoding/json"
	"net/http"

	gmux "github.com/gorilla/mux"

	"berrypoker/pkg/room"
	"berrypoker/pkg/store"
)

type createRoomRequest struct {
	Settings room.RoomSettings `json:"settings"`
}

type createRoomResponse struct {
	RoomID   string            `json:"room_id"`
	Settings room.RoomSettings `json:"settings"`
}

func (m *Mux) postRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		s := req.Settings
		if s.SmallBlind <= 0 || s.BigBlind <= s.SmallBlind || s.MinBuyIn <= 0 || s.MaxBuyIn < s.MinBuyIn {
			writeJSONError(w, http.StatusBadRequest, errInvalidRoomConfig)
			return
		}

		rm := m.registry.CreateRoom(s.SmallBlind, s.BigBlind, s.MinBuyIn, s.MaxBuyIn)
		writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: rm.ID, Settings: s})
	}
}

func (m *Mux) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := gmux.Vars(r)["id"]
		rm, ok := m.registry.GetRoom(id)
		if !ok {
			writeJSONError(w, http.StatusNotFound, room404Error)
			return
		}

		writeJSON(w, http.StatusOK, rm.Summary())
	}
}

func (m *Mux) getRoomHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := gmux.Vars(r)["id"]

		hands, err := store.GetHandHistory(r.Context(), id, 50)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, hands)
	}
}

func (m *Mux) getPlayerStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := gmux.Vars(r)["name"]

		stats, err := store.GetPlayerStats(r.Context(), name)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		if stats == nil {
			writeJSONError(w, http.StatusNotFound, playerStats404Error)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func (m *Mux) getLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaders, err := store.GetLeaderboard(r.Context(), 10)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, leaders)
	}
}
