// Package mux exposes the HTTP and WebSocket surface of the poker server.
package mux

import (
	"net/http"
	"time"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"berrypoker/pkg/room"
)

// Mux handles HTTP and WebSocket requests
type Mux struct {
	*gmux.Router

	version  string
	registry *room.Registry

	minSeatDelay time.Duration
}

// NewMux returns a new HTTP mux wired to the given room registry
func NewMux(version string, registry *room.Registry) *Mux {
	m := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		registry: registry,
	}

	r := m.Router
	r.Methods(http.MethodGet).Path("/health").Handler(m.getHealth())

	r.Methods(http.MethodPost).Path("/api/rooms").Handler(m.postRooms())
	r.Methods(http.MethodGet).Path("/api/rooms/{id}").Handler(m.getRoom())
	r.Methods(http.MethodGet).Path("/api/rooms/{id}/history").Handler(m.getRoomHistory())
	r.Methods(http.MethodGet).Path("/api/stats/{name}").Handler(m.getPlayerStats())
	r.Methods(http.MethodGet).Path("/api/leaderboard").Handler(m.getLeaderboard())

	r.Methods(http.MethodGet).Path("/ws/{id}").Handler(m.getRoomWS())

	return m
}

func (m *Mux) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "rooms": len(m.registry.Rooms())})
	}
}

func logger() logrus.FieldLogger {
	return logrus.StandardLogger()
}
