// Package realtime pushes change notifications to household members over
// websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"

	"centsible/internal/logger"
)

const (
	keyHousehold = "household_id"
	keyUser      = "user_id"
)

// HouseholdLookup resolves the households a user belongs to.
type HouseholdLookup interface {
	HouseholdIDsForUser(userID string) ([]string, error)
}

// Event is the message sent to subscribers.
type Event struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// Hub tracks websocket sessions per household.
type Hub struct {
	m          *melody.Melody
	households HouseholdLookup
}

// NewHub creates a hub. households may be nil, in which case Announce is a no-op.
func NewHub(households HouseholdLookup) *Hub {
	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	log := logger.Named("realtime")
	m.HandleConnect(func(s *melody.Session) {
		hid, _ := s.Get(keyHousehold)
		uid, _ := s.Get(keyUser)
		log.Debugw("client connected", "household_id", hid, "user_id", uid)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		hid, _ := s.Get(keyHousehold)
		log.Debugw("client disconnected", "household_id", hid)
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Warnw("websocket error", "error", err)
	})

	return &Hub{m: m, households: households}
}

// Serve upgrades the request and subscribes it to householdID. Membership
// must be checked by the caller.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, householdID, userID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{
		keyHousehold: householdID,
		keyUser:      userID,
	})
}

// Broadcast sends an event to every session subscribed to householdID.
func (h *Hub) Broadcast(householdID string, ev Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, ok := s.Get(keyHousehold)
		return ok && id == householdID
	})
}

// Announce broadcasts eventType on behalf of userID to each household the
// user belongs to. Failures are logged.
func (h *Hub) Announce(userID, eventType string) {
	if h.households == nil {
		return
	}
	ids, err := h.households.HouseholdIDsForUser(userID)
	if err != nil {
		logger.Named("realtime").Errorw("failed to resolve households", "user_id", userID, "error", err)
		return
	}
	for _, id := range ids {
		if err := h.Broadcast(id, Event{Type: eventType, User: userID}); err != nil {
			logger.Named("realtime").Warnw("broadcast failed", "household_id", id, "error", err)
		}
	}
}

// Sessions returns the number of open sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}
