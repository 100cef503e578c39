// internal/scoring/hub.go
package scoring

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Subscriber is a single client connection's presence in one or more match
// rooms. The transport layer drains Out and writes each event to the socket;
// the hub never writes to a socket directly.
type Subscriber struct {
	UserID uuid.UUID
	Out    chan Event

	closeOnce sync.Once
}

// NewSubscriber returns a subscriber with a buffered out channel. A slow
// client that lets the buffer fill has events dropped, not the room blocked.
func NewSubscriber(userID uuid.UUID) *Subscriber {
	return &Subscriber{
		UserID: userID,
		Out:    make(chan Event, 64),
	}
}

// send pushes an event non-blockingly. Reports whether the event was
// accepted.
func (s *Subscriber) send(ev Event) bool {
	select {
	case s.Out <- ev:
		return true
	default:
		return false
	}
}

// SendEvent delivers an event to this subscriber only, bypassing any room.
// Used for per-connection replies like pongs.
func (s *Subscriber) SendEvent(ev Event) {
	s.send(ev)
}

// SendError delivers an error event to this subscriber only. Command
// failures never reach a room broadcast.
func (s *Subscriber) SendError(code, message string) {
	s.send(Event{
		Type:  EventError,
		Error: &ErrorPayload{Code: code, Message: message},
	})
}

// Close closes the out channel exactly once. Called by the hub after the
// subscriber has left every room.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() { close(s.Out) })
}

// Hub routes match events to the connections subscribed to each match. It is
// constructed at server start and owns its subscriber table; there is no
// package-global registry.
type Hub struct {
	log *logrus.Logger

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Subscriber]bool
	joins map[*Subscriber]map[uuid.UUID]bool
	seq   map[uuid.UUID]uint64
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[uuid.UUID]map[*Subscriber]bool),
		joins: make(map[*Subscriber]map[uuid.UUID]bool),
		seq:   make(map[uuid.UUID]uint64),
	}
}

// Join subscribes sub to matchID. Joining a room twice is a no-op.
func (h *Hub) Join(matchID uuid.UUID, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[matchID]
	if !ok {
		room = make(map[*Subscriber]bool)
		h.rooms[matchID] = room
	}
	if room[sub] {
		return
	}
	room[sub] = true
	if h.joins[sub] == nil {
		h.joins[sub] = make(map[uuid.UUID]bool)
	}
	h.joins[sub][matchID] = true
	h.log.WithFields(logrus.Fields{
		"match": matchID,
		"user":  sub.UserID,
		"size":  len(room),
	}).Debug("subscriber joined match room")
}

// Leave removes sub from matchID's room. Leaving a room the subscriber never
// joined is a no-op.
func (h *Hub) Leave(matchID uuid.UUID, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(matchID, sub)
}

// LeaveAll removes sub from every room it joined and closes its out channel.
// Called by the transport on disconnect.
func (h *Hub) LeaveAll(sub *Subscriber) {
	h.mu.Lock()
	for matchID := range h.joins[sub] {
		h.leaveLocked(matchID, sub)
	}
	h.mu.Unlock()
	sub.Close()
}

func (h *Hub) leaveLocked(matchID uuid.UUID, sub *Subscriber) {
	room, ok := h.rooms[matchID]
	if !ok || !room[sub] {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, matchID)
		delete(h.seq, matchID)
	}
	delete(h.joins[sub], matchID)
	if len(h.joins[sub]) == 0 {
		delete(h.joins, sub)
	}
}

// Publish delivers ev to every current subscriber of matchID, best effort.
// Per-match delivery order matches publish order; the mutation lane upstream
// guarantees publishes for one match never race each other.
func (h *Hub) Publish(matchID uuid.UUID, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[matchID]
	if !ok {
		return
	}
	h.seq[matchID]++
	ev.Seq = h.seq[matchID]
	ev.MatchID = matchID

	for sub := range room {
		if !sub.send(ev) {
			h.log.WithFields(logrus.Fields{
				"match": matchID,
				"user":  sub.UserID,
				"type":  ev.Type,
			}).Warn("subscriber buffer full, event dropped")
		}
	}
}

// RoomSize reports the current subscriber count for a match.
func (h *Hub) RoomSize(matchID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}
