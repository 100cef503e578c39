// internal/scoring/events.go
package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
)

// EventType tags server-to-client notifications broadcast to a match room.
type EventType string

const (
	EventSetCreated     EventType = "set_created"
	EventScoreUpdated   EventType = "score_updated"
	EventSetCompleted   EventType = "set_completed"
	EventMatchCompleted EventType = "match_completed"
	EventMatchUpdated   EventType = "match_updated"
	EventError          EventType = "error" // sent to the originating connection only
	EventPong           EventType = "pong"  // reply to a client ping, never broadcast
)

// Event is the single wire shape for all match notifications. Exactly one of
// the payload pointers is set, according to Type.
type Event struct {
	Type    EventType `json:"type"`
	MatchID uuid.UUID `json:"match_id"`
	Seq     uint64    `json:"seq,omitempty"` // per-match publish sequence

	SetCreated     *SetCreatedPayload     `json:"set_created,omitempty"`
	ScoreUpdated   *ScoreUpdatedPayload   `json:"score_updated,omitempty"`
	SetCompleted   *SetCompletedPayload   `json:"set_completed,omitempty"`
	MatchCompleted *MatchCompletedPayload `json:"match_completed,omitempty"`
	MatchUpdated   *MatchUpdatedPayload   `json:"match_updated,omitempty"`
	Error          *ErrorPayload          `json:"error,omitempty"`
}

type SetCreatedPayload struct {
	Set models.Set `json:"set"`
}

type ScoreUpdatedPayload struct {
	SetID  uuid.UUID `json:"set_id"`
	ScoreA int       `json:"score_a"`
	ScoreB int       `json:"score_b"`
	Played bool      `json:"played"`
}

type SetCompletedPayload struct {
	SetID     uuid.UUID `json:"set_id"`
	SetNumber int       `json:"set_number"`
}

type MatchCompletedPayload struct {
	MatchID  uuid.UUID `json:"match_id"`
	WinnerID uuid.UUID `json:"winner_id"`
}

// MatchUpdatedPayload carries the subset of match fields a scorekeeper may
// change outside of set scoring.
type MatchUpdatedPayload struct {
	MatchID   uuid.UUID  `json:"match_id"`
	MatchDate *time.Time `json:"match_date,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CommandType tags client-to-server messages on the scoring channel.
type CommandType string

const (
	CommandJoinMatch      CommandType = "join_match"
	CommandLeaveMatch     CommandType = "leave_match"
	CommandCreateSet      CommandType = "create_set"
	CommandUpdateSetScore CommandType = "update_set_score"
	CommandUpdateMatch    CommandType = "update_match"
	CommandPing           CommandType = "ping"
)

// Command is decoded once at the transport boundary and dispatched by Type.
// Optional fields are pointers so absence is distinguishable from zero.
type Command struct {
	Type    CommandType `json:"type"`
	MatchID uuid.UUID   `json:"match_id,omitempty"`
	SetID   uuid.UUID   `json:"set_id,omitempty"`

	SetNumber *int       `json:"set_number,omitempty"`
	ScoreA    *int       `json:"score_a,omitempty"`
	ScoreB    *int       `json:"score_b,omitempty"`
	Played    bool       `json:"played,omitempty"`
	MatchDate *time.Time `json:"match_date,omitempty"`
}

// MatchFields is the mutable subset of a match accepted by UpdateMatch.
type MatchFields struct {
	MatchDate *time.Time
}
