package models

import (
	"time"

	"github.com/google/uuid"
)

// Match represents one head-to-head contest between two registrations,
// decided over a best-of-N sequence of sets.
//
// WinnerID is non-nil if and only if Played is true.
type Match struct {
	ID              uuid.UUID  `json:"id"`
	RegistrationAID uuid.UUID  `json:"registration_a_id"`
	RegistrationBID uuid.UUID  `json:"registration_b_id"`
	BestOf          int        `json:"best_of"` // odd positive integer
	Round           int        `json:"round"`
	MatchNumber     int        `json:"match_number"`
	MatchDate       *time.Time `json:"match_date,omitempty"`
	Played          bool       `json:"played"`
	WinnerID        *uuid.UUID `json:"winner_id,omitempty"`
}

// Set is one unit of play within a match. SetNumber is 1-based and unique
// within the owning match. Once Played is true the scores are immutable.
type Set struct {
	ID        uuid.UUID `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	SetNumber int       `json:"set_number"`
	ScoreA    int       `json:"score_a"`
	ScoreB    int       `json:"score_b"`
	Played    bool      `json:"played"`
}
