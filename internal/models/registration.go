package models

import "github.com/google/uuid"

// Registration is a team or individual entry in an event. A registration can
// appear on either side of any number of matches; deleting it removes those
// matches and their sets.
type Registration struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
}
