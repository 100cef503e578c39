package models

import "github.com/google/uuid"

// User is an on-site official's account. Admins may mutate match state over
// the scoring channel; non-admins can only subscribe.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsAdmin bool `json:"is_admin"`
}
