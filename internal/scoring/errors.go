// internal/scoring/errors.go
package scoring

import "errors"

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrSetNotFound         = errors.New("set not found")
	ErrSetCapacityExceeded = errors.New("set count would exceed best-of limit")
	ErrDuplicateSetNumber  = errors.New("set number already used in this match")
	ErrSetAlreadyPlayed    = errors.New("set is already played and immutable")
	ErrInvalidScore        = errors.New("scores must be non-negative")
	ErrNotAuthorized       = errors.New("caller may not mutate this match")
)

// ErrorCode maps a command failure to the wire code carried by an error
// event. Unknown errors collapse to "internal", which also covers store
// failures so persistence details never leak to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, ErrSetNotFound):
		return "set_not_found"
	case errors.Is(err, ErrSetCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrDuplicateSetNumber):
		return "duplicate_set_number"
	case errors.Is(err, ErrSetAlreadyPlayed):
		return "set_already_played"
	case errors.Is(err, ErrInvalidScore):
		return "invalid_score"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	default:
		return "internal"
	}
}
