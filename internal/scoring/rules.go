// internal/scoring/rules.go
package scoring

import (
	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
)

// Side identifies a participant of a match independent of registration IDs.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// ValidateSetCreation checks whether another set may be added to the match
// and returns the set number to use. If requested is nil the next free
// number (len(existing)+1) is assigned.
func ValidateSetCreation(match *models.Match, existing []models.Set, requested *int) (int, error) {
	if len(existing) >= match.BestOf {
		return 0, ErrSetCapacityExceeded
	}
	number := len(existing) + 1
	if requested != nil {
		number = *requested
	}
	if number < 1 || number > match.BestOf {
		return 0, ErrSetCapacityExceeded
	}
	for _, s := range existing {
		if s.SetNumber == number {
			return 0, ErrDuplicateSetNumber
		}
	}
	return number, nil
}

// ValidateScoreUpdate rejects mutation of a set whose outcome is final.
// Reopening a played set is deliberately not supported.
func ValidateScoreUpdate(set *models.Set, scoreA, scoreB int) error {
	if set.Played {
		return ErrSetAlreadyPlayed
	}
	if scoreA < 0 || scoreB < 0 {
		return ErrInvalidScore
	}
	return nil
}

// SetWinner reports which side won a played set. A tied played set counts
// toward neither side. Unplayed sets always return SideNone.
func SetWinner(set models.Set) Side {
	if !set.Played {
		return SideNone
	}
	switch {
	case set.ScoreA > set.ScoreB:
		return SideA
	case set.ScoreB > set.ScoreA:
		return SideB
	default:
		return SideNone
	}
}

// MatchOutcome is the result of evaluating completion rules over a match's
// current sets.
type MatchOutcome struct {
	Completed bool
	Winner    Side
	WinsA     int
	WinsB     int
}

// WinnerID resolves the winning side to a registration ID. Only valid when
// Completed is true.
func (o MatchOutcome) WinnerID(match *models.Match) uuid.UUID {
	if o.Winner == SideB {
		return match.RegistrationBID
	}
	return match.RegistrationAID
}

// EvaluateMatchCompletion counts played sets per winning side and applies the
// best-of majority threshold, floor(bestOf/2)+1. The evaluation is a pure
// function of its inputs, so re-evaluating an already completed match yields
// the same outcome.
func EvaluateMatchCompletion(match *models.Match, sets []models.Set) MatchOutcome {
	var out MatchOutcome
	for _, s := range sets {
		switch SetWinner(s) {
		case SideA:
			out.WinsA++
		case SideB:
			out.WinsB++
		}
	}
	needed := match.BestOf/2 + 1
	switch {
	case out.WinsA >= needed:
		out.Completed = true
		out.Winner = SideA
	case out.WinsB >= needed:
		out.Completed = true
		out.Winner = SideB
	}
	return out
}
