// internal/scoring/store.go
package scoring

import (
	"context"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
)

// Store is the narrow persistence surface the coordinator needs. The
// production implementation is backed by postgres; tests use an in-memory
// fake. Implementations return ErrMatchNotFound / ErrSetNotFound for missing
// rows so callers can match with errors.Is.
type Store interface {
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetSet(ctx context.Context, id uuid.UUID) (*models.Set, error)
	ListSets(ctx context.Context, matchID uuid.UUID) ([]models.Set, error)
	InsertSet(ctx context.Context, set *models.Set) error
	UpdateSetScore(ctx context.Context, id uuid.UUID, scoreA, scoreB int, played bool) error
	UpdateMatchFields(ctx context.Context, id uuid.UUID, fields MatchFields) error
	SetMatchResult(ctx context.Context, id uuid.UUID, winnerID uuid.UUID) error
}

// Authorizer answers whether a caller may mutate a match. Subscription does
// not require authorization; every other command does.
type Authorizer interface {
	CanMutateMatch(ctx context.Context, caller uuid.UUID, matchID uuid.UUID) bool
}
