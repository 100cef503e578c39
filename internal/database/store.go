// internal/database/store.go
package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
	"github.com/setline/setline/internal/scoring"
)

// PgStore adapts the package-level postgres functions to the coordinator's
// Store interface.
type PgStore struct{}

var _ scoring.Store = PgStore{}

func (PgStore) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return GetMatch(ctx, id)
}

func (PgStore) GetSet(ctx context.Context, id uuid.UUID) (*models.Set, error) {
	return GetSet(ctx, id)
}

func (PgStore) ListSets(ctx context.Context, matchID uuid.UUID) ([]models.Set, error) {
	return ListSets(ctx, matchID)
}

func (PgStore) InsertSet(ctx context.Context, set *models.Set) error {
	return InsertSet(ctx, set)
}

func (PgStore) UpdateSetScore(ctx context.Context, id uuid.UUID, scoreA, scoreB int, played bool) error {
	return UpdateSetScore(ctx, id, scoreA, scoreB, played)
}

func (PgStore) UpdateMatchFields(ctx context.Context, id uuid.UUID, fields scoring.MatchFields) error {
	return UpdateMatchFields(ctx, id, fields)
}

func (PgStore) SetMatchResult(ctx context.Context, id uuid.UUID, winnerID uuid.UUID) error {
	return SetMatchResult(ctx, id, winnerID)
}
