// internal/database/match.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/setline/setline/internal/models"
	"github.com/setline/setline/internal/scoring"
)

// InsertMatch creates a new match row. BestOf must already be validated by
// the caller (odd, positive).
func InsertMatch(ctx context.Context, m *models.Match) error {
	if m.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate match id: %w", err)
		}
		m.ID = id
	}

	q := `
	INSERT INTO matches (
		id, registration_a_id, registration_b_id,
		best_of, round, match_number, match_date,
		played, winner_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			m.ID, m.RegistrationAID, m.RegistrationBID,
			m.BestOf, m.Round, m.MatchNumber, m.MatchDate,
			m.Played, m.WinnerID,
		)
		return err
	})
}

// GetMatch fetches a match by ID, translating a missing row to the scoring
// package's sentinel.
func GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var m models.Match
	q := `
	SELECT id, registration_a_id, registration_b_id,
	       best_of, round, match_number, match_date,
	       played, winner_id
	FROM matches
	WHERE id = $1
	`
	err := DB.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.RegistrationAID, &m.RegistrationBID,
		&m.BestOf, &m.Round, &m.MatchNumber, &m.MatchDate,
		&m.Played, &m.WinnerID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, scoring.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListSets returns a match's sets ordered by set number.
func ListSets(ctx context.Context, matchID uuid.UUID) ([]models.Set, error) {
	q := `
	SELECT id, match_id, set_number, score_a, score_b, played
	FROM sets
	WHERE match_id = $1
	ORDER BY set_number
	`
	rows, err := DB.Query(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []models.Set
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.MatchID, &s.SetNumber, &s.ScoreA, &s.ScoreB, &s.Played); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// GetSet fetches a single set by ID.
func GetSet(ctx context.Context, id uuid.UUID) (*models.Set, error) {
	var s models.Set
	q := `
	SELECT id, match_id, set_number, score_a, score_b, played
	FROM sets
	WHERE id = $1
	`
	err := DB.QueryRow(ctx, q, id).Scan(&s.ID, &s.MatchID, &s.SetNumber, &s.ScoreA, &s.ScoreB, &s.Played)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, scoring.ErrSetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertSet creates a new set row. The (match_id, set_number) unique
// constraint backs up the rules-engine duplicate check.
func InsertSet(ctx context.Context, set *models.Set) error {
	q := `
	INSERT INTO sets (id, match_id, set_number, score_a, score_b, played)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, set.ID, set.MatchID, set.SetNumber, set.ScoreA, set.ScoreB, set.Played)
		return err
	})
}

// UpdateSetScore persists new scores and the played flag for a set.
func UpdateSetScore(ctx context.Context, id uuid.UUID, scoreA, scoreB int, played bool) error {
	q := `UPDATE sets SET score_a = $1, score_b = $2, played = $3 WHERE id = $4`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, scoreA, scoreB, played, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return scoring.ErrSetNotFound
		}
		return nil
	})
}

// UpdateMatchFields persists the mutable non-scoring fields of a match.
func UpdateMatchFields(ctx context.Context, id uuid.UUID, fields scoring.MatchFields) error {
	if fields.MatchDate == nil {
		return nil
	}
	q := `UPDATE matches SET match_date = $1 WHERE id = $2`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, fields.MatchDate, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return scoring.ErrMatchNotFound
		}
		return nil
	})
}

// SetMatchResult marks a match played with the given winner.
func SetMatchResult(ctx context.Context, id uuid.UUID, winnerID uuid.UUID) error {
	q := `UPDATE matches SET played = TRUE, winner_id = $1 WHERE id = $2`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, winnerID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return scoring.ErrMatchNotFound
		}
		return nil
	})
}

// DeleteMatchCascade removes a match and its sets in one transaction.
func DeleteMatchCascade(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM sets WHERE match_id = $1`, id); err != nil {
			return fmt.Errorf("delete sets: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete match: %w", err)
		}
		return nil
	})
}
