package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/setline/setline/internal/models"
)

// InsertRegistration creates a new registration row.
func InsertRegistration(ctx context.Context, reg *models.Registration) error {
	if reg.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate registration id: %w", err)
		}
		reg.ID = id
	}

	q := `INSERT INTO registrations (id, event_id, name) VALUES ($1, $2, $3)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, reg.ID, reg.EventID, reg.Name)
		return err
	})
}

// GetRegistration fetches a registration by ID.
func GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var r models.Registration
	q := `SELECT id, event_id, name FROM registrations WHERE id = $1`
	err := DB.QueryRow(ctx, q, id).Scan(&r.ID, &r.EventID, &r.Name)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRegistrationCascade removes a registration together with every match
// that references it on either side and all of those matches' sets. The whole
// cascade runs in one transaction so a failure leaves no orphaned rows.
func DeleteRegistrationCascade(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		delSets := `
			DELETE FROM sets
			WHERE match_id IN (
				SELECT id FROM matches
				WHERE registration_a_id = $1 OR registration_b_id = $1
			)
		`
		if _, err := tx.Exec(ctx, delSets, id); err != nil {
			return fmt.Errorf("delete dependent sets: %w", err)
		}

		delMatches := `
			DELETE FROM matches
			WHERE registration_a_id = $1 OR registration_b_id = $1
		`
		if _, err := tx.Exec(ctx, delMatches, id); err != nil {
			return fmt.Errorf("delete dependent matches: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		return nil
	})
}
