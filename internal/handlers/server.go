// internal/handlers/server.go
package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/database"
	"github.com/setline/setline/internal/scoring"
	"github.com/sirupsen/logrus"
)

// Server bundles the scoring coordinator with its transport dependencies.
// One instance is constructed at startup and shared across handlers.
type Server struct {
	Coordinator *scoring.Coordinator
	Logger      *logrus.Logger
}

func NewServer(logger *logrus.Logger) *Server {
	hub := scoring.NewHub(logger)
	coord := scoring.NewCoordinator(database.PgStore{}, DBAuthorizer{}, hub, logger)
	return &Server{
		Coordinator: coord,
		Logger:      logger,
	}
}

// DBAuthorizer grants match mutation to admin officials. The admin flag
// lives on the users table; match-level assignment is not modeled, so any
// admin may score any match.
type DBAuthorizer struct{}

func (DBAuthorizer) CanMutateMatch(ctx context.Context, caller uuid.UUID, matchID uuid.UUID) bool {
	return database.IsAdmin(ctx, caller)
}
