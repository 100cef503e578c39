// internal/handlers/match.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/database"
	"github.com/setline/setline/internal/models"
)

type createMatchRequest struct {
	RegistrationAID uuid.UUID  `json:"registration_a_id"`
	RegistrationBID uuid.UUID  `json:"registration_b_id"`
	BestOf          int        `json:"best_of"`
	Round           int        `json:"round"`
	MatchNumber     int        `json:"match_number"`
	MatchDate       *time.Time `json:"match_date,omitempty"`
}

// CreateMatchHandler pairs two registrations into a new match. Admin only;
// bracket/group logic that decides the pairing lives upstream of this
// service.
func CreateMatchHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := authenticateRequest(r)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !database.IsAdmin(r.Context(), caller) {
			http.Error(w, "admin privilege required", http.StatusForbidden)
			return
		}

		var req createMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.BestOf < 1 || req.BestOf%2 == 0 {
			http.Error(w, "best_of must be an odd positive integer", http.StatusBadRequest)
			return
		}
		if req.RegistrationAID == uuid.Nil || req.RegistrationBID == uuid.Nil {
			http.Error(w, "both registrations are required", http.StatusBadRequest)
			return
		}
		for _, regID := range []uuid.UUID{req.RegistrationAID, req.RegistrationBID} {
			if _, err := database.GetRegistration(r.Context(), regID); err != nil {
				http.Error(w, "unknown registration "+regID.String(), http.StatusBadRequest)
				return
			}
		}

		match := models.Match{
			RegistrationAID: req.RegistrationAID,
			RegistrationBID: req.RegistrationBID,
			BestOf:          req.BestOf,
			Round:           req.Round,
			MatchNumber:     req.MatchNumber,
			MatchDate:       req.MatchDate,
		}
		if err := database.InsertMatch(r.Context(), &match); err != nil {
			srv.Logger.WithError(err).Warn("failed to create match")
			http.Error(w, "error creating match", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(match)
	}
}

type deleteMatchRequest struct {
	ID uuid.UUID `json:"id"`
}

// DeleteMatchHandler removes a match together with its sets. Admin only.
// Live subscribers of the match stop receiving events; their next command
// fails with a not-found error.
func DeleteMatchHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := authenticateRequest(r)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !database.IsAdmin(r.Context(), caller) {
			http.Error(w, "admin privilege required", http.StatusForbidden)
			return
		}

		var req deleteMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.ID == uuid.Nil {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if _, err := database.GetMatch(r.Context(), req.ID); err != nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		if err := database.DeleteMatchCascade(r.Context(), req.ID); err != nil {
			srv.Logger.WithError(err).Warn("failed to delete match")
			http.Error(w, "error deleting match", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type matchStateResponse struct {
	Match *models.Match `json:"match"`
	Sets  []models.Set  `json:"sets"`
}

// MatchStateHandler returns a read-only snapshot of a match and its sets at
// /match/state/{match_id}. Snapshot reads do not enter the mutation lane and
// may trail a write in flight by one command.
func MatchStateHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/match/state/")
		matchID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid match_id", http.StatusBadRequest)
			return
		}

		match, sets, err := srv.Coordinator.Snapshot(r.Context(), matchID)
		if err != nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(matchStateResponse{Match: match, Sets: sets})
	}
}
