// internal/handlers/registration.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/database"
	"github.com/setline/setline/internal/models"
)

type createRegistrationRequest struct {
	EventID uuid.UUID `json:"event_id"`
	Name    string    `json:"name"`
}

// CreateRegistrationHandler enters a team or individual into an event.
func CreateRegistrationHandler(srv *Server) http.HandlerFunc {
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

		var req createRegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		reg := models.Registration{EventID: req.EventID, Name: req.Name}
		if err := database.InsertRegistration(r.Context(), &reg); err != nil {
			srv.Logger.WithError(err).Warn("failed to create registration")
			http.Error(w, "error creating registration", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(reg)
	}
}

type deleteRegistrationRequest struct {
	ID uuid.UUID `json:"id"`
}

// DeleteRegistrationHandler removes a registration and cascades to every
// match it participates in, and those matches' sets.
func DeleteRegistrationHandler(srv *Server) http.HandlerFunc {
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

		var req deleteRegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.ID == uuid.Nil {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := database.DeleteRegistrationCascade(r.Context(), req.ID); err != nil {
			srv.Logger.WithError(err).Warn("failed to delete registration")
			http.Error(w, "error deleting registration", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
