package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ideaforge/idea-engine/internal/ledger"
	"github.com/ideaforge/idea-engine/internal/models"
)

// Response helpers. Errors use the flat wire shape
// {"error": ..., "details": ...} across every endpoint.

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse{Error: message, Details: details}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondServiceError maps ledger sentinel errors onto the error
// taxonomy: validation 400, missing/foreign records 404, everything
// else is a backing-store failure surfaced as 500 with the underlying
// message passed through.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation error", err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", err.Error())
	default:
		slog.Error("storage operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not ready", "backing store unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Profile handlers

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	profile, err := s.repo.EnsureProfile(r.Context(), claims.Subject, claims.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "validation error", "invalid JSON body")
		return
	}

	if err := s.validate.Struct(upd); err != nil {
		respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	if _, err := s.repo.EnsureProfile(r.Context(), claims.Subject, claims.Username); err != nil {
		respondServiceError(w, err)
		return
	}

	profile, err := s.repo.UpdateProfile(r.Context(), claims.Subject, upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Completed-project handlers

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		// Guests get an empty list rather than a 401 so the catalog
		// page renders before login
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"projects": []*models.CompletedProject{},
			"total":    0,
		})
		return
	}

	projects, err := s.ledger.ListCompleted(r.Context(), claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if projects == nil {
		projects = []*models.CompletedProject{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    len(projects),
	})
}

func (s *Server) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var input models.CompletionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "validation error", "invalid JSON body")
		return
	}

	if err := s.validate.Struct(input); err != nil {
		respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	result, err := s.ledger.MarkCompleted(r.Context(), claims.Subject, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUnmarkCompleted(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation error", "id query parameter is required")
		return
	}

	newly, err := s.ledger.UnmarkCompleted(r.Context(), claims.Subject, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "completion removed",
		"achievements": newly,
	})
}

// Achievement and badge handlers

func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	view, err := s.ledger.AchievementView(r.Context(), claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	badges, err := s.ledger.EarnedBadges(r.Context(), claims.Subject)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if badges == nil {
		badges = []*models.EarnedBadge{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": badges,
		"total":  len(badges),
	})
}

// handleStats serves global unlock counts, preferring the cached copy
// maintained by the stats refresher
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.cache.GetUnlockCounts(r.Context())
	if err != nil {
		slog.Warn("stats cache read failed", "error", err)
	}

	if counts == nil {
		counts, err = s.repo.CountUnlocks(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"unlock_counts": counts,
	})
}
