package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ideaforge/idea-engine/internal/catalog"
	"github.com/ideaforge/idea-engine/internal/models"
)

// handleListIdeas serves the filtered catalog. Every filter arrives as
// a query parameter; unknown values simply match nothing.
func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)

	ideas := catalog.Apply(s.catalog.List(), filters)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ideas": ideas,
		"total": len(ideas),
	})
}

// handleIdeaOptions serves the valid values for each filter dimension,
// narrowed by the filters already chosen
func (s *Server) handleIdeaOptions(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r)

	options := catalog.DeriveOptions(s.catalog.List(), filters)

	respondJSON(w, http.StatusOK, options)
}

func (s *Server) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	idea := s.catalog.Get(id)
	if idea == nil {
		respondError(w, http.StatusNotFound, "not found", "no idea with id "+id)
		return
	}

	respondJSON(w, http.StatusOK, idea)
}

func filtersFromQuery(r *http.Request) catalog.Filters {
	q := r.URL.Query()

	easterEgg, _ := strconv.ParseBool(q.Get("easter_egg"))

	return catalog.Filters{
		AppType:   q.Get("app_type"),
		Category:  q.Get("category"),
		Language:  q.Get("language"),
		Framework: q.Get("framework"),
		Database:  q.Get("database"),
		Level:     models.Level(q.Get("level")),
		EasterEgg: easterEgg,
		SortBy:    catalog.SortBy(q.Get("sort")),
	}
}
