package server

import (
	"net/http"

	"tableside/internal/domain"
	"tableside/internal/settings"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := s.dashboard.Overview(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profile.GetRestaurant(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	var in domain.Restaurant
	if err := decode(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if in.Name == "" {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_profile", "restaurant name is required")
		return
	}
	profile, err := s.profile.UpsertRestaurant(r.Context(), in)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleThemePreview derives the full shade palette for a candidate theme
// without persisting anything. The client applies the result locally.
func (s *Server) handleThemePreview(w http.ResponseWriter, r *http.Request) {
	var theme settings.Theme
	if err := decode(r, &theme); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	palette, err := settings.Derive(theme)
	if err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_theme", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, palette)
}
