package server

import (
	"net/http"

	"github.com/google/uuid"

	"tableside/internal/domain"
)

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	if cat := r.URL.Query().Get("category"); cat != "" {
		categoryID, err := uuid.Parse(cat)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid_id", "category must be a UUID")
			return
		}
		items, err := s.menu.ListByCategory(r.Context(), categoryID)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}
	items, err := s.menu.ListAvailable(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListPopular(w http.ResponseWriter, r *http.Request) {
	items, err := s.menu.ListPopular(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "menu item id must be a UUID")
		return
	}
	item, err := s.menu.GetByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleCategories lists categories together with their item counts so the
// menu page renders its tabs from a single call.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.menu.Categories(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	counts, err := s.menu.CategoryCounts(r.Context())
	if err != nil {
		fail(w, err)
		return
	}

	type categoryView struct {
		domain.Category
		ItemCount int `json:"item_count"`
	}
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Category: c, ItemCount: counts[c.ID]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if err := decode(r, &item); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	created, err := s.menu.Create(r.Context(), item)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "menu item id must be a UUID")
		return
	}
	var item domain.MenuItem
	if err := decode(r, &item); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	item.ID = id
	updated, err := s.menu.Update(r.Context(), item)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "menu item id must be a UUID")
		return
	}
	if err := s.menu.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
