package server

import (
	"net/http"

	"tableside/internal/domain"
)

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		items []domain.InventoryItem
		err   error
	)
	switch {
	case q.Get("search") != "":
		items, err = s.inventory.Search(ctx, q.Get("search"))
	case q.Get("filter") == "low_stock":
		items, err = s.inventory.LowStock(ctx)
	case q.Get("filter") == "out_of_stock":
		items, err = s.inventory.OutOfStock(ctx)
	case q.Get("category") != "":
		items, err = s.inventory.ListByCategory(ctx, domain.InventoryCategory(q.Get("category")))
	default:
		items, err = s.inventory.List(ctx)
	}
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "inventory item id must be a UUID")
		return
	}
	item, err := s.inventory.GetByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := decode(r, &item); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	created, err := s.inventory.Create(r.Context(), item)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "inventory item id must be a UUID")
		return
	}
	var item domain.InventoryItem
	if err := decode(r, &item); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	item.ID = id
	updated, err := s.inventory.Update(r.Context(), item)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "inventory item id must be a UUID")
		return
	}
	var req struct {
		CurrentStock float64 `json:"current_stock"`
	}
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	updated, err := s.inventory.UpdateStock(r.Context(), id, req.CurrentStock)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "inventory item id must be a UUID")
		return
	}
	if err := s.inventory.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.inventory.Stats(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
