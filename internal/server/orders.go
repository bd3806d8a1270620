package server

import (
	"net/http"

	"github.com/google/uuid"

	"tableside/internal/domain"
	"tableside/internal/orders"
	"tableside/internal/session"
)

type createOrderRequest struct {
	TableID      uuid.UUID `json:"table_id"`
	CustomerName *string   `json:"customer_name,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Items        []struct {
		MenuItemID uuid.UUID `json:"menu_item_id"`
		Quantity   int       `json:"quantity"`
		Note       string    `json:"note,omitempty"`
	} `json:"items"`
}

// handleCreateOrder replays the waiter flow server-side: select the table,
// add each requested item at its current price, then submit. Retried requests
// should carry the same Idempotency-Key header to land on the same order.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		fail(w, domain.ErrEmptyOrder)
		return
	}

	key := uuid.New()
	if h := r.Header.Get("Idempotency-Key"); h != "" {
		parsed, err := uuid.Parse(h)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "invalid_key", "Idempotency-Key must be a UUID")
			return
		}
		key = parsed
	}

	table, err := s.tables.GetByID(r.Context(), req.TableID)
	if err != nil {
		fail(w, err)
		return
	}

	sess := session.New()
	if err := sess.SelectTable(table); err != nil {
		fail(w, err)
		return
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			writeProblem(w, http.StatusUnprocessableEntity, "invalid_order", "item quantity must be positive")
			return
		}
		item, err := s.menu.GetByID(r.Context(), line.MenuItemID)
		if err != nil {
			fail(w, err)
			return
		}
		for i := 0; i < line.Quantity; i++ {
			if err := sess.AddItem(item); err != nil {
				fail(w, err)
				return
			}
		}
		if line.Note != "" {
			sess.SetNote(item.ID, line.Note)
		}
	}

	result, err := s.orders.Submit(r.Context(), orders.Submission{
		Table:          table,
		CustomerName:   req.CustomerName,
		Notes:          req.Notes,
		Lines:          sess.Lines(),
		IdempotencyKey: key,
	})
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		list []orders.OrderWithItems
		err  error
	)
	switch {
	case q.Get("status") != "":
		list, err = s.orders.ListByStatus(ctx, domain.OrderStatus(q.Get("status")))
	case q.Get("table") != "":
		tableID, perr := uuid.Parse(q.Get("table"))
		if perr != nil {
			writeProblem(w, http.StatusBadRequest, "invalid_id", "table must be a UUID")
			return
		}
		list, err = s.orders.ListByTable(ctx, tableID)
	default:
		list, err = s.orders.List(ctx)
	}
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return
	}
	order, err := s.orders.GetByID(r.Context(), id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return
	}
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	order, err := s.orders.Advance(r.Context(), id, req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return
	}
	if err := s.orders.Delete(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orders.Stats(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
