package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

const changedBy = "order-service"

// Header is the order row to persist, minus anything the database generates.
type Header struct {
	TableID        uuid.UUID
	CustomerName   *string
	TotalAmount    float64
	Notes          *string
	IdempotencyKey uuid.UUID
}

// LineInput is one order line to persist with its frozen unit price.
type LineInput struct {
	MenuItemID uuid.UUID
	Quantity   int
	UnitPrice  float64
	Notes      *string
}

// OrderWithItems is an order joined with its lines and table number, the
// shape the orders page renders.
type OrderWithItems struct {
	domain.Order
	TableNumber int                `json:"table_number" db:"table_number"`
	Items       []domain.OrderItem `json:"items"`
}

// Stats covers today's orders for the dashboard header.
type Stats struct {
	Total        int     `json:"total" db:"total"`
	Pending      int     `json:"pending" db:"pending"`
	Preparing    int     `json:"preparing" db:"preparing"`
	Ready        int     `json:"ready" db:"ready"`
	Served       int     `json:"served" db:"served"`
	Cancelled    int     `json:"cancelled" db:"cancelled"`
	TodayRevenue float64 `json:"today_revenue" db:"today_revenue"`
}

type RepositoryInterface interface {
	CreateOrder(ctx context.Context, h Header) (order domain.Order, created bool, err error)
	CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []LineInput) ([]domain.OrderItem, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (OrderWithItems, error)
	List(ctx context.Context) ([]OrderWithItems, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]OrderWithItems, error)
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]OrderWithItems, error)
	OpenOrderCount(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error)
	Stats(ctx context.Context) (Stats, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func persistenceErr(detail string, err error) error {
	return &domain.PersistenceError{Detail: detail, Cause: err}
}

// CreateOrder inserts the order header and its first status-log row in one
// transaction, so a log failure cannot leave a durable header behind. The
// idempotency key carries duplicate protection: a resubmission with the same
// key returns the already-created order with created=false instead of
// inserting a second header.
func (r *Repository) CreateOrder(ctx context.Context, h Header) (domain.Order, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, false, persistenceErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var o domain.Order
	err = tx.GetContext(ctx, &o, `
		INSERT INTO orders (table_id, customer_name, status, total_amount, notes, idempotency_key)
		VALUES ($1, $2, 'pending', $3, $4, $5)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING *`,
		h.TableID, h.CustomerName, h.TotalAmount, h.Notes, h.IdempotencyKey)
	if err == nil {
		if _, logErr := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by)
			VALUES ($1, 'pending', $2)`, o.ID, changedBy); logErr != nil {
			return domain.Order{}, false, persistenceErr("failed to log order status", logErr)
		}
		if err := tx.Commit(); err != nil {
			return domain.Order{}, false, persistenceErr("failed to commit order", err)
		}
		return o, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, false, persistenceErr("failed to insert order", err)
	}

	// conflict: this key was already submitted
	err = r.db.GetContext(ctx, &o, `SELECT * FROM orders WHERE idempotency_key = $1`, h.IdempotencyKey)
	if err != nil {
		return domain.Order{}, false, persistenceErr("failed to load existing order", err)
	}
	return o, false, nil
}

// CreateOrderLines inserts all lines in one transaction: either every line of
// the order lands or none do.
func (r *Repository) CreateOrderLines(ctx context.Context, orderID uuid.UUID, lines []LineInput) ([]domain.OrderItem, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, persistenceErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		var item domain.OrderItem
		err := tx.GetContext(ctx, &item, `
			INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *`,
			orderID, l.MenuItemID, l.Quantity, l.UnitPrice, l.Notes)
		if err != nil {
			return nil, persistenceErr("failed to insert order line", err)
		}
		out = append(out, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceErr("failed to commit order lines", err)
	}
	return out, nil
}

func (r *Repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return persistenceErr("failed to delete order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const orderWithTableQuery = `
	SELECT o.*, t.table_number
	FROM orders o
	JOIN tables t ON t.id = o.table_id`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (OrderWithItems, error) {
	var o OrderWithItems
	err := r.db.GetContext(ctx, &o, orderWithTableQuery+` WHERE o.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderWithItems{}, domain.ErrNotFound
	}
	if err != nil {
		return OrderWithItems{}, persistenceErr("failed to get order", err)
	}
	if err := r.attachItems(ctx, []*OrderWithItems{&o}); err != nil {
		return OrderWithItems{}, err
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]OrderWithItems, error) {
	return r.list(ctx, orderWithTableQuery+` ORDER BY o.created_at DESC`)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]OrderWithItems, error) {
	return r.list(ctx, orderWithTableQuery+` WHERE o.status = $1 ORDER BY o.created_at DESC`, status)
}

func (r *Repository) ListByTable(ctx context.Context, tableID uuid.UUID) ([]OrderWithItems, error) {
	return r.list(ctx, orderWithTableQuery+` WHERE o.table_id = $1 ORDER BY o.created_at DESC`, tableID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]OrderWithItems, error) {
	var rows []OrderWithItems
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistenceErr("failed to list orders", err)
	}
	refs := make([]*OrderWithItems, len(rows))
	for i := range rows {
		refs[i] = &rows[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) attachItems(ctx context.Context, orders []*OrderWithItems) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*OrderWithItems, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
		o.Items = []domain.OrderItem{}
	}

	query, args, err := sqlx.In(
		`SELECT * FROM order_items WHERE order_id IN (?) ORDER BY created_at`, ids)
	if err != nil {
		return persistenceErr("failed to build order items query", err)
	}
	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return persistenceErr("failed to load order items", err)
	}
	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return nil
}

// OpenOrderCount counts non-terminal orders on a table, excluding the given
// order. Used to decide whether serving an order frees its table.
func (r *Repository) OpenOrderCount(ctx context.Context, tableID, excludeOrderID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM orders
		WHERE table_id = $1
		  AND id <> $2
		  AND status IN ('pending', 'preparing', 'ready')`,
		tableID, excludeOrderID)
	if err != nil {
		return 0, persistenceErr("failed to count open orders", err)
	}
	return n, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING *`, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, persistenceErr("failed to update order status", err)
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		VALUES ($1, $2, $3)`, id, status, changedBy); err != nil {
		return domain.Order{}, persistenceErr("failed to log order status", err)
	}
	return o, nil
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*)                                         AS total,
			COUNT(*) FILTER (WHERE status = 'pending')       AS pending,
			COUNT(*) FILTER (WHERE status = 'preparing')     AS preparing,
			COUNT(*) FILTER (WHERE status = 'ready')         AS ready,
			COUNT(*) FILTER (WHERE status = 'served')        AS served,
			COUNT(*) FILTER (WHERE status = 'cancelled')     AS cancelled,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'served'), 0) AS today_revenue
		FROM orders
		WHERE created_at >= date_trunc('day', now())`)
	if err != nil {
		return Stats{}, persistenceErr("failed to get order stats", err)
	}
	return s, nil
}
