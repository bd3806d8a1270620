package inventory

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

type RepositoryInterface interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	ListByCategory(ctx context.Context, cat domain.InventoryCategory) ([]domain.InventoryItem, error)
	LowStock(ctx context.Context) ([]domain.InventoryItem, error)
	OutOfStock(ctx context.Context) ([]domain.InventoryItem, error)
	Search(ctx context.Context, query string) ([]domain.InventoryItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.InventoryItem, error)
	Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	UpdateStock(ctx context.Context, id uuid.UUID, newStock float64) (domain.InventoryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarizes the stock position for the inventory page header.
type Stats struct {
	TotalItems      int     `json:"total_items" db:"total_items"`
	LowStockItems   int     `json:"low_stock_items" db:"low_stock_items"`
	OutOfStockItems int     `json:"out_of_stock_items" db:"out_of_stock_items"`
	TotalValue      float64 `json:"total_value" db:"total_value"`
	Ingredients     int     `json:"ingredients" db:"ingredients"`
	Beverages       int     `json:"beverages" db:"beverages"`
	Supplies        int     `json:"supplies" db:"supplies"`
	Equipment       int     `json:"equipment" db:"equipment"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM inventory_items ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory items")
	}
	return out, nil
}

func (r *Repository) ListByCategory(ctx context.Context, cat domain.InventoryCategory) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM inventory_items WHERE category = $1 ORDER BY name`, cat)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list inventory items by category")
	}
	return out, nil
}

func (r *Repository) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM inventory_items
		WHERE current_stock <= min_stock AND current_stock > 0
		ORDER BY current_stock`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list low-stock items")
	}
	return out, nil
}

func (r *Repository) OutOfStock(ctx context.Context) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM inventory_items WHERE current_stock = 0 ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list out-of-stock items")
	}
	return out, nil
}

func (r *Repository) Search(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	pattern := "%" + query + "%"
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM inventory_items
		WHERE name ILIKE $1 OR description ILIKE $1 OR supplier ILIKE $1
		ORDER BY name`, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search inventory items")
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.db.GetContext(ctx, &item, `SELECT * FROM inventory_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, errors.Wrap(err, "failed to get inventory item")
	}
	return item, nil
}

func (r *Repository) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	var created domain.InventoryItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO inventory_items
			(name, description, category, current_stock, min_stock, max_stock,
			 unit, unit_price, supplier, last_restocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *`,
		item.Name, item.Description, item.Category, item.CurrentStock,
		item.MinStock, item.MaxStock, item.Unit, item.UnitPrice,
		item.Supplier, item.LastRestocked)
	if err != nil {
		return domain.InventoryItem{}, errors.Wrap(err, "failed to create inventory item")
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	var updated domain.InventoryItem
	err := r.db.GetContext(ctx, &updated, `
		UPDATE inventory_items SET
			name = $2, description = $3, category = $4, current_stock = $5,
			min_stock = $6, max_stock = $7, unit = $8, unit_price = $9,
			supplier = $10, updated_at = now()
		WHERE id = $1
		RETURNING *`,
		item.ID, item.Name, item.Description, item.Category, item.CurrentStock,
		item.MinStock, item.MaxStock, item.Unit, item.UnitPrice, item.Supplier)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, errors.Wrap(err, "failed to update inventory item")
	}
	return updated, nil
}

func (r *Repository) UpdateStock(ctx context.Context, id uuid.UUID, newStock float64) (domain.InventoryItem, error) {
	var updated domain.InventoryItem
	err := r.db.GetContext(ctx, &updated, `
		UPDATE inventory_items SET
			current_stock = $2, last_restocked = now(), updated_at = now()
		WHERE id = $1
		RETURNING *`, id, newStock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.InventoryItem{}, errors.Wrap(err, "failed to update stock")
	}
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete inventory item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*) AS total_items,
			COUNT(*) FILTER (WHERE current_stock <= min_stock AND current_stock > 0) AS low_stock_items,
			COUNT(*) FILTER (WHERE current_stock = 0)                                AS out_of_stock_items,
			COALESCE(SUM(current_stock * unit_price), 0)                             AS total_value,
			COUNT(*) FILTER (WHERE category = 'ingredients')                         AS ingredients,
			COUNT(*) FILTER (WHERE category = 'beverages')                           AS beverages,
			COUNT(*) FILTER (WHERE category = 'supplies')                            AS supplies,
			COUNT(*) FILTER (WHERE category = 'equipment')                           AS equipment
		FROM inventory_items`)
	if err != nil {
		return Stats{}, errors.Wrap(err, "failed to get inventory stats")
	}
	return s, nil
}
