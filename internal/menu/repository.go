package menu

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

type RepositoryInterface interface {
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.MenuItem, error)
	ListPopular(ctx context.Context, limit int) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context) (map[uuid.UUID]int, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM menu_items WHERE is_available ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list menu items")
	}
	return out, nil
}

func (r *Repository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM menu_items WHERE category_id = $1 AND is_available ORDER BY name`, categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list menu items by category")
	}
	return out, nil
}

func (r *Repository) ListPopular(ctx context.Context, limit int) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM menu_items WHERE is_popular AND is_available ORDER BY name LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list popular menu items")
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	var mi domain.MenuItem
	err := r.db.GetContext(ctx, &mi, `SELECT * FROM menu_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, errors.Wrap(err, "failed to get menu item")
	}
	return mi, nil
}

func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM categories ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	var created domain.MenuItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO menu_items
			(name, description, price, category_id, image_url, prep_time,
			 ingredients, calories, spice_level, is_popular, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *`,
		item.Name, item.Description, item.Price, item.CategoryID, item.ImageURL,
		item.PrepTime, item.Ingredients, item.Calories, item.SpiceLevel,
		item.IsPopular, item.IsAvailable)
	if err != nil {
		return domain.MenuItem{}, errors.Wrap(err, "failed to create menu item")
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error) {
	var updated domain.MenuItem
	err := r.db.GetContext(ctx, &updated, `
		UPDATE menu_items SET
			name = $2, description = $3, price = $4, category_id = $5,
			image_url = $6, prep_time = $7, ingredients = $8, calories = $9,
			spice_level = $10, is_popular = $11, is_available = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING *`,
		item.ID, item.Name, item.Description, item.Price, item.CategoryID,
		item.ImageURL, item.PrepTime, item.Ingredients, item.Calories,
		item.SpiceLevel, item.IsPopular, item.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuItem{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MenuItem{}, errors.Wrap(err, "failed to update menu item")
	}
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete menu item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CountByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT category_id, COUNT(*) FROM menu_items
		WHERE is_available
		GROUP BY category_id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count menu items by category")
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan category count")
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
