package settings

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

type RepositoryInterface interface {
	GetRestaurant(ctx context.Context) (domain.Restaurant, error)
	UpsertRestaurant(ctx context.Context, r domain.Restaurant) (domain.Restaurant, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetRestaurant returns the venue profile. The deployment owns exactly one
// restaurant row; none yet means ErrNotFound.
func (r *Repository) GetRestaurant(ctx context.Context) (domain.Restaurant, error) {
	var out domain.Restaurant
	err := r.db.GetContext(ctx, &out,
		`SELECT * FROM restaurants ORDER BY created_at LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Restaurant{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Restaurant{}, errors.Wrap(err, "failed to get restaurant")
	}
	return out, nil
}

func (r *Repository) UpsertRestaurant(ctx context.Context, in domain.Restaurant) (domain.Restaurant, error) {
	existing, err := r.GetRestaurant(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		var created domain.Restaurant
		err := r.db.GetContext(ctx, &created, `
			INSERT INTO restaurants (name, logo_url, address, phone, email)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *`,
			in.Name, in.LogoURL, in.Address, in.Phone, in.Email)
		if err != nil {
			return domain.Restaurant{}, errors.Wrap(err, "failed to create restaurant")
		}
		return created, nil
	}
	if err != nil {
		return domain.Restaurant{}, err
	}

	var updated domain.Restaurant
	err = r.db.GetContext(ctx, &updated, `
		UPDATE restaurants SET
			name = $2, logo_url = $3, address = $4, phone = $5, email = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING *`,
		existing.ID, in.Name, in.LogoURL, in.Address, in.Phone, in.Email)
	if err != nil {
		return domain.Restaurant{}, errors.Wrap(err, "failed to update restaurant")
	}
	return updated, nil
}
