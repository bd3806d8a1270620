package tables

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"tableside/internal/domain"
)

type RepositoryInterface interface {
	List(ctx context.Context) ([]domain.Table, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error)
	ListByStatus(ctx context.Context, status domain.TableStatus) ([]domain.Table, error)
	Create(ctx context.Context, number, seats int) (domain.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TableStatus) (domain.Table, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats is the per-status breakdown shown on the floor overview.
type Stats struct {
	Total     int `json:"total" db:"total"`
	Available int `json:"available" db:"available"`
	Occupied  int `json:"occupied" db:"occupied"`
	Reserved  int `json:"reserved" db:"reserved"`
	Cleaning  int `json:"cleaning" db:"cleaning"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]domain.Table, error) {
	var out []domain.Table
	err := r.db.SelectContext(ctx, &out, `SELECT * FROM tables ORDER BY table_number`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Table, error) {
	var t domain.Table
	err := r.db.GetContext(ctx, &t, `SELECT * FROM tables WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Table{}, errors.Wrap(err, "failed to get table")
	}
	return t, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.TableStatus) ([]domain.Table, error) {
	var out []domain.Table
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM tables WHERE status = $1 ORDER BY table_number`, status)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables by status")
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, number, seats int) (domain.Table, error) {
	var t domain.Table
	err := r.db.GetContext(ctx, &t, `
		INSERT INTO tables (table_number, seats)
		VALUES ($1, $2)
		RETURNING *`, number, seats)
	if err != nil {
		return domain.Table{}, errors.Wrap(err, "failed to create table")
	}
	return t, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TableStatus) (domain.Table, error) {
	var t domain.Table
	err := r.db.GetContext(ctx, &t, `
		UPDATE tables SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING *`, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Table{}, errors.Wrap(err, "failed to update table status")
	}
	return t, nil
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*)                                        AS total,
			COUNT(*) FILTER (WHERE status = 'available')    AS available,
			COUNT(*) FILTER (WHERE status = 'occupied')     AS occupied,
			COUNT(*) FILTER (WHERE status = 'reserved')     AS reserved,
			COUNT(*) FILTER (WHERE status = 'cleaning')     AS cleaning
		FROM tables`)
	if err != nil {
		return Stats{}, errors.Wrap(err, "failed to get table stats")
	}
	return s, nil
}
