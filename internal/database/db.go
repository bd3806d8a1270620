package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// Connect opens a PostgreSQL pool via the pgx stdlib driver, retrying until
// the database answers a ping. Kept retrying because the database container
// routinely comes up after the service.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	var lastErr error

	for i := 1; i <= maxRetries; i++ {
		db, err := sqlx.Open("pgx", url)
		if err != nil {
			lastErr = err
		} else {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				db.SetMaxOpenConns(25)
				db.SetMaxIdleConns(5)
				db.SetConnMaxLifetime(30 * time.Minute)
				return db, nil
			}
			lastErr = err
			_ = db.Close()
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "database connect canceled")
		}
	}

	return nil, errors.Wrapf(lastErr, "database unreachable after %d attempts", maxRetries)
}
