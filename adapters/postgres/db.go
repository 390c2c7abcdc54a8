package postgres

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"dispatchboard/internal/config"
	"dispatchboard/internal/errors"
)

// Connect opens and pings the marketplace database
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}
