package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB holds the open handle for whichever driver was configured. Exactly one
// of Postgres or SQLite is set.
type DB struct {
	Driver   string
	Postgres *pgxpool.Pool
	SQLite   *sqlx.DB
}

// Open connects to the configured database. For sqlite the URL is a file
// path or ":memory:".
func Open(driver, databaseURL string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		db, err := NewSQLiteDB(databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sqlite driver")
		}
		return &DB{Driver: driver, SQLite: db}, nil
	case DriverPostgres:
		pool, err := NewPostgresPool(databaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open postgres driver")
		}
		return &DB{Driver: driver, Postgres: pool}, nil
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", driver)
	}
}

// Migrate applies the embedded migrations for the open driver.
func (db *DB) Migrate(ctx context.Context) error {
	switch db.Driver {
	case DriverSQLite:
		return errors.Wrap(RunSQLiteMigrations(ctx, db.SQLite, migrationsFS, "migrations/sqlite"), "sqlite migrations")
	case DriverPostgres:
		return errors.Wrap(RunPostgresMigrations(ctx, db.Postgres, migrationsFS, "migrations/postgres"), "postgres migrations")
	default:
		return errors.Errorf("unknown db driver %q", db.Driver)
	}
}

func (db *DB) Close() {
	if db.Postgres != nil {
		db.Postgres.Close()
	}
	if db.SQLite != nil {
		db.SQLite.Close()
	}
}
