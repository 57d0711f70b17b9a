// Package store opens the catalog database and keeps its schema current.
//
// Two drivers are supported:
//
//	pgx     PostgreSQL through github.com/jackc/pgx/v5/stdlib
//	sqlite  embedded SQLite through modernc.org/sqlite
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/dal"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/store/migrations"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// DB wraps a *sql.DB together with the SQL flavour it speaks
type DB struct {
	*sql.DB
	driver string
}

// Open connects to dsn with the named driver and verifies the connection
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	// every connection to ":memory:" is a separate database
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// DriverName returns the database/sql driver name
func (d *DB) DriverName() string {
	return d.driver
}

// Dialect returns the placeholder style for the driver
func (d *DB) Dialect() dal.Dialect {
	if d.driver == DriverSQLite {
		return dal.SQLite
	}
	return dal.Postgres
}

// Migrate applies every pending embedded migration
func (d *DB) Migrate(ctx context.Context) error {
	p, err := d.migrator()
	if err != nil {
		return err
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Version reports the current schema version
func (d *DB) Version(ctx context.Context) (int64, error) {
	p, err := d.migrator()
	if err != nil {
		return 0, err
	}
	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration version: %w", err)
	}
	return version, nil
}

// migrator is scoped to d; closing it would close d.DB, so it is left open
func (d *DB) migrator() (*goose.Provider, error) {
	dialect := goose.DialectPostgres
	if d.driver == DriverSQLite {
		dialect = goose.DialectSQLite3
	}
	p, err := goose.NewProvider(dialect, d.DB, migrations.Migrations)
	if err != nil {
		return nil, fmt.Errorf("migration setup: %w", err)
	}
	return p, nil
}
