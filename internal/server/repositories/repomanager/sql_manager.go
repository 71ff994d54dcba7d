// Package repomanager provides a concrete RepositoryManager for the SQL
// backends, wiring together repository constructors and database migrations
// (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/server/migrations"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/collections"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/pages"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/revisions"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// SQLRepositoryManager vends SQL-backed repository implementations
// and exposes a schema migration hook.
type SQLRepositoryManager struct {
	driver string
}

// Collections returns a collections.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Collections(db dbx.DBTX) collections.Repository {
	return collections.NewSQLRepository(db)
}

// Pages returns a pages.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Pages(db dbx.DBTX) pages.Repository {
	return pages.NewSQLRepository(db)
}

// Revisions returns a revisions.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Revisions(db dbx.DBTX) revisions.Repository {
	return revisions.NewSQLRepository(db)
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func gooseDialect(driver string) string {
	if driver == DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

// RunMigrations sets up goose with the embedded migrations for the
// manager's dialect and runs them against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(gooseDialect(m.driver)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, migrations.Dir(m.driver)); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for the given
// database/sql driver name.
func NewSQLRepositoryManager(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
		return &SQLRepositoryManager{driver: driver}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens and pings a database handle for driver.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if _, err := NewSQLRepositoryManager(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer at a time; the conditional updates rely on it
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
