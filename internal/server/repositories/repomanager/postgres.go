// Package repomanager wires repository constructors for each storage
// backend together with schema migrations (goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/server/migrations"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/herds"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Herds(db dbx.DBTX) herds.Repository {
	return herds.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Milk(db dbx.DBTX) milk.Repository {
	return milk.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenPostgres opens a pgx-backed *sql.DB and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
