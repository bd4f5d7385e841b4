package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/herds"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/users"
)

// MemoryRepositoryManager serves every repository from one in-process
// store. The DBTX arguments are ignored and there is nothing to migrate.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository              { return m.store.Users() }
func (m *MemoryRepositoryManager) Herds(dbx.DBTX) herds.Repository              { return m.store.Herds() }
func (m *MemoryRepositoryManager) Milk(dbx.DBTX) milk.Repository                { return m.store.Milk() }
