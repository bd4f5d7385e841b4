package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/herds"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/milk"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code on the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Herds(db dbx.DBTX) herds.Repository
	Milk(db dbx.DBTX) milk.Repository
}
