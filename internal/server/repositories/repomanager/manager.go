package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pageclean/internal/dbx"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/collections"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/pages"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/revisions"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Collections(db dbx.DBTX) collections.Repository
	Pages(db dbx.DBTX) pages.Repository
	Revisions(db dbx.DBTX) revisions.Repository
	Users(db dbx.DBTX) users.Repository
}
