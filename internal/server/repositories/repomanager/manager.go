package repomanager

import (
	"context"
	"database/sql"

	"github.com/readykit/readykit/internal/dbx"
	"github.com/readykit/readykit/internal/server/repositories/sessions"
	"github.com/readykit/readykit/internal/server/repositories/userdata"
	"github.com/readykit/readykit/internal/server/repositories/users"
)

// RepositoryManager creates repositories bound to a DB handle (either the
// pooled connection or a transaction), so services can run multi-repository
// operations inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	UserData(db dbx.DBTX) userdata.Repository
}
