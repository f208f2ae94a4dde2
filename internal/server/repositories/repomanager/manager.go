package repomanager

import (
	"context"
	"database/sql"

	"github.com/cinecircle/cinecircle/internal/dbx"
	"github.com/cinecircle/cinecircle/internal/server/repositories/refreshtokens"
	"github.com/cinecircle/cinecircle/internal/server/repositories/users"
	"github.com/cinecircle/cinecircle/internal/server/repositories/watchlists"
)

// RepositoryManager vends repositories bound to a DBTX (either the shared
// *sql.DB or a transaction) and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Watchlists(db dbx.DBTX) watchlists.Repository
}
