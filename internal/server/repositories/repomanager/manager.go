package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkravets/contactdesk/internal/dbx"
	"github.com/mkravets/contactdesk/internal/server/repositories/contacts"
	"github.com/mkravets/contactdesk/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}
