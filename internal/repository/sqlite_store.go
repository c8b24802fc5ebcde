package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/arbor/internal/db"
)

// SQLiteStore is the SQLite Store. Its repositories share one connection, or
// one transaction when obtained inside WithinTx.
type SQLiteStore struct {
	conn db.DBTX
	uow  db.UnitOfWork
	inTx bool
}

// NewSQLiteStore creates a Store over database with the default UnitOfWork.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return NewSQLiteStoreWithUoW(database, db.NewSQLiteUnitOfWork(database))
}

// NewSQLiteStoreWithUoW lets callers substitute the transaction boundary.
func NewSQLiteStoreWithUoW(database *sql.DB, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{conn: database, uow: uow}
}

func (s *SQLiteStore) Tasks() TaskStore {
	return NewSQLiteTaskRepo(s.conn)
}

func (s *SQLiteStore) Projects() ProjectRepo {
	return NewSQLiteProjectRepo(s.conn)
}

func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &SQLiteStore{conn: tx, uow: s.uow, inTx: true})
	})
}

var (
	_ Store       = (*SQLiteStore)(nil)
	_ TaskStore   = (*SQLiteTaskRepo)(nil)
	_ ProjectRepo = (*SQLiteProjectRepo)(nil)
)
