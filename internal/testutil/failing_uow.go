package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/arbor/internal/db"
)

// FailOnNthWriteUoW is a test UoW that injects an error on the Nth write
// statement within a transaction, so rollback tests can fail a multi-write
// operation (sibling shift, task write, bulk delete) at a precise point.
//
// Writes are counted starting at 1: every ExecContext call, plus
// QueryContext calls whose statement is an INSERT, UPDATE or DELETE (for
// statements with a RETURNING clause). Plain reads pass through uncounted.
type FailOnNthWriteUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthWrite{DBTX: tx, failOn: u.FailOn, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthWrite struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthWrite) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.count.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

func (f *failOnNthWrite) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if isWrite(query) && f.count.Add(1) == f.failOn {
		return nil, f.err
	}
	return f.DBTX.QueryContext(ctx, query, args...)
}

func isWrite(query string) bool {
	verb := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(verb, prefix) {
			return true
		}
	}
	return false
}
