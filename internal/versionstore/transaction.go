package versionstore

import (
	"context"
	"database/sql"
)

type transactionContextKey struct{}

// sqlExecutor is satisfied by both *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(executionContext context.Context, query string, arguments ...any) (sql.Result, error)
	QueryContext(executionContext context.Context, query string, arguments ...any) (*sql.Rows, error)
}

// WithTransaction attaches an open transaction so SQLStore writes join it and
// commit or roll back together with the migration statements.
func WithTransaction(parentContext context.Context, transaction *sql.Tx) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, transactionContextKey{}, transaction)
}

func transactionFromContext(executionContext context.Context) (*sql.Tx, bool) {
	if executionContext == nil {
		return nil, false
	}
	transaction, available := executionContext.Value(transactionContextKey{}).(*sql.Tx)
	return transaction, available && transaction != nil
}

func (store *SQLStore) executor(executionContext context.Context) sqlExecutor {
	if transaction, available := transactionFromContext(executionContext); available {
		return transaction
	}
	return store.database
}
