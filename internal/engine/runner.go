package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/migrix/internal/versionstore"
)

const (
	runnerNotConfiguredMessageConstant = "statement runner database not configured"
	beginTransactionTemplateConstant   = "begin migration transaction: %w"
	executeStatementsTemplateConstant  = "execute migration statements: %w"
	bookkeepingTemplateConstant        = "update installed migrations: %w"
	commitTransactionTemplateConstant  = "commit migration transaction: %w"
)

// ErrRunnerNotConfigured indicates a SQLStatementRunner has no database handle.
var ErrRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)

// Bookkeeping updates the installed-version records for one migration. It
// receives the context of the statement transaction.
type Bookkeeping func(executionContext context.Context) error

// StatementRunner executes the SQL body of one migration and its bookkeeping as one unit.
type StatementRunner interface {
	RunStatements(executionContext context.Context, script string, bookkeeping Bookkeeping) error
}

// SQLStatementRunner runs each script and its bookkeeping inside one transaction.
// MySQL connections need multiStatements=true in the DSN for multi-statement scripts.
type SQLStatementRunner struct {
	database *sql.DB
}

// NewSQLStatementRunner constructs a runner for the database handle.
func NewSQLStatementRunner(database *sql.DB) *SQLStatementRunner {
	return &SQLStatementRunner{database: database}
}

// RunStatements implements StatementRunner. Blank scripts only run the bookkeeping.
func (runner *SQLStatementRunner) RunStatements(executionContext context.Context, script string, bookkeeping Bookkeeping) error {
	if runner == nil || runner.database == nil {
		return ErrRunnerNotConfigured
	}

	transaction, beginError := runner.database.BeginTx(executionContext, nil)
	if beginError != nil {
		return fmt.Errorf(beginTransactionTemplateConstant, beginError)
	}
	if len(strings.TrimSpace(script)) > 0 {
		if _, execError := transaction.ExecContext(executionContext, script); execError != nil {
			_ = transaction.Rollback()
			return fmt.Errorf(executeStatementsTemplateConstant, execError)
		}
	}
	if bookkeeping != nil {
		if bookkeepingError := bookkeeping(versionstore.WithTransaction(executionContext, transaction)); bookkeepingError != nil {
			_ = transaction.Rollback()
			return fmt.Errorf(bookkeepingTemplateConstant, bookkeepingError)
		}
	}
	if commitError := transaction.Commit(); commitError != nil {
		return fmt.Errorf(commitTransactionTemplateConstant, commitError)
	}
	return nil
}
