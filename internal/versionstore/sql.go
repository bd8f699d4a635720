package versionstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/temirov/migrix/internal/targets"
)

//go:embed migrations/*.sql
var schemaMigrations embed.FS

const (
	schemaMigrationsDirectoryConstant = "migrations"
	installedAtLayoutConstant         = time.RFC3339Nano
	storeNotConfiguredMessageConstant = "version store database not configured"
	openDatabaseTemplateConstant      = "open %s database: %w"
	pingDatabaseTemplateConstant      = "connect to %s database: %w"
	gooseDialectTemplateConstant      = "set schema dialect: %w"
	schemaUpgradeTemplateConstant     = "upgrade version store schema: %w"
	queryInstalledTemplateConstant    = "query installed migrations for %s: %w"
	recordMigrationTemplateConstant   = "record migration %s for %s: %w"
	removeMigrationTemplateConstant   = "remove migration %s for %s: %w"
)

// SchemaVersionTableName is the goose history table of the store schema. It is
// kept apart from goose_db_version so applications managed by goose are unaffected.
const SchemaVersionTableName = "migrix_db_version"

// ErrStoreNotConfigured indicates a SQLStore was used without a database handle.
var ErrStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)

// SQLStore persists installed migrations in the migration_versions table.
type SQLStore struct {
	database *sql.DB
	dialect  dialect
	clock    func() time.Time

	installedQuery  string
	recordStatement string
	removeStatement string
}

// Open connects to the database described by driverName and dsn and brings the store schema up to date.
func Open(executionContext context.Context, driverName string, dsn string) (*SQLStore, error) {
	selectedDialect, dialectError := lookupDialect(driverName)
	if dialectError != nil {
		return nil, dialectError
	}

	database, openError := sql.Open(selectedDialect.driverName, dsn)
	if openError != nil {
		return nil, fmt.Errorf(openDatabaseTemplateConstant, selectedDialect.driverName, openError)
	}
	if selectedDialect.singleConnection {
		database.SetMaxOpenConns(1)
	}
	if pingError := database.PingContext(executionContext); pingError != nil {
		database.Close()
		return nil, fmt.Errorf(pingDatabaseTemplateConstant, selectedDialect.driverName, pingError)
	}

	store, storeError := newSQLStore(executionContext, database, selectedDialect)
	if storeError != nil {
		database.Close()
		return nil, storeError
	}
	return store, nil
}

// NewSQLStore wraps an already open database. The schema is upgraded before returning.
func NewSQLStore(executionContext context.Context, database *sql.DB, driverName string) (*SQLStore, error) {
	if database == nil {
		return nil, ErrStoreNotConfigured
	}
	selectedDialect, dialectError := lookupDialect(driverName)
	if dialectError != nil {
		return nil, dialectError
	}
	return newSQLStore(executionContext, database, selectedDialect)
}

func newSQLStore(executionContext context.Context, database *sql.DB, selectedDialect dialect) (*SQLStore, error) {
	goose.SetBaseFS(schemaMigrations)
	goose.SetLogger(goose.NopLogger())
	goose.SetTableName(SchemaVersionTableName)
	if dialectError := goose.SetDialect(selectedDialect.gooseDialect); dialectError != nil {
		return nil, fmt.Errorf(gooseDialectTemplateConstant, dialectError)
	}
	if upError := goose.UpContext(executionContext, database, schemaMigrationsDirectoryConstant); upError != nil {
		return nil, fmt.Errorf(schemaUpgradeTemplateConstant, upError)
	}

	return &SQLStore{
		database: database,
		dialect:  selectedDialect,
		clock:    time.Now,
		installedQuery: fmt.Sprintf(
			"SELECT migration FROM migration_versions WHERE target_kind = %s AND target_name = %s ORDER BY migration",
			selectedDialect.placeholder(1), selectedDialect.placeholder(2),
		),
		recordStatement: fmt.Sprintf(
			"INSERT INTO migration_versions (target_kind, target_name, migration, installed_at) VALUES (%s, %s, %s, %s)",
			selectedDialect.placeholder(1), selectedDialect.placeholder(2), selectedDialect.placeholder(3), selectedDialect.placeholder(4),
		),
		removeStatement: fmt.Sprintf(
			"DELETE FROM migration_versions WHERE target_kind = %s AND target_name = %s AND migration = %s",
			selectedDialect.placeholder(1), selectedDialect.placeholder(2), selectedDialect.placeholder(3),
		),
	}, nil
}

// DB exposes the underlying database handle so migration statements share the connection.
func (store *SQLStore) DB() *sql.DB {
	if store == nil {
		return nil
	}
	return store.database
}

// Driver returns the driver name the store was opened with.
func (store *SQLStore) Driver() string {
	if store == nil {
		return ""
	}
	return store.dialect.driverName
}

// Close releases the database handle.
func (store *SQLStore) Close() error {
	if store == nil || store.database == nil {
		return nil
	}
	return store.database.Close()
}

// Installed implements Store.
func (store *SQLStore) Installed(executionContext context.Context, target targets.Descriptor) ([]string, error) {
	if store == nil || store.database == nil {
		return nil, ErrStoreNotConfigured
	}

	rows, queryError := store.executor(executionContext).QueryContext(executionContext, store.installedQuery, string(target.Kind), target.Name)
	if queryError != nil {
		return nil, fmt.Errorf(queryInstalledTemplateConstant, target.Label(), queryError)
	}
	defer rows.Close()

	var identifiers []string
	for rows.Next() {
		var identifier string
		if scanError := rows.Scan(&identifier); scanError != nil {
			return nil, fmt.Errorf(queryInstalledTemplateConstant, target.Label(), scanError)
		}
		identifiers = append(identifiers, identifier)
	}
	if rowsError := rows.Err(); rowsError != nil {
		return nil, fmt.Errorf(queryInstalledTemplateConstant, target.Label(), rowsError)
	}
	return identifiers, nil
}

// Record implements Store.
func (store *SQLStore) Record(executionContext context.Context, target targets.Descriptor, migrationIdentifier string) error {
	if store == nil || store.database == nil {
		return ErrStoreNotConfigured
	}

	installedAt := store.clock().UTC().Format(installedAtLayoutConstant)
	if _, execError := store.executor(executionContext).ExecContext(executionContext, store.recordStatement, string(target.Kind), target.Name, migrationIdentifier, installedAt); execError != nil {
		return fmt.Errorf(recordMigrationTemplateConstant, migrationIdentifier, target.Label(), execError)
	}
	return nil
}

// Remove implements Store.
func (store *SQLStore) Remove(executionContext context.Context, target targets.Descriptor, migrationIdentifier string) error {
	if store == nil || store.database == nil {
		return ErrStoreNotConfigured
	}

	if _, execError := store.executor(executionContext).ExecContext(executionContext, store.removeStatement, string(target.Kind), target.Name, migrationIdentifier); execError != nil {
		return fmt.Errorf(removeMigrationTemplateConstant, migrationIdentifier, target.Label(), execError)
	}
	return nil
}
