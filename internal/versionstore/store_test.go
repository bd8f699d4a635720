package versionstore_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/versionstore"
)

const (
	testDatabaseFileNameConstant = "versions.db"
	testFirstMigrationConstant   = "001_create_users"
	testSecondMigrationConstant  = "002_create_posts"
	testThirdMigrationConstant   = "010_add_index"
)

const (
	testApplicationGooseTableConstant = `CREATE TABLE goose_db_version (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id INTEGER NOT NULL,
	is_applied INTEGER NOT NULL,
	tstamp TIMESTAMP DEFAULT (datetime('now'))
)`
	testApplicationGooseVersionConstant = "INSERT INTO goose_db_version (version_id, is_applied) VALUES (?, 1)"
	testApplicationGooseCountConstant   = "SELECT COUNT(*) FROM goose_db_version"
)

func openSQLiteStore(testInstance *testing.T) *versionstore.SQLStore {
	testInstance.Helper()
	databasePath := filepath.Join(testInstance.TempDir(), testDatabaseFileNameConstant)
	store, openError := versionstore.Open(context.Background(), versionstore.DriverSQLite, databasePath)
	require.NoError(testInstance, openError)
	testInstance.Cleanup(func() {
		require.NoError(testInstance, store.Close())
	})
	return store
}

func TestStoresRecordAndRemove(testInstance *testing.T) {
	testCases := []struct {
		name  string
		store func(*testing.T) versionstore.Store
	}{
		{
			name: "Memory",
			store: func(*testing.T) versionstore.Store {
				return versionstore.NewMemoryStore()
			},
		},
		{
			name: "SQLite",
			store: func(subTest *testing.T) versionstore.Store {
				return openSQLiteStore(subTest)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executionContext := context.Background()
			store := testCase.store(subTest)
			moduleTarget := targets.Module("auth")
			packageTarget := targets.Package("auth")

			installed, installedError := store.Installed(executionContext, moduleTarget)
			require.NoError(subTest, installedError)
			require.Empty(subTest, installed)

			require.NoError(subTest, store.Record(executionContext, moduleTarget, testThirdMigrationConstant))
			require.NoError(subTest, store.Record(executionContext, moduleTarget, testFirstMigrationConstant))
			require.NoError(subTest, store.Record(executionContext, moduleTarget, testSecondMigrationConstant))
			require.NoError(subTest, store.Record(executionContext, packageTarget, testFirstMigrationConstant))

			installed, installedError = store.Installed(executionContext, moduleTarget)
			require.NoError(subTest, installedError)
			require.Equal(subTest, []string{testFirstMigrationConstant, testSecondMigrationConstant, testThirdMigrationConstant}, installed)

			require.NoError(subTest, store.Remove(executionContext, moduleTarget, testSecondMigrationConstant))

			installed, installedError = store.Installed(executionContext, moduleTarget)
			require.NoError(subTest, installedError)
			require.Equal(subTest, []string{testFirstMigrationConstant, testThirdMigrationConstant}, installed)

			packageInstalled, packageError := store.Installed(executionContext, packageTarget)
			require.NoError(subTest, packageError)
			require.Equal(subTest, []string{testFirstMigrationConstant}, packageInstalled)
		})
	}
}

func TestSQLStoreSchemaSurvivesReopen(testInstance *testing.T) {
	executionContext := context.Background()
	databasePath := filepath.Join(testInstance.TempDir(), testDatabaseFileNameConstant)

	firstStore, firstOpenError := versionstore.Open(executionContext, versionstore.DriverSQLite, databasePath)
	require.NoError(testInstance, firstOpenError)
	require.NoError(testInstance, firstStore.Record(executionContext, targets.Application(), testFirstMigrationConstant))
	require.NoError(testInstance, firstStore.Close())

	secondStore, secondOpenError := versionstore.Open(executionContext, versionstore.DriverSQLite, databasePath)
	require.NoError(testInstance, secondOpenError)
	defer secondStore.Close()

	installed, installedError := secondStore.Installed(executionContext, targets.Application())
	require.NoError(testInstance, installedError)
	require.Equal(testInstance, []string{testFirstMigrationConstant}, installed)
	require.Equal(testInstance, versionstore.DriverSQLite, secondStore.Driver())
}

func TestOpenRejectsUnsupportedDriver(testInstance *testing.T) {
	_, openError := versionstore.Open(context.Background(), "oracle", "dsn")
	require.ErrorIs(testInstance, openError, versionstore.ErrUnsupportedDriver)
}

func TestNewSQLStoreRequiresDatabase(testInstance *testing.T) {
	_, storeError := versionstore.NewSQLStore(context.Background(), nil, versionstore.DriverSQLite)
	require.ErrorIs(testInstance, storeError, versionstore.ErrStoreNotConfigured)
}

func TestSQLStoreIgnoresApplicationGooseHistory(testInstance *testing.T) {
	executionContext := context.Background()
	databasePath := filepath.Join(testInstance.TempDir(), testDatabaseFileNameConstant)

	applicationDatabase, applicationOpenError := sql.Open(versionstore.DriverSQLite, databasePath)
	require.NoError(testInstance, applicationOpenError)
	_, createError := applicationDatabase.ExecContext(executionContext, testApplicationGooseTableConstant)
	require.NoError(testInstance, createError)
	for _, versionIdentifier := range []int{0, 1} {
		_, insertError := applicationDatabase.ExecContext(executionContext, testApplicationGooseVersionConstant, versionIdentifier)
		require.NoError(testInstance, insertError)
	}
	require.NoError(testInstance, applicationDatabase.Close())

	store, openError := versionstore.Open(executionContext, versionstore.DriverSQLite, databasePath)
	require.NoError(testInstance, openError)
	defer store.Close()

	require.NoError(testInstance, store.Record(executionContext, targets.Application(), testFirstMigrationConstant))
	installed, installedError := store.Installed(executionContext, targets.Application())
	require.NoError(testInstance, installedError)
	require.Equal(testInstance, []string{testFirstMigrationConstant}, installed)

	var applicationVersionCount int
	require.NoError(testInstance, store.DB().QueryRowContext(executionContext, testApplicationGooseCountConstant).Scan(&applicationVersionCount))
	require.Equal(testInstance, 2, applicationVersionCount)
}

func TestSQLStoreWritesJoinAttachedTransaction(testInstance *testing.T) {
	executionContext := context.Background()
	store := openSQLiteStore(testInstance)
	require.NoError(testInstance, store.Record(executionContext, targets.Application(), testFirstMigrationConstant))

	transaction, beginError := store.DB().BeginTx(executionContext, nil)
	require.NoError(testInstance, beginError)
	transactionContext := versionstore.WithTransaction(executionContext, transaction)
	require.NoError(testInstance, store.Record(transactionContext, targets.Application(), testSecondMigrationConstant))
	require.NoError(testInstance, store.Remove(transactionContext, targets.Application(), testFirstMigrationConstant))

	pending, pendingError := store.Installed(transactionContext, targets.Application())
	require.NoError(testInstance, pendingError)
	require.Equal(testInstance, []string{testSecondMigrationConstant}, pending)
	require.NoError(testInstance, transaction.Rollback())

	installed, installedError := store.Installed(executionContext, targets.Application())
	require.NoError(testInstance, installedError)
	require.Equal(testInstance, []string{testFirstMigrationConstant}, installed)
}
