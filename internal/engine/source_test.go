package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/versionstore"
)

const (
	testFilePermissionsConstant = 0o644
	testCreateUsersFileConstant = `-- +up
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);

-- +down
DROP TABLE users;
`
	testCreatePostsFileConstant = `CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL);
-- +down
DROP TABLE posts;
`
	testManifestConstant = `dependencies:
  "002":
    - target: module:auth
      migration: 001_create_accounts
`
	testInvalidManifestConstant = `dependencies:
  999_unknown:
    - target: module:auth
      migration: 001_create_accounts
`
)

const (
	testBookkeepingFailureConstant = "bookkeeping failed"
	testCreateAuditTableConstant   = "CREATE TABLE audit (id INTEGER PRIMARY KEY)"
	testInsertAuditRowConstant     = "INSERT INTO audit (id) VALUES (1)"
)

type directoryLocator map[targets.Descriptor]string

func (locator directoryLocator) MigrationDirectory(target targets.Descriptor) (string, error) {
	return locator[target], nil
}

func writeFile(testInstance *testing.T, path string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte(contents), testFilePermissionsConstant))
}

func TestFileSourceParsesMigrationsAndManifest(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeFile(testInstance, filepath.Join(directory, testSecondMigrationConstant+".sql"), testCreatePostsFileConstant)
	writeFile(testInstance, filepath.Join(directory, testFirstMigrationConstant+".sql"), testCreateUsersFileConstant)
	writeFile(testInstance, filepath.Join(directory, "notes.txt"), "ignored")
	writeFile(testInstance, filepath.Join(directory, "manifest.yaml"), testManifestConstant)

	source := engine.NewFileSource(directoryLocator{targets.Application(): directory})
	migrations, loadError := source.Migrations(targets.Application())
	require.NoError(testInstance, loadError)
	require.Len(testInstance, migrations, 2)

	require.Equal(testInstance, testFirstMigrationConstant, migrations[0].ID)
	require.Equal(testInstance, "001", migrations[0].Version)
	require.Equal(testInstance, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);", migrations[0].UpScript)
	require.Equal(testInstance, "DROP TABLE users;", migrations[0].DownScript)
	require.Empty(testInstance, migrations[0].Dependencies)

	require.Equal(testInstance, testSecondMigrationConstant, migrations[1].ID)
	require.Equal(testInstance, "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL);", migrations[1].UpScript)
	require.Equal(testInstance, []engine.Dependency{{Target: targets.Module("auth"), Migration: testAuthMigrationConstant}}, migrations[1].Dependencies)
}

func TestFileSourceMissingDirectoryHasNoMigrations(testInstance *testing.T) {
	source := engine.NewFileSource(directoryLocator{targets.Application(): filepath.Join(testInstance.TempDir(), "absent")})
	migrations, loadError := source.Migrations(targets.Application())
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, migrations)
}

func TestFileSourceRejectsManifestForUnknownMigration(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeFile(testInstance, filepath.Join(directory, testFirstMigrationConstant+".sql"), testCreateUsersFileConstant)
	writeFile(testInstance, filepath.Join(directory, "manifest.yaml"), testInvalidManifestConstant)

	source := engine.NewFileSource(directoryLocator{targets.Application(): directory})
	_, loadError := source.Migrations(targets.Application())
	require.Error(testInstance, loadError)
}

func TestEngineRunsFileMigrationsAgainstSQLite(testInstance *testing.T) {
	executionContext := context.Background()
	directory := testInstance.TempDir()
	writeFile(testInstance, filepath.Join(directory, testFirstMigrationConstant+".sql"), testCreateUsersFileConstant)
	writeFile(testInstance, filepath.Join(directory, testSecondMigrationConstant+".sql"), testCreatePostsFileConstant)

	store, openError := versionstore.Open(executionContext, versionstore.DriverSQLite, filepath.Join(testInstance.TempDir(), "migrix.db"))
	require.NoError(testInstance, openError)
	defer store.Close()

	migrationEngine, engineError := engine.NewEngine(engine.Dependencies{
		Source: engine.NewFileSource(directoryLocator{targets.Application(): directory}),
		Store:  store,
		Runner: engine.NewSQLStatementRunner(store.DB()),
	})
	require.NoError(testInstance, engineError)

	result, latestError := migrationEngine.ToLatest(executionContext, targets.Application(), false)
	require.NoError(testInstance, latestError)
	require.Equal(testInstance, []string{testFirstMigrationConstant, testSecondMigrationConstant}, result.Executed)

	_, insertError := store.DB().ExecContext(executionContext, "INSERT INTO posts (id, user_id) VALUES (1, 1)")
	require.NoError(testInstance, insertError)

	downResult, downError := migrationEngine.StepDown(executionContext, "", targets.Application())
	require.NoError(testInstance, downError)
	require.Equal(testInstance, []string{testSecondMigrationConstant}, downResult.Executed)

	_, missingTableError := store.DB().ExecContext(executionContext, "INSERT INTO posts (id, user_id) VALUES (2, 1)")
	require.Error(testInstance, missingTableError)

	installed, installedError := migrationEngine.Installed(executionContext, targets.Application())
	require.NoError(testInstance, installedError)
	require.Equal(testInstance, []string{testFirstMigrationConstant}, installed)
}

func TestSQLStatementRunnerCommitsStatementsWithBookkeeping(testInstance *testing.T) {
	testCases := []struct {
		name              string
		bookkeepingError  error
		expectedInstalled []string
		expectTable       bool
	}{
		{
			name:              "CommitsTogether",
			expectedInstalled: []string{testFirstMigrationConstant},
			expectTable:       true,
		},
		{
			name:              "RollsBackTogether",
			bookkeepingError:  errors.New(testBookkeepingFailureConstant),
			expectedInstalled: []string{},
			expectTable:       false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executionContext := context.Background()
			store, openError := versionstore.Open(executionContext, versionstore.DriverSQLite, filepath.Join(subTest.TempDir(), "migrix.db"))
			require.NoError(subTest, openError)
			defer store.Close()

			runner := engine.NewSQLStatementRunner(store.DB())
			runError := runner.RunStatements(executionContext, testCreateAuditTableConstant, func(transactionContext context.Context) error {
				require.NoError(subTest, store.Record(transactionContext, targets.Application(), testFirstMigrationConstant))
				return testCase.bookkeepingError
			})
			if testCase.bookkeepingError != nil {
				require.ErrorIs(subTest, runError, testCase.bookkeepingError)
			} else {
				require.NoError(subTest, runError)
			}

			installed, installedError := store.Installed(executionContext, targets.Application())
			require.NoError(subTest, installedError)
			require.ElementsMatch(subTest, testCase.expectedInstalled, installed)

			_, insertError := store.DB().ExecContext(executionContext, testInsertAuditRowConstant)
			if testCase.expectTable {
				require.NoError(subTest, insertError)
			} else {
				require.Error(subTest, insertError)
			}
		})
	}
}

func TestSQLStatementRunnerRequiresDatabase(testInstance *testing.T) {
	runner := engine.NewSQLStatementRunner(nil)
	runError := runner.RunStatements(context.Background(), testCreateAuditTableConstant, nil)
	require.ErrorIs(testInstance, runError, engine.ErrRunnerNotConfigured)
}
