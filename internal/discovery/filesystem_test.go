package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/migrix/internal/discovery"
	"github.com/temirov/migrix/internal/targets"
)

const (
	testMigrationsFolderConstant     = "migrations"
	testModulesDirectoryConstant     = "modules"
	testVendorDirectoryConstant      = "vendor"
	testPackagesDirectoryConstant    = "packages"
	testApplicationDirectoryConstant = "app"
	testMigrationFileNameConstant    = "001_create_users.sql"
	testReadmeFileNameConstant       = "README.md"
	testMigrationContentsConstant    = "-- +up\nSELECT 1;\n"
	testDirectoryPermissionsConstant = 0o755
	testFilePermissionsConstant      = 0o644
)

type catalogFixture struct {
	root    string
	catalog *discovery.FilesystemCatalog
}

func newCatalogFixture(testInstance *testing.T) catalogFixture {
	testInstance.Helper()
	root := testInstance.TempDir()

	writeMigration(testInstance, filepath.Join(root, testModulesDirectoryConstant, "blog", testMigrationsFolderConstant))
	writeMigration(testInstance, filepath.Join(root, testModulesDirectoryConstant, "auth", testMigrationsFolderConstant))
	writeMigration(testInstance, filepath.Join(root, testVendorDirectoryConstant, "auth", testMigrationsFolderConstant))
	writeMigration(testInstance, filepath.Join(root, testVendorDirectoryConstant, "shop", testMigrationsFolderConstant))
	writeMigration(testInstance, filepath.Join(root, testPackagesDirectoryConstant, "orm", testMigrationsFolderConstant))

	emptyModuleMigrations := filepath.Join(root, testModulesDirectoryConstant, "static", testMigrationsFolderConstant)
	require.NoError(testInstance, os.MkdirAll(emptyModuleMigrations, testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(emptyModuleMigrations, testReadmeFileNameConstant), []byte("notes"), testFilePermissionsConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(root, testPackagesDirectoryConstant, "email"), testDirectoryPermissionsConstant))

	catalog := discovery.NewFilesystemCatalog(discovery.CatalogConfiguration{
		ApplicationPath:  filepath.Join(root, testApplicationDirectoryConstant),
		ModulePaths:      []string{filepath.Join(root, testModulesDirectoryConstant), filepath.Join(root, testVendorDirectoryConstant), filepath.Join(root, "missing")},
		PackagePaths:     []string{filepath.Join(root, testPackagesDirectoryConstant)},
		MigrationsFolder: "/" + testMigrationsFolderConstant + "/",
	})
	return catalogFixture{root: root, catalog: catalog}
}

func writeMigration(testInstance *testing.T, directory string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, testMigrationFileNameConstant), []byte(testMigrationContentsConstant), testFilePermissionsConstant))
}

func TestFilesystemCatalogListsTargetsWithMigrations(testInstance *testing.T) {
	fixture := newCatalogFixture(testInstance)

	modules, moduleError := fixture.catalog.ListModulesWithMigrations()
	require.NoError(testInstance, moduleError)
	require.Equal(testInstance, []string{"auth", "blog", "shop"}, modules)

	packages, packageError := fixture.catalog.ListPackagesWithMigrations()
	require.NoError(testInstance, packageError)
	require.Equal(testInstance, []string{"orm"}, packages)
}

func TestFilesystemCatalogExistence(testInstance *testing.T) {
	fixture := newCatalogFixture(testInstance)

	testCases := []struct {
		name          string
		check         func(string) bool
		targetName    string
		expectedExist bool
	}{
		{name: "ModuleWithMigrations", check: fixture.catalog.ModuleExists, targetName: "blog", expectedExist: true},
		{name: "ModuleWithoutMigrations", check: fixture.catalog.ModuleExists, targetName: "static", expectedExist: true},
		{name: "ModuleInSecondPath", check: fixture.catalog.ModuleExists, targetName: "shop", expectedExist: true},
		{name: "MissingModule", check: fixture.catalog.ModuleExists, targetName: "ghost", expectedExist: false},
		{name: "TraversalRejected", check: fixture.catalog.ModuleExists, targetName: "../packages", expectedExist: false},
		{name: "PackageWithoutMigrations", check: fixture.catalog.PackageExists, targetName: "email", expectedExist: true},
		{name: "MissingPackage", check: fixture.catalog.PackageExists, targetName: "blog", expectedExist: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedExist, testCase.check(testCase.targetName))
		})
	}
}

func TestFilesystemCatalogMigrationDirectory(testInstance *testing.T) {
	fixture := newCatalogFixture(testInstance)

	applicationDirectory, applicationError := fixture.catalog.MigrationDirectory(targets.Application())
	require.NoError(testInstance, applicationError)
	require.Equal(testInstance, filepath.Join(fixture.root, testApplicationDirectoryConstant, testMigrationsFolderConstant), applicationDirectory)

	moduleDirectory, moduleError := fixture.catalog.MigrationDirectory(targets.Module("auth"))
	require.NoError(testInstance, moduleError)
	require.Equal(testInstance, filepath.Join(fixture.root, testModulesDirectoryConstant, "auth", testMigrationsFolderConstant), moduleDirectory)

	_, missingError := fixture.catalog.MigrationDirectory(targets.Package("ghost"))
	require.ErrorIs(testInstance, missingError, discovery.ErrTargetDirectoryNotFound)
}
