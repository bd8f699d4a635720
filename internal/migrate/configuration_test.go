package migrate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/migrix/internal/migrate"
	"github.com/temirov/migrix/internal/targets"
)

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	configuration := migrate.CommandConfiguration{
		Database: migrate.DatabaseConfiguration{Driver: " Postgres ", DSN: " postgres://localhost/app "},
		Migrations: migrate.MigrationsConfiguration{
			Folder:          " migrations ",
			ApplicationPath: " app ",
			ModulePaths:     []string{" modules ", "", "  "},
			PackagePaths:    []string{"packages"},
			AlwaysLoad: migrate.AlwaysLoadConfiguration{
				Modules:  []string{" auth ", ""},
				Packages: []string{"  "},
			},
		},
	}

	sanitized := configuration.Sanitize()
	require.Equal(testInstance, "postgres", sanitized.Database.Driver)
	require.Equal(testInstance, "postgres://localhost/app", sanitized.Database.DSN)
	require.Equal(testInstance, "migrations", sanitized.Migrations.Folder)
	require.Equal(testInstance, "app", sanitized.Migrations.ApplicationPath)
	require.Equal(testInstance, []string{"modules"}, sanitized.Migrations.ModulePaths)
	require.Equal(testInstance, []string{"packages"}, sanitized.Migrations.PackagePaths)
	require.Equal(testInstance, targets.AlwaysLoad{Modules: []string{"auth"}}, sanitized.AlwaysLoad())
}

func TestCommandConfigurationCurrentVersion(testInstance *testing.T) {
	configuration := migrate.DefaultCommandConfiguration()
	configuration.Migrations.CurrentVersions = migrate.CurrentVersionsConfiguration{
		App:     map[string]string{"default": "003"},
		Module:  map[string]string{"auth": " 201203171206 ", "blog": ""},
		Package: map[string]string{"orm": "2"},
	}

	testCases := []struct {
		name            string
		target          targets.Descriptor
		expectedVersion string
		expectedFound   bool
	}{
		{name: "Application", target: targets.Application(), expectedVersion: "003", expectedFound: true},
		{name: "ModuleCaseInsensitive", target: targets.Module("Auth"), expectedVersion: "201203171206", expectedFound: true},
		{name: "BlankVersion", target: targets.Module("blog"), expectedFound: false},
		{name: "UnknownModule", target: targets.Module("shop"), expectedFound: false},
		{name: "Package", target: targets.Package("orm"), expectedVersion: "2", expectedFound: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			version, found := configuration.CurrentVersion(testCase.target)
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedVersion, version)
		})
	}
}

func TestDefaultConfigurationValuesMatchDefaults(testInstance *testing.T) {
	defaults := migrate.DefaultCommandConfiguration()
	values := migrate.DefaultConfigurationValues()

	require.Equal(testInstance, defaults.Database.Driver, values["database.driver"])
	require.Equal(testInstance, defaults.Database.DSN, values["database.dsn"])
	require.Equal(testInstance, defaults.Migrations.Folder, values["migrations.folder"])
	require.Equal(testInstance, defaults.Migrations.ModulePaths, values["migrations.module_paths"])
}
