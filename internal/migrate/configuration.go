package migrate

import (
	"strings"

	"github.com/temirov/migrix/internal/discovery"
	"github.com/temirov/migrix/internal/targets"
	pathutils "github.com/temirov/migrix/internal/utils/path"
	"github.com/temirov/migrix/internal/versionstore"
)

const (
	databaseDriverConfigKeyConstant     = "database.driver"
	databaseDSNConfigKeyConstant        = "database.dsn"
	migrationsFolderConfigKeyConstant   = "migrations.folder"
	applicationPathConfigKeyConstant    = "migrations.application_path"
	modulePathsConfigKeyConstant        = "migrations.module_paths"
	packagePathsConfigKeyConstant       = "migrations.package_paths"
	alwaysLoadModulesConfigKeyConstant  = "migrations.always_load.modules"
	alwaysLoadPackagesConfigKeyConstant = "migrations.always_load.packages"
	defaultDatabaseDSNConstant          = "migrix.db"
	defaultMigrationsFolderConstant     = "migrations"
	defaultApplicationPathConstant      = "app"
	defaultModulePathConstant           = "modules"
	defaultPackagePathConstant          = "packages"
)

var migrateConfigurationPathSanitizer = pathutils.NewSearchPathSanitizer()

// CommandConfiguration captures persisted configuration for the migrate command.
type CommandConfiguration struct {
	Database   DatabaseConfiguration   `mapstructure:"database"`
	Migrations MigrationsConfiguration `mapstructure:"migrations"`
}

// DatabaseConfiguration selects the database holding application tables and installed versions.
type DatabaseConfiguration struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// MigrationsConfiguration describes where migrations live and which targets are loaded by --installed.
type MigrationsConfiguration struct {
	Folder          string                       `mapstructure:"folder"`
	ApplicationPath string                       `mapstructure:"application_path"`
	ModulePaths     []string                     `mapstructure:"module_paths"`
	PackagePaths    []string                     `mapstructure:"package_paths"`
	AlwaysLoad      AlwaysLoadConfiguration      `mapstructure:"always_load"`
	CurrentVersions CurrentVersionsConfiguration `mapstructure:"current_versions"`
}

// AlwaysLoadConfiguration lists modules and packages included by --installed.
type AlwaysLoadConfiguration struct {
	Modules  []string `mapstructure:"modules"`
	Packages []string `mapstructure:"packages"`
}

// CurrentVersionsConfiguration maps target names to the version migrate:current moves them to.
// Names are matched case-insensitively because configuration keys are lower-cased on load.
type CurrentVersionsConfiguration struct {
	App     map[string]string `mapstructure:"app"`
	Module  map[string]string `mapstructure:"module"`
	Package map[string]string `mapstructure:"package"`
}

// DefaultCommandConfiguration returns baseline configuration values for the migrate command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Database: DatabaseConfiguration{
			Driver: versionstore.DriverSQLite,
			DSN:    defaultDatabaseDSNConstant,
		},
		Migrations: MigrationsConfiguration{
			Folder:          defaultMigrationsFolderConstant,
			ApplicationPath: defaultApplicationPathConstant,
			ModulePaths:     []string{defaultModulePathConstant},
			PackagePaths:    []string{defaultPackagePathConstant},
		},
	}
}

// DefaultConfigurationValues returns the defaults keyed the way the configuration loader expects them.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		databaseDriverConfigKeyConstant:     defaults.Database.Driver,
		databaseDSNConfigKeyConstant:        defaults.Database.DSN,
		migrationsFolderConfigKeyConstant:   defaults.Migrations.Folder,
		applicationPathConfigKeyConstant:    defaults.Migrations.ApplicationPath,
		modulePathsConfigKeyConstant:        defaults.Migrations.ModulePaths,
		packagePathsConfigKeyConstant:       defaults.Migrations.PackagePaths,
		alwaysLoadModulesConfigKeyConstant:  []string{},
		alwaysLoadPackagesConfigKeyConstant: []string{},
	}
}

// Sanitize trims configured values, expands "~" in paths, and removes empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Database.Driver = strings.ToLower(strings.TrimSpace(configuration.Database.Driver))
	sanitized.Database.DSN = strings.TrimSpace(configuration.Database.DSN)
	sanitized.Migrations.Folder = strings.TrimSpace(configuration.Migrations.Folder)
	sanitized.Migrations.ApplicationPath = migrateConfigurationPathSanitizer.SanitizePath(configuration.Migrations.ApplicationPath)
	sanitized.Migrations.ModulePaths = migrateConfigurationPathSanitizer.Sanitize(configuration.Migrations.ModulePaths)
	sanitized.Migrations.PackagePaths = migrateConfigurationPathSanitizer.Sanitize(configuration.Migrations.PackagePaths)
	sanitized.Migrations.AlwaysLoad.Modules = trimNames(configuration.Migrations.AlwaysLoad.Modules)
	sanitized.Migrations.AlwaysLoad.Packages = trimNames(configuration.Migrations.AlwaysLoad.Packages)
	return sanitized
}

// CatalogConfiguration converts the configuration into discovery settings.
func (configuration CommandConfiguration) CatalogConfiguration() discovery.CatalogConfiguration {
	return discovery.CatalogConfiguration{
		ApplicationPath:  configuration.Migrations.ApplicationPath,
		ModulePaths:      configuration.Migrations.ModulePaths,
		PackagePaths:     configuration.Migrations.PackagePaths,
		MigrationsFolder: configuration.Migrations.Folder,
	}
}

// AlwaysLoad converts the configuration into resolver settings.
func (configuration CommandConfiguration) AlwaysLoad() targets.AlwaysLoad {
	return targets.AlwaysLoad{
		Modules:  configuration.Migrations.AlwaysLoad.Modules,
		Packages: configuration.Migrations.AlwaysLoad.Packages,
	}
}

// CurrentVersion returns the configured current version of the target.
func (configuration CommandConfiguration) CurrentVersion(target targets.Descriptor) (string, bool) {
	var versions map[string]string
	switch target.Kind {
	case targets.KindApplication:
		versions = configuration.Migrations.CurrentVersions.App
	case targets.KindModule:
		versions = configuration.Migrations.CurrentVersions.Module
	case targets.KindPackage:
		versions = configuration.Migrations.CurrentVersions.Package
	}

	for name, version := range versions {
		if strings.EqualFold(name, target.Name) && len(strings.TrimSpace(version)) > 0 {
			return strings.TrimSpace(version), true
		}
	}
	return "", false
}

func trimNames(names []string) []string {
	var trimmed []string
	for _, name := range names {
		if trimmedName := strings.TrimSpace(name); len(trimmedName) > 0 {
			trimmed = append(trimmed, trimmedName)
		}
	}
	return trimmed
}
