package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/migrix/internal/targets"
	pathutils "github.com/temirov/migrix/internal/utils/path"
)

const (
	migrationFilePatternConstant            = "*.sql"
	defaultMigrationsFolderConstant         = "migrations"
	targetDirectoryNotFoundMessageConstant  = "target directory not found"
	targetDirectoryNotFoundTemplateConstant = "%w: %s"
	listDirectoryErrorTemplateConstant      = "unable to list %s: %w"
)

// ErrTargetDirectoryNotFound indicates no configured search path contains the requested target.
var ErrTargetDirectoryNotFound = errors.New(targetDirectoryNotFoundMessageConstant)

// CatalogConfiguration describes where targets and their migration folders live.
type CatalogConfiguration struct {
	ApplicationPath  string
	ModulePaths      []string
	PackagePaths     []string
	MigrationsFolder string
}

// FilesystemCatalog answers discovery and existence questions from the filesystem.
type FilesystemCatalog struct {
	applicationPath  string
	modulePaths      []string
	packagePaths     []string
	migrationsFolder string
}

// NewFilesystemCatalog constructs a catalog from configuration. Search paths have "~" expanded.
func NewFilesystemCatalog(configuration CatalogConfiguration) *FilesystemCatalog {
	sanitizer := pathutils.NewSearchPathSanitizer()

	migrationsFolder := strings.Trim(strings.TrimSpace(configuration.MigrationsFolder), `\/`)
	if len(migrationsFolder) == 0 {
		migrationsFolder = defaultMigrationsFolderConstant
	}

	return &FilesystemCatalog{
		applicationPath:  sanitizer.SanitizePath(configuration.ApplicationPath),
		modulePaths:      sanitizer.Sanitize(configuration.ModulePaths),
		packagePaths:     sanitizer.Sanitize(configuration.PackagePaths),
		migrationsFolder: migrationsFolder,
	}
}

// ListModulesWithMigrations returns module names whose migrations folder holds at least one migration file.
func (catalog *FilesystemCatalog) ListModulesWithMigrations() ([]string, error) {
	return catalog.listWithMigrations(catalog.modulePaths)
}

// ListPackagesWithMigrations returns package names whose migrations folder holds at least one migration file.
func (catalog *FilesystemCatalog) ListPackagesWithMigrations() ([]string, error) {
	return catalog.listWithMigrations(catalog.packagePaths)
}

// ModuleExists reports whether a module directory with the given name exists.
func (catalog *FilesystemCatalog) ModuleExists(name string) bool {
	_, found := findTargetDirectory(catalog.modulePaths, name)
	return found
}

// PackageExists reports whether a package directory with the given name exists.
func (catalog *FilesystemCatalog) PackageExists(name string) bool {
	_, found := findTargetDirectory(catalog.packagePaths, name)
	return found
}

// MigrationDirectory returns the folder holding the migration files of the target.
func (catalog *FilesystemCatalog) MigrationDirectory(target targets.Descriptor) (string, error) {
	switch target.Kind {
	case targets.KindApplication:
		return filepath.Join(catalog.applicationPath, catalog.migrationsFolder), nil
	case targets.KindModule:
		return catalog.targetMigrationDirectory(catalog.modulePaths, target)
	case targets.KindPackage:
		return catalog.targetMigrationDirectory(catalog.packagePaths, target)
	default:
		return "", fmt.Errorf(targetDirectoryNotFoundTemplateConstant, ErrTargetDirectoryNotFound, target.Label())
	}
}

func (catalog *FilesystemCatalog) targetMigrationDirectory(searchPaths []string, target targets.Descriptor) (string, error) {
	targetDirectory, found := findTargetDirectory(searchPaths, target.Name)
	if !found {
		return "", fmt.Errorf(targetDirectoryNotFoundTemplateConstant, ErrTargetDirectoryNotFound, target.Label())
	}
	return filepath.Join(targetDirectory, catalog.migrationsFolder), nil
}

func (catalog *FilesystemCatalog) listWithMigrations(searchPaths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string

	for _, searchPath := range searchPaths {
		entries, readError := os.ReadDir(searchPath)
		if errors.Is(readError, os.ErrNotExist) {
			continue
		}
		if readError != nil {
			return nil, fmt.Errorf(listDirectoryErrorTemplateConstant, searchPath, readError)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, alreadySeen := seen[entry.Name()]; alreadySeen {
				continue
			}

			pattern := filepath.Join(searchPath, entry.Name(), catalog.migrationsFolder, migrationFilePatternConstant)
			matches, globError := filepath.Glob(pattern)
			if globError != nil || len(matches) == 0 {
				continue
			}

			seen[entry.Name()] = struct{}{}
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

func findTargetDirectory(searchPaths []string, name string) (string, bool) {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 || trimmedName == "." || trimmedName == ".." || strings.ContainsAny(trimmedName, `/\`) {
		return "", false
	}

	for _, searchPath := range searchPaths {
		candidate := filepath.Join(searchPath, trimmedName)
		information, statError := os.Stat(candidate)
		if statError == nil && information.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
