package engine

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/migrix/internal/targets"
)

const (
	manifestFileNameConstant                = "manifest.yaml"
	upSectionMarkerConstant                 = "-- +up"
	downSectionMarkerConstant               = "-- +down"
	locateDirectoryTemplateConstant         = "locate migrations for %s: %w"
	readDirectoryTemplateConstant           = "read migrations for %s: %w"
	readMigrationTemplateConstant           = "read migration %s: %w"
	readManifestTemplateConstant            = "read manifest for %s: %w"
	invalidDependencyTemplateConstant       = "manifest for %s: dependency of %s: %w"
	unknownManifestEntryTemplateConstant    = "manifest for %s references unknown migration %q"
	emptyDependencyMigrationMessageConstant = "dependency migration must not be empty"
	maximumMigrationLineBytesConstant       = 16 * 1024 * 1024
)

// Locator resolves the folder holding the migration files of a target.
type Locator interface {
	MigrationDirectory(target targets.Descriptor) (string, error)
}

// Source loads the available migrations of a target in ascending order.
type Source interface {
	Migrations(target targets.Descriptor) ([]Migration, error)
}

// FileSource reads "<version>_<description>.sql" files and an optional manifest.yaml.
type FileSource struct {
	locator Locator
}

// NewFileSource constructs a FileSource backed by the locator.
func NewFileSource(locator Locator) *FileSource {
	return &FileSource{locator: locator}
}

type manifestDocument struct {
	Dependencies map[string][]manifestDependency `yaml:"dependencies"`
}

type manifestDependency struct {
	Target    string `yaml:"target"`
	Migration string `yaml:"migration"`
}

// Migrations implements Source. A missing migrations folder yields no migrations.
func (source *FileSource) Migrations(target targets.Descriptor) ([]Migration, error) {
	directory, locateError := source.locator.MigrationDirectory(target)
	if locateError != nil {
		return nil, fmt.Errorf(locateDirectoryTemplateConstant, target.Label(), locateError)
	}

	entries, readError := os.ReadDir(directory)
	if errors.Is(readError, os.ErrNotExist) {
		return nil, nil
	}
	if readError != nil {
		return nil, fmt.Errorf(readDirectoryTemplateConstant, target.Label(), readError)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != migrationFileExtensionConstant {
			continue
		}
		migration, parseError := readMigrationFile(filepath.Join(directory, entry.Name()))
		if parseError != nil {
			return nil, parseError
		}
		migrations = append(migrations, migration)
	}

	if manifestError := applyManifest(filepath.Join(directory, manifestFileNameConstant), target, migrations); manifestError != nil {
		return nil, manifestError
	}

	sortMigrations(migrations)
	return migrations, nil
}

func readMigrationFile(path string) (Migration, error) {
	file, openError := os.Open(path)
	if openError != nil {
		return Migration{}, fmt.Errorf(readMigrationTemplateConstant, path, openError)
	}
	defer file.Close()

	identifier := strings.TrimSuffix(filepath.Base(path), migrationFileExtensionConstant)
	migration := Migration{ID: identifier, Version: identifierVersion(identifier)}

	var upBuilder strings.Builder
	var downBuilder strings.Builder
	currentSection := &upBuilder

	scanner := bufio.NewScanner(file)
	scanner.Buffer(nil, maximumMigrationLineBytesConstant)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case upSectionMarkerConstant:
			currentSection = &upBuilder
			continue
		case downSectionMarkerConstant:
			currentSection = &downBuilder
			continue
		}
		currentSection.WriteString(line)
		currentSection.WriteByte('\n')
	}
	if scanError := scanner.Err(); scanError != nil {
		return Migration{}, fmt.Errorf(readMigrationTemplateConstant, path, scanError)
	}

	migration.UpScript = strings.TrimSpace(upBuilder.String())
	migration.DownScript = strings.TrimSpace(downBuilder.String())
	return migration, nil
}

func applyManifest(path string, target targets.Descriptor, migrations []Migration) error {
	contents, readError := os.ReadFile(path)
	if errors.Is(readError, os.ErrNotExist) {
		return nil
	}
	if readError != nil {
		return fmt.Errorf(readManifestTemplateConstant, target.Label(), readError)
	}

	var document manifestDocument
	if decodeError := yaml.Unmarshal(contents, &document); decodeError != nil {
		return fmt.Errorf(readManifestTemplateConstant, target.Label(), decodeError)
	}

	for reference, declaredDependencies := range document.Dependencies {
		migrationIndex := -1
		for index := range migrations {
			if migrations[index].Matches(reference) {
				migrationIndex = index
				break
			}
		}
		if migrationIndex < 0 {
			return fmt.Errorf(unknownManifestEntryTemplateConstant, target.Label(), reference)
		}

		for _, declaredDependency := range declaredDependencies {
			dependencyTarget, parseError := targets.ParseDescriptor(declaredDependency.Target)
			if parseError != nil {
				return fmt.Errorf(invalidDependencyTemplateConstant, target.Label(), reference, parseError)
			}
			dependencyMigration := strings.TrimSpace(declaredDependency.Migration)
			if len(dependencyMigration) == 0 {
				return fmt.Errorf(invalidDependencyTemplateConstant, target.Label(), reference, errors.New(emptyDependencyMigrationMessageConstant))
			}
			migrations[migrationIndex].Dependencies = append(migrations[migrationIndex].Dependencies, Dependency{
				Target:    dependencyTarget,
				Migration: dependencyMigration,
			})
		}
	}
	return nil
}
