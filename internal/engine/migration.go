package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/temirov/migrix/internal/targets"
)

const (
	migrationFileExtensionConstant    = ".sql"
	migrationVersionSeparatorConstant = "_"
)

// Dependency names a migration of another target that must be installed first.
type Dependency struct {
	Target    targets.Descriptor
	Migration string
}

// Migration is one migration file of a target.
type Migration struct {
	ID           string
	Version      string
	UpScript     string
	DownScript   string
	Dependencies []Dependency
	// Missing marks an installed migration whose file is no longer available.
	Missing bool
}

// Result reports what an engine operation executed.
type Result struct {
	Executed  []string
	Postponed bool
}

// identifierVersion extracts the version prefix of a migration identifier ("003" of "003_add_index").
func identifierVersion(identifier string) string {
	version, _, _ := strings.Cut(identifier, migrationVersionSeparatorConstant)
	return version
}

// Matches reports whether token refers to the migration, either by full identifier or by version.
func (migration Migration) Matches(token string) bool {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return false
	}
	if trimmedToken == migration.ID || trimmedToken == migration.Version {
		return true
	}
	return isNumeric(trimmedToken) && isNumeric(migration.Version) && compareVersions(trimmedToken, migration.Version) == 0
}

// compareVersions orders numerically when both versions are numeric and lexically otherwise.
func compareVersions(left string, right string) int {
	leftNumber, leftError := strconv.ParseUint(left, 10, 64)
	rightNumber, rightError := strconv.ParseUint(right, 10, 64)
	if leftError == nil && rightError == nil {
		switch {
		case leftNumber < rightNumber:
			return -1
		case leftNumber > rightNumber:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(left, right)
}

func isNumeric(value string) bool {
	_, parseError := strconv.ParseUint(value, 10, 64)
	return parseError == nil
}

func sortMigrations(migrations []Migration) {
	sort.SliceStable(migrations, func(leftIndex int, rightIndex int) bool {
		comparison := compareVersions(migrations[leftIndex].Version, migrations[rightIndex].Version)
		if comparison != 0 {
			return comparison < 0
		}
		return migrations[leftIndex].ID < migrations[rightIndex].ID
	})
}
