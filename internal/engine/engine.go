package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/versionstore"
)

const (
	targetFieldNameConstant              = "target"
	migrationFieldNameConstant           = "migration"
	dependencyTargetFieldNameConstant    = "dependency_target"
	dependencyMigrationFieldNameConstant = "dependency_migration"
	applyingMigrationMessageConstant     = "applying migration"
	revertingMigrationMessageConstant    = "reverting migration"
	postponingMigrationMessageConstant   = "postponing migration until dependency is installed"
	sourceMissingMessageConstant         = "migration source not configured"
	storeMissingMessageConstant          = "version store not configured"
	runnerMissingMessageConstant         = "statement runner not configured"
	outOfSequenceMessageConstant         = "out-of-sequence migrations detected, rerun with --catchup to apply them"
	migrationFileMissingMessageConstant  = "installed migration file is missing"
	outOfSequenceTemplateConstant        = "%w: %s: %s"
	migrationFileMissingTemplateConstant = "%w: %s: %s"
	loadMigrationsTemplateConstant       = "load migrations for %s: %w"
	loadInstalledTemplateConstant        = "load installed migrations for %s: %w"
	applyMigrationTemplateConstant       = "apply %s for %s: %w"
	revertMigrationTemplateConstant      = "revert %s for %s: %w"
	identifierListSeparatorConstant      = ", "
)

var (
	// ErrOutOfSequence indicates pending migrations older than the newest installed one.
	ErrOutOfSequence = errors.New(outOfSequenceMessageConstant)
	// ErrMigrationFileMissing indicates an installed migration cannot be reverted because its file is gone.
	ErrMigrationFileMissing = errors.New(migrationFileMissingMessageConstant)

	errSourceMissing = errors.New(sourceMissingMessageConstant)
	errStoreMissing  = errors.New(storeMissingMessageConstant)
	errRunnerMissing = errors.New(runnerMissingMessageConstant)
)

// CurrentVersionProvider returns the configured "current" version of a target.
type CurrentVersionProvider func(target targets.Descriptor) (string, bool)

// Dependencies describes the collaborators of an Engine.
type Dependencies struct {
	Logger          *zap.Logger
	Source          Source
	Store           versionstore.Store
	Runner          StatementRunner
	CurrentVersions CurrentVersionProvider
}

// Engine applies and reverts migrations of single targets.
type Engine struct {
	logger          *zap.Logger
	source          Source
	store           versionstore.Store
	runner          StatementRunner
	currentVersions CurrentVersionProvider
}

// NewEngine constructs an Engine with the provided dependencies.
func NewEngine(dependencies Dependencies) (*Engine, error) {
	if dependencies.Source == nil {
		return nil, errSourceMissing
	}
	if dependencies.Store == nil {
		return nil, errStoreMissing
	}
	if dependencies.Runner == nil {
		return nil, errRunnerMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currentVersions := dependencies.CurrentVersions
	if currentVersions == nil {
		currentVersions = func(targets.Descriptor) (string, bool) { return "", false }
	}

	return &Engine{
		logger:          logger,
		source:          dependencies.Source,
		store:           dependencies.Store,
		runner:          dependencies.Runner,
		currentVersions: currentVersions,
	}, nil
}

// timeline is the ordered view of a target's available and installed migrations.
type timeline struct {
	migrations []Migration
	installed  map[string]struct{}
	// newestInstalled is the position of the newest installed migration, or -1.
	newestInstalled int
}

func (view timeline) isInstalled(position int) bool {
	_, installed := view.installed[view.migrations[position].ID]
	return installed
}

func (view timeline) find(token string) int {
	for position := range view.migrations {
		if !view.migrations[position].Missing && view.migrations[position].Matches(token) {
			return position
		}
	}
	return -1
}

// Installed returns the recorded migrations of the target.
func (engine *Engine) Installed(executionContext context.Context, target targets.Descriptor) ([]string, error) {
	installed, installedError := engine.store.Installed(executionContext, target)
	if installedError != nil {
		return nil, fmt.Errorf(loadInstalledTemplateConstant, target.Label(), installedError)
	}
	return installed, nil
}

// ToLatest applies every pending migration. Pending migrations older than the
// newest installed one require catchup.
func (engine *Engine) ToLatest(executionContext context.Context, target targets.Descriptor, catchup bool) (Result, error) {
	view, viewError := engine.loadTimeline(executionContext, target)
	if viewError != nil {
		return Result{}, viewError
	}
	return engine.applyRange(executionContext, target, view, 0, len(view.migrations)-1, catchup)
}

// ToVersion migrates up to and including the migration matching version, or
// reverts every installed migration newer than it. An unknown version executes nothing.
func (engine *Engine) ToVersion(executionContext context.Context, version string, target targets.Descriptor, catchup bool) (Result, error) {
	view, viewError := engine.loadTimeline(executionContext, target)
	if viewError != nil {
		return Result{}, viewError
	}

	position := view.find(version)
	if position < 0 {
		return Result{}, nil
	}
	if position < view.newestInstalled {
		return engine.revertAbove(executionContext, target, view, position)
	}
	return engine.applyRange(executionContext, target, view, 0, position, catchup)
}

// ToCurrentConfigured migrates to the configured current version of the target.
func (engine *Engine) ToCurrentConfigured(executionContext context.Context, target targets.Descriptor) (Result, error) {
	version, configured := engine.currentVersions(target)
	if !configured || len(strings.TrimSpace(version)) == 0 {
		return Result{}, nil
	}
	return engine.ToVersion(executionContext, version, target, false)
}

// StepUp applies the next pending migration, or every pending migration up to version when given.
func (engine *Engine) StepUp(executionContext context.Context, version string, target targets.Descriptor) (Result, error) {
	view, viewError := engine.loadTimeline(executionContext, target)
	if viewError != nil {
		return Result{}, viewError
	}

	firstCandidate := view.newestInstalled + 1
	if len(strings.TrimSpace(version)) == 0 {
		for position := firstCandidate; position < len(view.migrations); position++ {
			if !view.isInstalled(position) {
				return engine.applyRange(executionContext, target, view, position, position, false)
			}
		}
		return Result{}, nil
	}

	position := view.find(version)
	if position < firstCandidate {
		return Result{}, nil
	}
	return engine.applyRange(executionContext, target, view, firstCandidate, position, false)
}

// StepDown reverts the newest installed migration, or every installed migration newer than version when given.
func (engine *Engine) StepDown(executionContext context.Context, version string, target targets.Descriptor) (Result, error) {
	view, viewError := engine.loadTimeline(executionContext, target)
	if viewError != nil {
		return Result{}, viewError
	}
	if view.newestInstalled < 0 {
		return Result{}, nil
	}

	if len(strings.TrimSpace(version)) == 0 {
		return engine.revertAbove(executionContext, target, view, view.newestInstalled-1)
	}

	position := view.find(version)
	if position < 0 {
		return Result{}, nil
	}
	return engine.revertAbove(executionContext, target, view, position)
}

func (engine *Engine) loadTimeline(executionContext context.Context, target targets.Descriptor) (timeline, error) {
	available, sourceError := engine.source.Migrations(target)
	if sourceError != nil {
		return timeline{}, fmt.Errorf(loadMigrationsTemplateConstant, target.Label(), sourceError)
	}
	installedIdentifiers, installedError := engine.Installed(executionContext, target)
	if installedError != nil {
		return timeline{}, installedError
	}

	view := timeline{
		migrations:      make([]Migration, 0, len(available)+len(installedIdentifiers)),
		installed:       make(map[string]struct{}, len(installedIdentifiers)),
		newestInstalled: -1,
	}
	view.migrations = append(view.migrations, available...)

	availableIdentifiers := make(map[string]struct{}, len(available))
	for _, migration := range available {
		availableIdentifiers[migration.ID] = struct{}{}
	}
	for _, identifier := range installedIdentifiers {
		view.installed[identifier] = struct{}{}
		if _, exists := availableIdentifiers[identifier]; !exists {
			view.migrations = append(view.migrations, Migration{ID: identifier, Version: identifierVersion(identifier), Missing: true})
		}
	}

	sortMigrations(view.migrations)
	for position := range view.migrations {
		if view.isInstalled(position) {
			view.newestInstalled = position
		}
	}
	return view, nil
}

// applyRange installs the pending migrations between first and last inclusive.
// Execution stops with Postponed set at the first migration whose dependencies are not installed.
func (engine *Engine) applyRange(executionContext context.Context, target targets.Descriptor, view timeline, first int, last int, catchup bool) (Result, error) {
	var pending []Migration
	var outOfSequence []string
	for position := first; position <= last && position < len(view.migrations); position++ {
		if view.isInstalled(position) || view.migrations[position].Missing {
			continue
		}
		if position < view.newestInstalled {
			outOfSequence = append(outOfSequence, view.migrations[position].ID)
		}
		pending = append(pending, view.migrations[position])
	}
	if len(outOfSequence) > 0 && !catchup {
		return Result{}, fmt.Errorf(outOfSequenceTemplateConstant, ErrOutOfSequence, target.Label(), strings.Join(outOfSequence, identifierListSeparatorConstant))
	}

	result := Result{}
	for _, migration := range pending {
		unmetDependency, dependencyFound, dependencyError := engine.firstUnmetDependency(executionContext, migration)
		if dependencyError != nil {
			return result, dependencyError
		}
		if dependencyFound {
			engine.logger.Info(
				postponingMigrationMessageConstant,
				zap.String(targetFieldNameConstant, target.Label()),
				zap.String(migrationFieldNameConstant, migration.ID),
				zap.String(dependencyTargetFieldNameConstant, unmetDependency.Target.Label()),
				zap.String(dependencyMigrationFieldNameConstant, unmetDependency.Migration),
			)
			result.Postponed = true
			return result, nil
		}

		engine.logger.Debug(applyingMigrationMessageConstant, zap.String(targetFieldNameConstant, target.Label()), zap.String(migrationFieldNameConstant, migration.ID))
		record := func(transactionContext context.Context) error {
			return engine.store.Record(transactionContext, target, migration.ID)
		}
		if runError := engine.runner.RunStatements(executionContext, migration.UpScript, record); runError != nil {
			return result, fmt.Errorf(applyMigrationTemplateConstant, migration.ID, target.Label(), runError)
		}
		result.Executed = append(result.Executed, migration.ID)
	}
	return result, nil
}

// revertAbove reverts installed migrations positioned after floor, newest first.
func (engine *Engine) revertAbove(executionContext context.Context, target targets.Descriptor, view timeline, floor int) (Result, error) {
	result := Result{}
	for position := len(view.migrations) - 1; position > floor; position-- {
		if !view.isInstalled(position) {
			continue
		}
		migration := view.migrations[position]
		if migration.Missing {
			return result, fmt.Errorf(migrationFileMissingTemplateConstant, ErrMigrationFileMissing, target.Label(), migration.ID)
		}

		engine.logger.Debug(revertingMigrationMessageConstant, zap.String(targetFieldNameConstant, target.Label()), zap.String(migrationFieldNameConstant, migration.ID))
		remove := func(transactionContext context.Context) error {
			return engine.store.Remove(transactionContext, target, migration.ID)
		}
		if runError := engine.runner.RunStatements(executionContext, migration.DownScript, remove); runError != nil {
			return result, fmt.Errorf(revertMigrationTemplateConstant, migration.ID, target.Label(), runError)
		}
		result.Executed = append(result.Executed, migration.ID)
	}
	return result, nil
}

func (engine *Engine) firstUnmetDependency(executionContext context.Context, migration Migration) (Dependency, bool, error) {
	for _, dependency := range migration.Dependencies {
		installed, installedError := engine.Installed(executionContext, dependency.Target)
		if installedError != nil {
			return Dependency{}, false, installedError
		}
		satisfied := false
		for _, identifier := range installed {
			installedMigration := Migration{ID: identifier, Version: identifierVersion(identifier)}
			if installedMigration.Matches(dependency.Migration) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return dependency, true, nil
		}
	}
	return Dependency{}, false, nil
}
