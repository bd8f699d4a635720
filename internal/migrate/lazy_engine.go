package migrate

import (
	"context"
	"fmt"

	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
)

type engineOpener func() (MigrationEngine, func() error, error)

// lazyEngine opens the underlying engine on first use, so runs that only print
// help or fail validation never touch the database.
type lazyEngine struct {
	open      engineOpener
	engine    MigrationEngine
	closer    func() error
	openError error
	attempted bool
}

func newLazyEngine(open engineOpener) *lazyEngine {
	return &lazyEngine{open: open}
}

func (lazy *lazyEngine) resolve() (MigrationEngine, error) {
	if !lazy.attempted {
		lazy.attempted = true
		lazy.engine, lazy.closer, lazy.openError = lazy.open()
		if lazy.openError != nil {
			lazy.openError = fmt.Errorf(engineCreationErrorTemplateConstant, lazy.openError)
		}
	}
	return lazy.engine, lazy.openError
}

// Close releases the underlying engine when it was opened.
func (lazy *lazyEngine) Close() error {
	if lazy.closer == nil {
		return nil
	}
	return lazy.closer()
}

func (lazy *lazyEngine) ToVersion(executionContext context.Context, version string, target targets.Descriptor, catchup bool) (engine.Result, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return engine.Result{}, resolveError
	}
	return migrationEngine.ToVersion(executionContext, version, target, catchup)
}

func (lazy *lazyEngine) ToLatest(executionContext context.Context, target targets.Descriptor, catchup bool) (engine.Result, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return engine.Result{}, resolveError
	}
	return migrationEngine.ToLatest(executionContext, target, catchup)
}

func (lazy *lazyEngine) ToCurrentConfigured(executionContext context.Context, target targets.Descriptor) (engine.Result, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return engine.Result{}, resolveError
	}
	return migrationEngine.ToCurrentConfigured(executionContext, target)
}

func (lazy *lazyEngine) StepUp(executionContext context.Context, version string, target targets.Descriptor) (engine.Result, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return engine.Result{}, resolveError
	}
	return migrationEngine.StepUp(executionContext, version, target)
}

func (lazy *lazyEngine) StepDown(executionContext context.Context, version string, target targets.Descriptor) (engine.Result, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return engine.Result{}, resolveError
	}
	return migrationEngine.StepDown(executionContext, version, target)
}

func (lazy *lazyEngine) Installed(executionContext context.Context, target targets.Descriptor) ([]string, error) {
	migrationEngine, resolveError := lazy.resolve()
	if resolveError != nil {
		return nil, resolveError
	}
	return migrationEngine.Installed(executionContext, target)
}
