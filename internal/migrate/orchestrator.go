package migrate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/ui"
)

const (
	versionRequiresSingleTargetMessageConstant = "an explicit version only accepts one target"
	migrationLoopMessageConstant               = "migration loop detected"
	engineMissingMessageConstant               = "migration engine not configured"
	registryMissingMessageConstant             = "target registry not configured"
	targetFailureTemplateConstant              = "%s %s: %w"
	versionGuardTemplateConstant               = "%w (%d targets selected)"
	runStartedMessageConstant                  = "migration run started"
	passStartedMessageConstant                 = "migration pass started"
	targetOutcomeMessageConstant               = "target processed"
	targetMissingMessageConstant               = "requested target does not exist"
	migrationLoopLogMessageConstant            = "migration loop detected"
	runCompletedMessageConstant                = "migration run completed"
	helpDisplayedMessageConstant               = "help displayed"
	runIdentifierFieldNameConstant             = "run_id"
	commandFieldNameConstant                   = "command"
	passFieldNameConstant                      = "pass"
	targetFieldNameConstant                    = "target"
	outcomeFieldNameConstant                   = "outcome"
	executedFieldNameConstant                  = "executed"
	targetCountFieldNameConstant               = "target_count"
	postponedTargetsFieldNameConstant          = "postponed_targets"
)

var (
	// ErrVersionRequiresSingleTarget is returned when an explicit version is combined with several targets.
	ErrVersionRequiresSingleTarget = errors.New(versionRequiresSingleTargetMessageConstant)
	// ErrMigrationLoop is returned when a pass makes no progress compared with the previous pass.
	ErrMigrationLoop = errors.New(migrationLoopMessageConstant)

	errEngineMissing   = errors.New(engineMissingMessageConstant)
	errRegistryMissing = errors.New(registryMissingMessageConstant)
)

// MigrationEngine performs migrations for single targets.
type MigrationEngine interface {
	ToVersion(executionContext context.Context, version string, target targets.Descriptor, catchup bool) (engine.Result, error)
	ToLatest(executionContext context.Context, target targets.Descriptor, catchup bool) (engine.Result, error)
	ToCurrentConfigured(executionContext context.Context, target targets.Descriptor) (engine.Result, error)
	StepUp(executionContext context.Context, version string, target targets.Descriptor) (engine.Result, error)
	StepDown(executionContext context.Context, version string, target targets.Descriptor) (engine.Result, error)
	Installed(executionContext context.Context, target targets.Descriptor) ([]string, error)
}

// Registry answers whether modules and packages exist.
type Registry interface {
	ModuleExists(name string) bool
	PackageExists(name string) bool
}

// Reporter prints human-readable progress lines.
type Reporter interface {
	Print(tone ui.Tone, message string)
}

// HelpPrinter displays the usage text.
type HelpPrinter func()

// OrchestratorDependencies describes the collaborators of an Orchestrator.
type OrchestratorDependencies struct {
	Logger        *zap.Logger
	Engine        MigrationEngine
	Registry      Registry
	Reporter      Reporter
	Help          HelpPrinter
	RunIdentifier string
}

// Orchestrator runs one command over a fixed selection until no target reports postponed migrations.
// Construct one per invocation.
type Orchestrator struct {
	logger   *zap.Logger
	engine   MigrationEngine
	registry Registry
	reporter Reporter
	help     HelpPrinter
	messages ui.MigrationMessages
}

// NewOrchestrator constructs an Orchestrator with the provided dependencies.
func NewOrchestrator(dependencies OrchestratorDependencies) (*Orchestrator, error) {
	if dependencies.Engine == nil {
		return nil, errEngineMissing
	}
	if dependencies.Registry == nil {
		return nil, errRegistryMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(dependencies.RunIdentifier) > 0 {
		logger = logger.With(zap.String(runIdentifierFieldNameConstant, dependencies.RunIdentifier))
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = ui.NewConsoleReporter(nil)
	}
	help := dependencies.Help
	if help == nil {
		help = func() {}
	}

	return &Orchestrator{
		logger:   logger,
		engine:   dependencies.Engine,
		registry: dependencies.Registry,
		reporter: reporter,
		help:     help,
	}, nil
}

// passState is the mutable state of one run. It never outlives Run.
type passState struct {
	pass   int
	record ExecutionRecord
}

// Run executes command for every target of selection, repeating passes while
// targets report postponed migrations.
func (orchestrator *Orchestrator) Run(executionContext context.Context, command Command, selection targets.Selection, options RunOptions) (RunReport, error) {
	report := RunReport{Command: command}

	handler, known := orchestrator.handlerFor(command)
	if !known {
		orchestrator.logger.Info(helpDisplayedMessageConstant)
		orchestrator.help()
		report.HelpDisplayed = true
		return report, nil
	}

	targetCount := selection.Count()
	if command.guardsExplicitVersion() && options.Version.Mode == VersionExplicit && targetCount > 1 {
		orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.VersionSingleTarget())
		return report, fmt.Errorf(versionGuardTemplateConstant, ErrVersionRequiresSingleTarget, targetCount)
	}

	orchestrator.logger.Info(
		runStartedMessageConstant,
		zap.String(commandFieldNameConstant, command.String()),
		zap.Int(targetCountFieldNameConstant, targetCount),
	)

	state := passState{}
	for {
		previousRecord := state.record
		state.record = ExecutionRecord{}
		state.pass++
		report.Passes = state.pass

		orchestrator.logger.Debug(passStartedMessageConstant, zap.Int(passFieldNameConstant, state.pass))

		for _, target := range selection.Descriptors() {
			outcome, handlerError := orchestrator.invoke(executionContext, handler, target, options)
			if handlerError != nil {
				return report, fmt.Errorf(targetFailureTemplateConstant, command.String(), target.Label(), handlerError)
			}
			outcome.Pass = state.pass
			report.Outcomes = append(report.Outcomes, outcome)

			if outcome.Kind == OutcomePostponed {
				state.record[target.Key()] = append([]string{}, outcome.Executed...)
			}
			orchestrator.logger.Info(
				targetOutcomeMessageConstant,
				zap.Int(passFieldNameConstant, state.pass),
				zap.String(targetFieldNameConstant, target.Label()),
				zap.String(outcomeFieldNameConstant, string(outcome.Kind)),
				zap.Strings(executedFieldNameConstant, outcome.Executed),
			)
		}

		if len(state.record) == 0 {
			orchestrator.logger.Info(runCompletedMessageConstant, zap.Int(passFieldNameConstant, state.pass))
			return report, nil
		}

		if state.record.Equal(previousRecord) {
			orchestrator.logger.Error(
				migrationLoopLogMessageConstant,
				zap.Int(passFieldNameConstant, state.pass),
				zap.Int(postponedTargetsFieldNameConstant, len(state.record)),
			)
			orchestrator.reporter.Print(ui.ToneFailure, orchestrator.messages.MigrationLoop())
			return report, ErrMigrationLoop
		}
	}
}

// invoke checks that modules and packages exist before handing them to the handler.
func (orchestrator *Orchestrator) invoke(executionContext context.Context, handler commandHandler, target targets.Descriptor, options RunOptions) (Outcome, error) {
	switch target.Kind {
	case targets.KindModule:
		if !orchestrator.registry.ModuleExists(target.Name) {
			return orchestrator.reportMissingTarget(target, orchestrator.messages.MissingModule(target.Name)), nil
		}
	case targets.KindPackage:
		if !orchestrator.registry.PackageExists(target.Name) {
			return orchestrator.reportMissingTarget(target, orchestrator.messages.MissingPackage(target.Name)), nil
		}
	}
	return handler(orchestrator, executionContext, target, options)
}

func (orchestrator *Orchestrator) reportMissingTarget(target targets.Descriptor, message string) Outcome {
	orchestrator.logger.Warn(targetMissingMessageConstant, zap.String(targetFieldNameConstant, target.Label()))
	orchestrator.reporter.Print(ui.ToneFailure, message)
	return Outcome{Target: target, Kind: OutcomeTargetNotFound}
}
