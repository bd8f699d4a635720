package migrate

import (
	"context"

	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/ui"
)

type commandHandler func(orchestrator *Orchestrator, executionContext context.Context, target targets.Descriptor, options RunOptions) (Outcome, error)

func (orchestrator *Orchestrator) handlerFor(command Command) (commandHandler, bool) {
	switch command {
	case CommandRun:
		return (*Orchestrator).handleRun, true
	case CommandCurrent:
		return (*Orchestrator).handleCurrent, true
	case CommandUp:
		return (*Orchestrator).handleUp, true
	case CommandDown:
		return (*Orchestrator).handleDown, true
	default:
		return nil, false
	}
}

// handleRun migrates to the latest version, or to the explicit version, or lists installed migrations.
func (orchestrator *Orchestrator) handleRun(executionContext context.Context, target targets.Descriptor, options RunOptions) (Outcome, error) {
	label := target.Label()

	if options.Version.Mode == VersionShow {
		installed, installedError := orchestrator.engine.Installed(executionContext, target)
		if installedError != nil {
			return Outcome{}, installedError
		}
		orchestrator.reporter.Print(ui.ToneSuccess, orchestrator.messages.InstalledHeader(label))
		for _, identifier := range installed {
			orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.ListEntry(identifier))
		}
		return Outcome{Target: target, Kind: OutcomeNoOp}, nil
	}

	var result engine.Result
	var engineError error
	if options.Version.Mode == VersionExplicit {
		result, engineError = orchestrator.engine.ToVersion(executionContext, options.Version.Token, target, options.Catchup)
	} else {
		result, engineError = orchestrator.engine.ToLatest(executionContext, target, options.Catchup)
	}
	if engineError != nil {
		return Outcome{}, engineError
	}

	outcome := classify(target, result)
	switch outcome.Kind {
	case OutcomePostponed:
		orchestrator.reporter.Print(ui.ToneNotice, orchestrator.messages.Postponed(label))
	case OutcomeNoOp:
		if options.Version.Mode == VersionExplicit {
			orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.NoMigrationsFound(label))
		} else {
			orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.AlreadyLatest(label))
		}
	default:
		orchestrator.reporter.Print(ui.ToneSuccess, orchestrator.messages.PerformedHeader(label))
		for _, identifier := range result.Executed {
			orchestrator.reporter.Print(ui.TonePlain, identifier)
		}
	}
	return outcome, nil
}

// handleCurrent migrates to the configured current version. It does not accept a version.
func (orchestrator *Orchestrator) handleCurrent(executionContext context.Context, target targets.Descriptor, options RunOptions) (Outcome, error) {
	if options.Version.Mode != VersionUnset {
		orchestrator.reporter.Print(ui.ToneFailure, orchestrator.messages.CurrentRejectsVersion())
		return Outcome{Target: target, Kind: OutcomeInvalidInvocation}, nil
	}

	result, engineError := orchestrator.engine.ToCurrentConfigured(executionContext, target)
	if engineError != nil {
		return Outcome{}, engineError
	}
	return orchestrator.reportApplied(target, result, orchestrator.messages.AlreadyCurrent(target.Label())), nil
}

// handleUp applies the next migration, or every migration up to the explicit version.
func (orchestrator *Orchestrator) handleUp(executionContext context.Context, target targets.Descriptor, options RunOptions) (Outcome, error) {
	result, engineError := orchestrator.engine.StepUp(executionContext, options.Version.explicitToken(), target)
	if engineError != nil {
		return Outcome{}, engineError
	}
	return orchestrator.reportApplied(target, result, orchestrator.messages.AlreadyLatestVersion(target.Label())), nil
}

// handleDown reverts the newest migration, or every migration above the explicit version.
func (orchestrator *Orchestrator) handleDown(executionContext context.Context, target targets.Descriptor, options RunOptions) (Outcome, error) {
	result, engineError := orchestrator.engine.StepDown(executionContext, options.Version.explicitToken(), target)
	if engineError != nil {
		return Outcome{}, engineError
	}

	label := target.Label()
	outcome := classifyStep(target, result)
	if outcome.Kind == OutcomeNoOp {
		orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.NothingToRevert(label))
		return outcome, nil
	}
	orchestrator.reporter.Print(ui.ToneSuccess, orchestrator.messages.RevertedHeader(label))
	for _, identifier := range result.Executed {
		orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.ListEntry(identifier))
	}
	return outcome, nil
}

// reportApplied prints the outcome of current and up. Step commands never
// request another pass, so a postponed result is only reported.
func (orchestrator *Orchestrator) reportApplied(target targets.Descriptor, result engine.Result, noOpMessage string) Outcome {
	label := target.Label()
	outcome := classifyStep(target, result)

	if len(result.Executed) > 0 {
		orchestrator.reporter.Print(ui.ToneSuccess, orchestrator.messages.NewlyInstalledHeader(label))
		for _, identifier := range result.Executed {
			orchestrator.reporter.Print(ui.TonePlain, orchestrator.messages.ListEntry(identifier))
		}
	}
	switch {
	case result.Postponed:
		orchestrator.reporter.Print(ui.ToneNotice, orchestrator.messages.Postponed(label))
	case outcome.Kind == OutcomeNoOp:
		orchestrator.reporter.Print(ui.TonePlain, noOpMessage)
	}
	return outcome
}

// classify checks the postponed tag before emptiness so a blocked target with
// nothing executed still reaches the execution record. Only run uses it.
func classify(target targets.Descriptor, result engine.Result) Outcome {
	if result.Postponed {
		return Outcome{Target: target, Kind: OutcomePostponed, Executed: result.Executed}
	}
	return classifyStep(target, result)
}

// classifyStep maps a result to Completed or NoOp.
func classifyStep(target targets.Descriptor, result engine.Result) Outcome {
	outcome := Outcome{Target: target, Executed: result.Executed, Kind: OutcomeCompleted}
	if len(result.Executed) == 0 {
		outcome.Kind = OutcomeNoOp
	}
	return outcome
}
