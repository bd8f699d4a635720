// Package testsupport provides collaborator doubles for migrate package tests.
package testsupport

import (
	"context"
	"fmt"

	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/ui"
)

// EngineCall records one engine invocation.
type EngineCall struct {
	Operation string
	Target    targets.Descriptor
	Version   string
	Catchup   bool
}

// EngineBehavior decides the result of an engine invocation for a target.
type EngineBehavior func(call EngineCall, engineStub *EngineStub) (engine.Result, error)

// EngineStub implements the migration engine with scripted behaviours.
type EngineStub struct {
	Behaviors         map[targets.Descriptor]EngineBehavior
	InstalledByTarget map[targets.Descriptor][]string
	Calls             []EngineCall
}

// NewEngineStub constructs an EngineStub with empty behaviour tables.
func NewEngineStub() *EngineStub {
	return &EngineStub{
		Behaviors:         map[targets.Descriptor]EngineBehavior{},
		InstalledByTarget: map[targets.Descriptor][]string{},
	}
}

// CallsFor returns the calls made for a target.
func (engineStub *EngineStub) CallsFor(target targets.Descriptor) []EngineCall {
	var calls []EngineCall
	for _, call := range engineStub.Calls {
		if call.Target == target {
			calls = append(calls, call)
		}
	}
	return calls
}

// MarkInstalled appends identifiers to the installed list of a target.
func (engineStub *EngineStub) MarkInstalled(target targets.Descriptor, identifiers ...string) {
	engineStub.InstalledByTarget[target] = append(engineStub.InstalledByTarget[target], identifiers...)
}

func (engineStub *EngineStub) invoke(call EngineCall) (engine.Result, error) {
	engineStub.Calls = append(engineStub.Calls, call)
	behavior, exists := engineStub.Behaviors[call.Target]
	if !exists {
		return engine.Result{}, nil
	}
	return behavior(call, engineStub)
}

// ToVersion records the call and runs the configured behaviour.
func (engineStub *EngineStub) ToVersion(_ context.Context, version string, target targets.Descriptor, catchup bool) (engine.Result, error) {
	return engineStub.invoke(EngineCall{Operation: "to_version", Target: target, Version: version, Catchup: catchup})
}

// ToLatest records the call and runs the configured behaviour.
func (engineStub *EngineStub) ToLatest(_ context.Context, target targets.Descriptor, catchup bool) (engine.Result, error) {
	return engineStub.invoke(EngineCall{Operation: "to_latest", Target: target, Catchup: catchup})
}

// ToCurrentConfigured records the call and runs the configured behaviour.
func (engineStub *EngineStub) ToCurrentConfigured(_ context.Context, target targets.Descriptor) (engine.Result, error) {
	return engineStub.invoke(EngineCall{Operation: "to_current", Target: target})
}

// StepUp records the call and runs the configured behaviour.
func (engineStub *EngineStub) StepUp(_ context.Context, version string, target targets.Descriptor) (engine.Result, error) {
	return engineStub.invoke(EngineCall{Operation: "step_up", Target: target, Version: version})
}

// StepDown records the call and runs the configured behaviour.
func (engineStub *EngineStub) StepDown(_ context.Context, version string, target targets.Descriptor) (engine.Result, error) {
	return engineStub.invoke(EngineCall{Operation: "step_down", Target: target, Version: version})
}

// Installed records the call and returns the scripted installed list.
func (engineStub *EngineStub) Installed(_ context.Context, target targets.Descriptor) ([]string, error) {
	engineStub.Calls = append(engineStub.Calls, EngineCall{Operation: "installed", Target: target})
	return engineStub.InstalledByTarget[target], nil
}

// RegistryStub answers existence checks from fixed name sets.
type RegistryStub struct {
	Modules  map[string]bool
	Packages map[string]bool
}

// ModuleExists reports whether the module is registered.
func (registry RegistryStub) ModuleExists(name string) bool {
	return registry.Modules[name]
}

// PackageExists reports whether the package is registered.
func (registry RegistryStub) PackageExists(name string) bool {
	return registry.Packages[name]
}

// ReportedLine is one line printed through ReporterStub.
type ReportedLine struct {
	Tone    ui.Tone
	Message string
}

// ReporterStub collects printed lines.
type ReporterStub struct {
	Lines []ReportedLine
}

// Print records the line.
func (reporter *ReporterStub) Print(tone ui.Tone, message string) {
	reporter.Lines = append(reporter.Lines, ReportedLine{Tone: tone, Message: message})
}

// Messages returns the printed messages without tones.
func (reporter *ReporterStub) Messages() []string {
	messages := make([]string, 0, len(reporter.Lines))
	for _, line := range reporter.Lines {
		messages = append(messages, line.Message)
	}
	return messages
}

// String renders every printed message on its own line.
func (reporter *ReporterStub) String() string {
	var rendered string
	for _, line := range reporter.Lines {
		rendered += fmt.Sprintln(line.Message)
	}
	return rendered
}
