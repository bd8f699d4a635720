package targets

import (
	"errors"
	"fmt"
	"strings"
)

const (
	mutuallyExclusiveSelectionMessageConstant = "--all and --installed are mutually exclusive"
	discoveryFailureTemplateConstant          = "unable to discover %ss with migrations: %w"
)

// ErrMutuallyExclusiveSelection is returned when --all and --installed are combined.
var ErrMutuallyExclusiveSelection = errors.New(mutuallyExclusiveSelectionMessageConstant)

// Selector captures one raw --modules or --packages flag.
type Selector struct {
	// Provided is true when the flag appeared on the command line.
	Provided bool
	// All is true for the bare form that selects every discoverable unit.
	All bool
	// Names holds the comma separated names of the valued form.
	Names []string
}

func (selector Selector) selectsAnything() bool {
	return selector.All || len(selector.Names) > 0
}

// SelectionInput is the raw selection gathered from command-line flags.
type SelectionInput struct {
	Modules   Selector
	Packages  Selector
	Default   bool
	All       bool
	Installed bool
}

// Discoverer enumerates units that ship at least one migration file.
type Discoverer interface {
	ListModulesWithMigrations() ([]string, error)
	ListPackagesWithMigrations() ([]string, error)
}

// AlwaysLoad lists units included whenever --installed is used.
type AlwaysLoad struct {
	Modules  []string
	Packages []string
}

// Selection is the resolved, deduplicated candidate set. It is read-only once built.
type Selection struct {
	ApplicationEnabled bool
	Modules            []string
	Packages           []string
}

// Count returns the number of selected targets, counting the application as one.
func (selection Selection) Count() int {
	count := len(selection.Modules) + len(selection.Packages)
	if selection.ApplicationEnabled {
		count++
	}
	return count
}

// Descriptors lists the selected targets in execution order: application, modules, packages.
func (selection Selection) Descriptors() []Descriptor {
	descriptors := make([]Descriptor, 0, selection.Count())
	if selection.ApplicationEnabled {
		descriptors = append(descriptors, Application())
	}
	for _, moduleName := range selection.Modules {
		descriptors = append(descriptors, Module(moduleName))
	}
	for _, packageName := range selection.Packages {
		descriptors = append(descriptors, Package(packageName))
	}
	return descriptors
}

// Resolver turns raw selection input into a Selection.
type Resolver struct {
	discoverer Discoverer
	alwaysLoad AlwaysLoad
}

// NewResolver constructs a Resolver backed by the provided discoverer and always-load lists.
func NewResolver(discoverer Discoverer, alwaysLoad AlwaysLoad) *Resolver {
	return &Resolver{discoverer: discoverer, alwaysLoad: alwaysLoad}
}

// Resolve normalizes input into a Selection. Discovery is only consulted for
// the bare "select everything" forms; explicit names are taken as given.
func (resolver *Resolver) Resolve(input SelectionInput) (Selection, error) {
	if input.All && input.Installed {
		return Selection{}, ErrMutuallyExclusiveSelection
	}

	modules := input.Modules
	packages := input.Packages
	defaultRequested := input.Default

	switch {
	case input.All:
		defaultRequested = true
		modules = Selector{Provided: true, All: true}
		packages = Selector{Provided: true, All: true}
	case input.Installed:
		defaultRequested = true
		modules = Selector{Provided: true, Names: appendNames(modules.Names, resolver.alwaysLoad.Modules)}
		packages = Selector{Provided: true, Names: appendNames(packages.Names, resolver.alwaysLoad.Packages)}
	}

	selection := Selection{ApplicationEnabled: true}

	moduleNames, moduleError := resolver.expand(modules, KindModule)
	if moduleError != nil {
		return Selection{}, moduleError
	}
	packageNames, packageError := resolver.expand(packages, KindPackage)
	if packageError != nil {
		return Selection{}, packageError
	}
	selection.Modules = moduleNames
	selection.Packages = packageNames

	if (modules.selectsAnything() || packages.selectsAnything()) && !defaultRequested {
		selection.ApplicationEnabled = false
	}

	return selection, nil
}

func (resolver *Resolver) expand(selector Selector, kind Kind) ([]string, error) {
	if !selector.All {
		return deduplicateNames(selector.Names), nil
	}
	if resolver.discoverer == nil {
		return nil, nil
	}

	var discovered []string
	var discoveryError error
	if kind == KindModule {
		discovered, discoveryError = resolver.discoverer.ListModulesWithMigrations()
	} else {
		discovered, discoveryError = resolver.discoverer.ListPackagesWithMigrations()
	}
	if discoveryError != nil {
		return nil, fmt.Errorf(discoveryFailureTemplateConstant, kind, discoveryError)
	}
	return deduplicateNames(discovered), nil
}

func appendNames(explicitNames []string, additionalNames []string) []string {
	combined := make([]string, 0, len(explicitNames)+len(additionalNames))
	combined = append(combined, explicitNames...)
	return append(combined, additionalNames...)
}

func deduplicateNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seenNames := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		if _, seen := seenNames[trimmedName]; seen {
			continue
		}
		seenNames[trimmedName] = struct{}{}
		unique = append(unique, trimmedName)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}
