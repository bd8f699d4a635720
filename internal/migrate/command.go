package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/migrix/internal/discovery"
	"github.com/temirov/migrix/internal/engine"
	"github.com/temirov/migrix/internal/targets"
	"github.com/temirov/migrix/internal/ui"
	"github.com/temirov/migrix/internal/utils"
	"github.com/temirov/migrix/internal/utils/flags"
	"github.com/temirov/migrix/internal/versionstore"
)

const (
	commandUseConstant                        = "migrate [run|current|up|down|help]"
	commandShortDescriptionConstant           = "Run schema migrations for the application, modules, and packages"
	commandLongDescriptionConstant            = "migrate applies or reverts SQL migrations for the application and the selected modules and packages, retrying postponed targets until every dependency is satisfied or no further progress is possible."
	modulesFlagNameConstant                   = "modules"
	modulesFlagShorthandConstant              = "m"
	modulesFlagUsageConstant                  = "Migrate every module, or the comma separated modules given with =."
	packagesFlagNameConstant                  = "packages"
	packagesFlagShorthandConstant             = "p"
	packagesFlagUsageConstant                 = "Migrate every package, or the comma separated packages given with =."
	versionFlagNameConstant                   = "version"
	versionFlagShorthandConstant              = "v"
	versionFlagUsageConstant                  = "Migrate to the version given with = (one target only), or list installed migrations when bare."
	defaultFlagNameConstant                   = "default"
	defaultFlagUsageConstant                  = "Include the application when modules or packages are selected."
	allFlagNameConstant                       = "all"
	allFlagUsageConstant                      = "Migrate the application, every module, and every package."
	installedFlagNameConstant                 = "installed"
	installedFlagUsageConstant                = "Migrate the application and the configured always-load modules and packages."
	catchupFlagNameConstant                   = "catchup"
	catchupFlagUsageConstant                  = "Apply out-of-sequence migrations."
	migrateCommandExecutionErrorTemplate      = "migrate failed: %w"
	targetResolutionErrorTemplateConstant     = "unable to resolve migration targets: %w"
	engineCreationErrorTemplateConstant       = "unable to prepare migration engine: %w"
	orchestratorCreationErrorTemplateConstant = "unable to prepare migration run: %w"
	engineCloseFailedMessageConstant          = "unable to close migration engine"
	configurationFileFieldNameConstant        = "config_file"
	selectionResolvedMessageConstant          = "migration targets resolved"
	applicationEnabledFieldNameConstant       = "application"
	modulesFieldNameConstant                  = "modules"
	packagesFieldNameConstant                 = "packages"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// Catalog discovers targets, answers existence checks, and locates migration folders.
type Catalog interface {
	targets.Discoverer
	Registry
	engine.Locator
}

// CatalogProvider constructs the catalog for a configuration.
type CatalogProvider func(configuration CommandConfiguration) Catalog

// EngineRequest carries what an EngineProvider needs to build an engine.
type EngineRequest struct {
	Logger        *zap.Logger
	Configuration CommandConfiguration
	Locator       engine.Locator
}

// EngineProvider constructs a migration engine and the function releasing its resources.
type EngineProvider func(executionContext context.Context, request EngineRequest) (MigrationEngine, func() error, error)

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	CatalogProvider       CatalogProvider
	EngineProvider        EngineProvider
}

type commandFlagValues struct {
	modules    flags.OptionalValue
	packages   flags.OptionalValue
	version    flags.OptionalValue
	useDefault bool
	all        bool
	installed  bool
	catchup    bool
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.runMigrate(command, arguments, flagValues)
		},
	}
	command.SetHelpFunc(func(command *cobra.Command, _ []string) {
		fmt.Fprint(command.OutOrStdout(), HelpText())
	})

	flagSet := command.Flags()
	flags.AddOptionalValueFlag(flagSet, &flagValues.modules, modulesFlagNameConstant, modulesFlagShorthandConstant, modulesFlagUsageConstant)
	flags.AddOptionalValueFlag(flagSet, &flagValues.packages, packagesFlagNameConstant, packagesFlagShorthandConstant, packagesFlagUsageConstant)
	flags.AddOptionalValueFlag(flagSet, &flagValues.version, versionFlagNameConstant, versionFlagShorthandConstant, versionFlagUsageConstant)
	flags.AddToggleFlag(flagSet, &flagValues.useDefault, defaultFlagNameConstant, "", false, defaultFlagUsageConstant)
	flags.AddToggleFlag(flagSet, &flagValues.all, allFlagNameConstant, "", false, allFlagUsageConstant)
	flags.AddToggleFlag(flagSet, &flagValues.installed, installedFlagNameConstant, "", false, installedFlagUsageConstant)
	flags.AddToggleFlag(flagSet, &flagValues.catchup, catchupFlagNameConstant, "", false, catchupFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	configuration := builder.resolveConfiguration()
	baseLogger, runIdentifier := builder.resolveLogger(executionContext)
	logger := baseLogger.With(zap.String(runIdentifierFieldNameConstant, runIdentifier))
	reporter := ui.NewConsoleReporter(command.OutOrStdout())
	messages := ui.MigrationMessages{}

	requestedCommand := CommandRun
	if len(arguments) > 0 {
		requestedCommand = ParseCommand(arguments[0])
	}

	catalog := builder.resolveCatalog(configuration)
	selection, resolveError := targets.NewResolver(catalog, configuration.AlwaysLoad()).Resolve(flagValues.selectionInput())
	if resolveError != nil {
		if errors.Is(resolveError, targets.ErrMutuallyExclusiveSelection) {
			reporter.Print(ui.ToneFailure, messages.MutuallyExclusiveSelection())
		}
		return fmt.Errorf(migrateCommandExecutionErrorTemplate, fmt.Errorf(targetResolutionErrorTemplateConstant, resolveError))
	}

	logger.Debug(
		selectionResolvedMessageConstant,
		zap.Bool(applicationEnabledFieldNameConstant, selection.ApplicationEnabled),
		zap.Strings(modulesFieldNameConstant, selection.Modules),
		zap.Strings(packagesFieldNameConstant, selection.Packages),
	)

	printHelp := func() {
		fmt.Fprint(command.OutOrStdout(), HelpText())
	}

	migrationEngine := newLazyEngine(func() (MigrationEngine, func() error, error) {
		return builder.resolveEngineProvider()(executionContext, EngineRequest{
			Logger:        logger,
			Configuration: configuration,
			Locator:       catalog,
		})
	})
	defer func() {
		if closeError := migrationEngine.Close(); closeError != nil {
			logger.Warn(engineCloseFailedMessageConstant, zap.Error(closeError))
		}
	}()

	orchestrator, orchestratorError := NewOrchestrator(OrchestratorDependencies{
		Logger:        baseLogger,
		Engine:        migrationEngine,
		Registry:      catalog,
		Reporter:      reporter,
		Help:          printHelp,
		RunIdentifier: runIdentifier,
	})
	if orchestratorError != nil {
		return fmt.Errorf(migrateCommandExecutionErrorTemplate, fmt.Errorf(orchestratorCreationErrorTemplateConstant, orchestratorError))
	}

	if _, runError := orchestrator.Run(executionContext, requestedCommand, selection, flagValues.runOptions()); runError != nil {
		return fmt.Errorf(migrateCommandExecutionErrorTemplate, runError)
	}
	return nil
}

func (flagValues *commandFlagValues) selectionInput() targets.SelectionInput {
	return targets.SelectionInput{
		Modules:   selectorFromFlag(&flagValues.modules),
		Packages:  selectorFromFlag(&flagValues.packages),
		Default:   flagValues.useDefault,
		All:       flagValues.all,
		Installed: flagValues.installed,
	}
}

func (flagValues *commandFlagValues) runOptions() RunOptions {
	options := RunOptions{Catchup: flagValues.catchup}
	switch {
	case flagValues.version.Bare():
		options.Version = ShowInstalledVersions()
	case flagValues.version.Present():
		options.Version = ExplicitVersion(flagValues.version.Value())
	}
	return options
}

func selectorFromFlag(flagValue *flags.OptionalValue) targets.Selector {
	return targets.Selector{
		Provided: flagValue.Present(),
		All:      flagValue.Bare(),
		Names:    flagValue.List(),
	}
}

// resolveLogger returns the configured logger and the identifier of this run.
// The run identifier is not attached to the returned logger.
func (builder *CommandBuilder) resolveLogger(executionContext context.Context) (*zap.Logger, string) {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	contextAccessor := utils.NewCommandContextAccessor()
	runIdentifier, available := contextAccessor.RunIdentifier(executionContext)
	if !available {
		runIdentifier = uuid.NewString()
	}
	if configurationFilePath, configured := contextAccessor.ConfigurationFilePath(executionContext); configured {
		logger = logger.With(zap.String(configurationFileFieldNameConstant, configurationFilePath))
	}
	return logger, runIdentifier
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveCatalog(configuration CommandConfiguration) Catalog {
	if builder.CatalogProvider != nil {
		return builder.CatalogProvider(configuration)
	}
	return discovery.NewFilesystemCatalog(configuration.CatalogConfiguration())
}

func (builder *CommandBuilder) resolveEngineProvider() EngineProvider {
	if builder.EngineProvider != nil {
		return builder.EngineProvider
	}
	return OpenSQLEngine
}

// OpenSQLEngine opens the configured database, keeps the installed-version
// table up to date, and returns an engine reading migration files through the locator.
func OpenSQLEngine(executionContext context.Context, request EngineRequest) (MigrationEngine, func() error, error) {
	store, openError := versionstore.Open(executionContext, request.Configuration.Database.Driver, request.Configuration.Database.DSN)
	if openError != nil {
		return nil, nil, openError
	}

	migrationEngine, engineError := engine.NewEngine(engine.Dependencies{
		Logger:          request.Logger,
		Source:          engine.NewFileSource(request.Locator),
		Store:           store,
		Runner:          engine.NewSQLStatementRunner(store.DB()),
		CurrentVersions: request.Configuration.CurrentVersion,
	})
	if engineError != nil {
		store.Close()
		return nil, nil, engineError
	}
	return migrationEngine, store.Close, nil
}
