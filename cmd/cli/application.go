package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/migrix/internal/migrate"
	"github.com/temirov/migrix/internal/utils"
	"github.com/temirov/migrix/internal/utils/flags"
)

const (
	applicationNameConstant                         = "migrix"
	applicationShortDescriptionConstant             = "Schema migrations for an application and its modules and packages"
	applicationLongDescriptionConstant              = "migrix applies SQL migrations to an application, its modules, and its packages, honouring cross-target dependencies."
	migrateCommandNameConstant                      = "migrate"
	configFileFlagNameConstant                      = "config"
	configFileFlagUsageConstant                     = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                        = "log-level"
	logLevelFlagUsageConstant                       = "Override the configured log level."
	logFormatFlagNameConstant                       = "log-format"
	logFormatFlagDescriptionConstant                = "Override the configured log format."
	commonConfigurationKeyConstant                  = "common"
	commonLogLevelConfigKeyConstant                 = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant                       = "MIGRIX"
	configurationSearchPathEnvironmentNameConstant  = "MIGRIX_CONFIG_SEARCH_PATH"
	configurationNameConstant                       = "config"
	configurationTypeConstant                       = "yaml"
	configurationInitializedMessageConstant         = "configuration initialized"
	configurationLogLevelFieldConstant              = "log_level"
	configurationLogFormatFieldConstant             = "log_format"
	configurationFileFieldConstant                  = "config_file"
	runIdentifierFieldConstant                      = "run_id"
	configurationLoadErrorTemplateConstant          = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant             = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                 = "unable to flush logger: %w"
	logFormatErrorTemplateConstant                  = "invalid --%s: %w"
	rootCommandInfoMessageConstant                  = "migrix CLI executed"
	rootCommandDebugMessageConstant                 = "migrix CLI diagnostics"
	logFieldCommandNameConstant                     = "command_name"
	logFieldArgumentCountConstant                   = "argument_count"
	logFieldArgumentsConstant                       = "arguments"
	loggerNotInitializedMessageConstant             = "logger not initialized"
	defaultConfigurationSearchPathConstant          = "."
	userConfigurationDirectoryNameConstant          = applicationNameConstant
	migrateCommandRegistrationErrorTemplateConstant = "unable to build migrate command: %w"
	configurationSearchPathSeparatorConstant        = string(os.PathListSeparator)
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Migrate migrate.CommandConfiguration   `mapstructure:",squash"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	initializationError    error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(utils.LogFormatConsole), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant),
	)

	migrateBuilder := migrate.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() migrate.CommandConfiguration {
			return application.configuration.Migrate
		},
	}
	migrateCommand, migrateBuildError := migrateBuilder.Build()
	if migrateBuildError != nil {
		application.initializationError = fmt.Errorf(migrateCommandRegistrationErrorTemplateConstant, migrateBuildError)
	} else {
		cobraCommand.AddCommand(migrateCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the command hierarchy against the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments normalizes the qualified "migrate:<command>" spelling and
// toggle flags, runs the command hierarchy, and flushes the logger.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if application.initializationError != nil {
		return application.initializationError
	}

	normalizedArguments := migrate.NormalizeCommandArguments(migrateCommandNameConstant, arguments)
	normalizedArguments = flags.NormalizeToggleArguments(normalizedArguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetOutput redirects standard output and error of the command hierarchy.
func (application *Application) SetOutput(outputWriter io.Writer) {
	application.rootCommand.SetOut(outputWriter)
	application.rootCommand.SetErr(outputWriter)
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths() []string {
	if overriddenPaths := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentNameConstant)); len(overriddenPaths) > 0 {
		return strings.Split(overriddenPaths, configurationSearchPathSeparatorConstant)
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryNameConstant))
	}
	return searchPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range migrate.DefaultConfigurationValues() {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		normalizedFormat, formatError := flags.NormalizeChoice(application.logFormatFlagValue, utils.SupportedLogFormats())
		if formatError != nil {
			return fmt.Errorf(logFormatErrorTemplateConstant, logFormatFlagNameConstant, formatError)
		}
		application.configuration.Common.LogFormat = normalizedFormat
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	runIdentifier := uuid.NewString()
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(runIdentifierFieldConstant, runIdentifier),
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRunIdentifier(updatedContext, runIdentifier)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
