package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	internalTestConfigurationContentConstant = "common:\n  log_level: debug\n  log_format: structured\ndatabase:\n  driver: postgres\n  dsn: postgres://localhost/app\nmigrations:\n  always_load:\n    modules:\n      - auth\n  current_versions:\n    module:\n      Auth: \"003\"\n"
)

func TestInitializeConfigurationAttachesRunContext(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, testInstance.TempDir())
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(internalTestConfigurationContentConstant), 0o600))

	application := NewApplication()
	application.configurationFilePath = configurationPath
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	configuredPath, configured := application.commandContextAccessor.ConfigurationFilePath(rootCommand.Context())
	require.True(testInstance, configured)
	require.Equal(testInstance, configurationPath, configuredPath)

	runIdentifier, available := application.commandContextAccessor.RunIdentifier(rootCommand.Context())
	require.True(testInstance, available)
	_, parseError := uuid.Parse(runIdentifier)
	require.NoError(testInstance, parseError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "postgres", application.configuration.Migrate.Database.Driver)
	require.Equal(testInstance, "postgres://localhost/app", application.configuration.Migrate.Database.DSN)
	require.Equal(testInstance, "migrations", application.configuration.Migrate.Migrations.Folder)
	require.Equal(testInstance, []string{"auth"}, application.configuration.Migrate.Migrations.AlwaysLoad.Modules)
}

func TestInitializeConfigurationRejectsUnknownLogFormat(testInstance *testing.T) {
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, testInstance.TempDir())

	application := NewApplication()
	rootCommand := application.rootCommand
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "xml"))

	require.Error(testInstance, application.initializeConfiguration(rootCommand))
}

func TestConfigurationSearchPathsHonourOverride(testInstance *testing.T) {
	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()
	testInstance.Setenv(configurationSearchPathEnvironmentNameConstant, firstDirectory+string(os.PathListSeparator)+secondDirectory)

	require.Equal(testInstance, []string{firstDirectory, secondDirectory}, configurationSearchPaths())
}
