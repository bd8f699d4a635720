package migrate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/migrix/internal/migrate"
)

func TestParseCommand(testInstance *testing.T) {
	testCases := []struct {
		token    string
		expected migrate.Command
		name     string
	}{
		{token: "", expected: migrate.CommandRun, name: "run"},
		{token: "run", expected: migrate.CommandRun, name: "run"},
		{token: " Current ", expected: migrate.CommandCurrent, name: "current"},
		{token: "up", expected: migrate.CommandUp, name: "up"},
		{token: "down", expected: migrate.CommandDown, name: "down"},
		{token: "help", expected: migrate.CommandHelp, name: "help"},
		{token: "frobnicate", expected: migrate.CommandHelp, name: "help"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.token, func(subTest *testing.T) {
			command := migrate.ParseCommand(testCase.token)
			require.Equal(subTest, testCase.expected, command)
			require.Equal(subTest, testCase.name, command.String())
		})
	}
}

func TestNormalizeCommandArguments(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{name: "Empty", arguments: nil, expected: nil},
		{name: "PlainCommand", arguments: []string{"migrate", "-m"}, expected: []string{"migrate", "-m"}},
		{name: "QualifiedCommand", arguments: []string{"--log-level", "debug", "migrate:up", "--default"}, expected: []string{"--log-level", "debug", "migrate", "up", "--default"}},
		{name: "QualifiedUnknown", arguments: []string{"migrate:frobnicate"}, expected: []string{"migrate", "frobnicate"}},
		{name: "AfterTerminator", arguments: []string{"migrate", "--", "migrate:down"}, expected: []string{"migrate", "--", "migrate:down"}},
		{name: "OtherPrefix", arguments: []string{"migrations:up"}, expected: []string{"migrations:up"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expected, migrate.NormalizeCommandArguments("migrate", testCase.arguments))
		})
	}
}
