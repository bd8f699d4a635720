package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	testToggleFlagNameConstant      = "installed"
	testToggleFlagShorthandConstant = "i"
	testToggleUsageConstant         = "Load installed targets."
	testSubCommandConstant          = "up"
)

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name                string
		arguments           []string
		expectedValue       bool
		expectedChanged     bool
		expectedPositionals []string
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--installed"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--installed", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitUppercaseTrue", arguments: []string{"--installed", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--installed", "no"}, expectedValue: false, expectedChanged: true},
		{name: "AttachedValue", arguments: []string{"--installed=off"}, expectedValue: false, expectedChanged: true},
		{name: "ShorthandNo", arguments: []string{"-i", "no"}, expectedValue: false, expectedChanged: true},
		{
			name:                "SubCommandStaysPositional",
			arguments:           []string{"--installed", testSubCommandConstant},
			expectedValue:       true,
			expectedChanged:     true,
			expectedPositionals: []string{testSubCommandConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			command := &cobra.Command{}

			var toggleTarget bool
			AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, testToggleFlagShorthandConstant, false, testToggleUsageConstant)

			parseError := command.ParseFlags(NormalizeToggleArguments(testCase.arguments))
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedValue, toggleTarget)

			registeredFlag := command.Flags().Lookup(testToggleFlagNameConstant)
			require.NotNil(subTest, registeredFlag)
			require.Equal(subTest, testCase.expectedChanged, registeredFlag.Changed)

			positionals := command.Flags().Args()
			if len(testCase.expectedPositionals) == 0 {
				require.Empty(subTest, positionals)
				return
			}
			require.Equal(subTest, testCase.expectedPositionals, positionals)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}

	var toggleTarget bool
	AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, "", false, testToggleUsageConstant)

	parseError := command.ParseFlags(NormalizeToggleArguments([]string{"--installed=maybe"}))
	require.Error(testInstance, parseError)
	require.False(testInstance, toggleTarget)
}

func TestAddToggleFlagUsageShowsPlaceholder(testInstance *testing.T) {
	command := &cobra.Command{}

	var toggleTarget bool
	AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, "", true, testToggleUsageConstant)

	registeredFlag := command.Flags().Lookup(testToggleFlagNameConstant)
	require.NotNil(testInstance, registeredFlag)
	require.Equal(testInstance, "`<YES|no>` "+testToggleUsageConstant, registeredFlag.Usage)
	require.True(testInstance, toggleTarget)
}

func TestNormalizeToggleArgumentsStopsAtTerminator(testInstance *testing.T) {
	command := &cobra.Command{}

	var toggleTarget bool
	AddToggleFlag(command.Flags(), &toggleTarget, testToggleFlagNameConstant, "", false, testToggleUsageConstant)

	normalized := NormalizeToggleArguments([]string{"--", "--installed", "no"})
	require.Equal(testInstance, []string{"--", "--installed", "no"}, normalized)
	require.Nil(testInstance, NormalizeToggleArguments(nil))
}
