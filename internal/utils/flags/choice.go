package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplate     = "<%s>"
	choiceSeparatorLiteral        = "|"
	choiceUsageTemplate           = "`%s` %s"
	choiceUsagePlaceholderOnly    = "`%s`"
	unsupportedChoiceErrorMessage = "unsupported value %q, expected one of %s"
)

// FormatChoiceUsage renders a usage string such as "`<STRUCTURED|console>` Log format."
// where the default choice is upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayChoices(defaultChoice, choices), choiceSeparatorLiteral))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsagePlaceholderOnly, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplate, placeholder, trimmedDescription)
}

// NormalizeChoice returns the canonical lower-case spelling of value when it is one of choices.
func NormalizeChoice(value string, choices []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, choice := range choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalizedValue {
			return normalizedValue, nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceErrorMessage, value, strings.Join(choices, choiceSeparatorLiteral))
}

func displayChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayed = append(displayed, trimmedChoice)
	}

	return displayed
}
