package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleTypeNameConstant                 = "bool"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
	argumentTerminatorConstant             = "--"
)

var (
	toggleLiterals = map[string]bool{
		"true":  true,
		"yes":   true,
		"on":    true,
		"1":     true,
		"t":     true,
		"y":     true,
		"false": false,
		"no":    false,
		"off":   false,
		"0":     false,
		"f":     false,
		"n":     false,
	}

	toggleRegistryMutex  sync.RWMutex
	toggleRegistryByName = map[string]struct{}{}
	toggleRegistryByRune = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that accepts yes/no style values.
// The bare form (--flag) switches the toggle on.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target}
	value.assign(defaultValue)
	flagSet.VarP(value, name, shorthand, usage)

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleTrueCanonicalValue
	registeredFlag.Usage = formatToggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleRegistryByName[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleRegistryByRune[shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments joins a toggle flag with a following yes/no literal
// ("--all no" becomes "--all=no"). Arguments that are not toggle literals stay
// positional so "--installed up" keeps "up" as the sub-command.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if isBareToggleArgument(current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}

		normalized = append(normalized, current)
	}

	return normalized
}

type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) assign(newValue bool) {
	value.current = newValue
	if value.target != nil {
		*value.target = newValue
	}
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	value.assign(parsedValue)
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}

func isToggleLiteral(argument string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(argument))]
	return known
}

// isBareToggleArgument reports whether argument names a registered toggle without an attached value.
func isBareToggleArgument(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, registered := toggleRegistryByName[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return registered
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		if len(shorthand) != 1 {
			return false
		}
		_, registered := toggleRegistryByRune[shorthand]
		return registered
	}
	return false
}
