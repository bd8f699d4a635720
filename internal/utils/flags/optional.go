package flags

import (
	"strings"

	"github.com/spf13/pflag"
)

const (
	// OptionalValueBareMarker is stored when a flag appears without a value.
	// A NUL byte cannot appear in a command-line argument.
	OptionalValueBareMarker    = "\x00"
	optionalValueTypeConstant  = "string"
	optionalListSeparator      = ","
	optionalUsagePlaceholder   = "`[=value]` %s"
	optionalUsageNoDescription = "`[=value]`"
)

// OptionalValue records whether a flag was given, given bare, or given with a value.
type OptionalValue struct {
	present bool
	bare    bool
	value   string
}

// AddOptionalValueFlag registers a flag whose value is optional. The bare form
// (-m, --modules) and the valued form (-m=a,b, --modules=a,b) are distinguished.
// Values must be attached with "=".
func AddOptionalValueFlag(flagSet *pflag.FlagSet, target *OptionalValue, name string, shorthand string, usage string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}

	flagSet.VarP(target, name, shorthand, usage)
	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = OptionalValueBareMarker
	trimmedUsage := strings.TrimSpace(usage)
	if len(trimmedUsage) == 0 {
		registeredFlag.Usage = optionalUsageNoDescription
		return
	}
	registeredFlag.Usage = strings.Replace(optionalUsagePlaceholder, "%s", trimmedUsage, 1)
}

// Present reports whether the flag appeared on the command line.
func (value *OptionalValue) Present() bool {
	return value != nil && value.present
}

// Bare reports whether the flag appeared without a value.
func (value *OptionalValue) Bare() bool {
	return value.Present() && value.bare
}

// Value returns the raw value attached to the flag.
func (value *OptionalValue) Value() string {
	if value == nil {
		return ""
	}
	return value.value
}

// List splits the attached value on commas, dropping blank entries.
func (value *OptionalValue) List() []string {
	if !value.Present() || value.bare {
		return nil
	}
	var entries []string
	for _, entry := range strings.Split(value.value, optionalListSeparator) {
		trimmedEntry := strings.TrimSpace(entry)
		if len(trimmedEntry) > 0 {
			entries = append(entries, trimmedEntry)
		}
	}
	return entries
}

// Set implements pflag.Value.
func (value *OptionalValue) Set(rawValue string) error {
	value.present = true
	value.bare = rawValue == OptionalValueBareMarker
	if value.bare {
		value.value = ""
		return nil
	}
	value.value = strings.TrimSpace(rawValue)
	return nil
}

// String implements pflag.Value.
func (value *OptionalValue) String() string {
	if value == nil {
		return ""
	}
	if value.bare {
		return OptionalValueBareMarker
	}
	return value.value
}

// Type implements pflag.Value.
func (value *OptionalValue) Type() string {
	return optionalValueTypeConstant
}
