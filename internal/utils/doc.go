// Package utils exposes reusable helpers consumed by the migrix commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI, plus
// the accessor used to carry per-invocation values through command contexts.
package utils
