// Package ui provides helpers for formatting human-readable console output.
//
// MigrationMessages builds the progress lines printed for each target and
// ConsoleReporter writes them to standard output with a colour per tone,
// while detailed telemetry continues to flow through structured loggers.
package ui
