// Package versionstore persists which migrations have been installed for
// each target. The SQL implementation keeps its own schema up to date with
// goose and embedded migrations; the memory implementation backs tests and
// dry runs.
package versionstore
