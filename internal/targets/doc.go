// Package targets models the units a migration run operates on (the
// application, modules, and packages) and resolves raw command-line selection
// input into a fixed, deduplicated candidate set.
package targets
