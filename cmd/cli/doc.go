// Package cli constructs the migrix command-line interface, wiring the Cobra
// command hierarchy, the configuration loader with its embedded defaults, and
// structured logging. The migrate command family is registered on the root.
package cli
