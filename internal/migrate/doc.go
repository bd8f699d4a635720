// Package migrate drives migrations across the application, its modules, and
// its packages.
//
// The Orchestrator invokes the selected command handler for every resolved
// target and repeats whole passes while some target reports postponed
// migrations. A pass that executes exactly what the previous pass executed is
// treated as an unsatisfiable dependency and ends the run with ErrMigrationLoop.
package migrate
