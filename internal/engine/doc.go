// Package engine applies and reverts SQL migration files for one target at a
// time and records the results in a version store.
//
// Every operation returns a Result carrying the identifiers it executed and
// an explicit Postponed tag set when a migration was held back because a
// dependency on another target is not installed yet.
package engine
