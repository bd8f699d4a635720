package versionstore

import (
	"context"

	"github.com/temirov/migrix/internal/targets"
)

// Store records installed migrations per target.
type Store interface {
	// Installed returns the installed migration identifiers of the target in ascending order.
	Installed(executionContext context.Context, target targets.Descriptor) ([]string, error)
	// Record marks the migration as installed for the target.
	Record(executionContext context.Context, target targets.Descriptor, migrationIdentifier string) error
	// Remove forgets the migration for the target.
	Remove(executionContext context.Context, target targets.Descriptor, migrationIdentifier string) error
}
