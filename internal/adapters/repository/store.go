// Package repository persists named profiles.
package repository

import (
	"context"

	"github.com/okian/dkp/internal/domain/profile"
)

// Store provides read/write access to saved profiles. Names are unique;
// saving under an existing name replaces that profile but keeps its ID.
type Store interface {
	// Save creates or replaces the profile with p.Name and returns what was stored.
	Save(ctx context.Context, p profile.Profile) (profile.Profile, error)

	// Get returns the profile with the given name.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, name string) (profile.Profile, error)

	// List returns every profile ordered by name.
	List(ctx context.Context) ([]profile.Info, error)

	// Delete removes the named profile. Returns ErrNotFound if there is none.
	Delete(ctx context.Context, name string) error

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int

	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
