package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Open returns the store named by kind. path is only used by SQLite.
func Open(ctx context.Context, kind, path string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSQLite:
		st, err := OpenSQLite(ctx, path, opts...)
		if err != nil {
			return nil, err
		}
		return st, nil
	case KindMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
