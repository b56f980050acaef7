// Package sqlite provides the public API for the SQLite persistence engine.
// It exposes the backend factory and typed collections while keeping the
// implementation internal.
package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/entityaxis/internal/sqlite"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Backend is an attachable SQLite database holding one table per collection.
type Backend = sqlite.Backend

// Keys issues and encodes the storage keys of a collection.
type Keys[DK comparable] = sqlite.Keys[DK]

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".entityaxis",
//	})
//	defer backend.Detach()
func NewBackend() *Backend {
	return sqlite.NewBackend()
}

// Collection opens the named collection on an attached backend and returns
// it as a persistence engine for records D keyed by DK.
func Collection[D types.Entity[DK], DK comparable](ctx context.Context, b *Backend, name string, keys Keys[DK]) (*sqlite.Collection[D, DK], error) {
	return sqlite.NewCollection[D, DK](ctx, b, name, keys)
}

// IntKeys issues increasing integer keys that are never reused.
func IntKeys() Keys[int] { return sqlite.IntKeys{} }

// UUIDKeys issues UUID v7 keys.
func UUIDKeys() Keys[uuid.UUID] { return sqlite.UUIDKeys{} }

// TextKeys issues UUID v7 keys in string form.
func TextKeys() Keys[string] { return sqlite.TextKeys{} }

var _ types.Backend = (*Backend)(nil)
