package types

import "context"

// Engine is the persistence engine for one storage record shape D keyed by
// DK. Every logical operation opens its own Handle; handles are never shared
// between concurrent calls.
type Engine[D Entity[DK], DK comparable] interface {
	// Open returns an isolated handle. The caller must Close it.
	Open(ctx context.Context) (Handle[D, DK], error)
}

// Handle is a unit-of-work over one record collection. Writes are staged
// and become visible to other handles only after Commit. Close without
// Commit discards staged writes. Close is safe to call more than once.
type Handle[D Entity[DK], DK comparable] interface {
	// Insert stages a new record. The engine assigns the key and stores it
	// on d through SetID. Returns ErrKeyAssignment when the engine has no
	// way to produce a key.
	Insert(ctx context.Context, d D) error

	// Find returns the record stored under key. ok is false when absent.
	Find(ctx context.Context, key DK) (d D, ok bool, err error)

	// Update stages a full overwrite of the record with d's key.
	// Returns ErrNotFound if no such record exists.
	Update(ctx context.Context, d D) error

	// Remove stages deletion of the record stored under key.
	// Returns ErrNotFound if no such record exists.
	Remove(ctx context.Context, key DK) error

	// Count returns the number of committed records.
	Count(ctx context.Context) (int, error)

	// Scan returns up to take committed records after skipping skip of them,
	// in storage order. A negative take means no bound.
	Scan(ctx context.Context, skip, take int) ([]D, error)

	// Commit applies the staged writes.
	Commit(ctx context.Context) error

	// Close releases the handle.
	Close() error
}
