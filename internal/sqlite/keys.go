package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Keys issues, encodes and decodes the storage keys of one collection.
type Keys[DK comparable] interface {
	// Next issues a fresh key inside tx.
	Next(ctx context.Context, tx *sql.Tx, collection string) (DK, error)
	// Observe records a key written by an import, so Next never reissues it.
	Observe(ctx context.Context, tx *sql.Tx, collection string, key DK) error
	Encode(key DK) string
	Decode(s string) (DK, error)
}

// IntKeys issues 1, 2, 3, ... per collection and never reuses a key.
type IntKeys struct{}

// Next increments the collection counter and returns it.
func (IntKeys) Next(ctx context.Context, tx *sql.Tx, collection string) (int, error) {
	var last int
	err := tx.QueryRowContext(ctx,
		`INSERT INTO entityaxis_keys (name, last) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET last = last + 1
		 RETURNING last`, collection).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("issuing key for %s: %w", collection, err)
	}
	return last, nil
}

// Observe raises the counter to key if it is lower.
func (IntKeys) Observe(ctx context.Context, tx *sql.Tx, collection string, key int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO entityaxis_keys (name, last) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET last = MAX(last, excluded.last)`, collection, key)
	return err
}

// Encode formats key in decimal.
func (IntKeys) Encode(key int) string { return strconv.Itoa(key) }

// Decode parses a decimal key.
func (IntKeys) Decode(s string) (int, error) { return strconv.Atoi(s) }

// UUIDKeys issues time-ordered UUID v7 keys.
type UUIDKeys struct{}

// Next returns a fresh UUID.
func (UUIDKeys) Next(context.Context, *sql.Tx, string) (uuid.UUID, error) {
	return newUUID(), nil
}

// Observe is a no-op; UUIDs are not counted.
func (UUIDKeys) Observe(context.Context, *sql.Tx, string, uuid.UUID) error { return nil }

// Encode returns the canonical string form.
func (UUIDKeys) Encode(key uuid.UUID) string { return key.String() }

// Decode parses a UUID.
func (UUIDKeys) Decode(s string) (uuid.UUID, error) { return uuid.Parse(s) }

// TextKeys issues UUID v7 keys in their string form, for records keyed by
// string.
type TextKeys struct{}

// Next returns a fresh UUID string.
func (TextKeys) Next(context.Context, *sql.Tx, string) (string, error) {
	return newUUID().String(), nil
}

// Observe is a no-op.
func (TextKeys) Observe(context.Context, *sql.Tx, string, string) error { return nil }

// Encode returns key unchanged.
func (TextKeys) Encode(key string) string { return key }

// Decode returns s unchanged.
func (TextKeys) Decode(s string) (string, error) { return s, nil }

// newUUID generates a new UUID v7, falling back to v4 if v7 generation fails.
func newUUID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
