// Package memory implements an in-process persistence engine.
//
// Committed records live in a map guarded by a sync.RWMutex, with a key
// slice preserving insertion order for scans. Each handle queues its writes
// and applies them together on Commit; Close without Commit drops the queue.
// Reads through a handle see committed state only.
package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// ErrHandleClosed is returned by operations on a closed handle.
var ErrHandleClosed = errors.New("handle is closed")

// KeyFunc produces a fresh storage key for an inserted record.
type KeyFunc[DK comparable] func() (DK, error)

// IntKeys returns a KeyFunc yielding 1, 2, 3, ...
func IntKeys() KeyFunc[int] {
	var next atomic.Int64
	return func() (int, error) {
		return int(next.Add(1)), nil
	}
}

// UUIDKeys returns a KeyFunc yielding time-ordered UUID v7 keys.
func UUIDKeys() KeyFunc[uuid.UUID] {
	return func() (uuid.UUID, error) {
		return uuid.NewV7()
	}
}

// Engine stores records of type D keyed by DK.
type Engine[D types.Entity[DK], DK comparable] struct {
	mu    sync.RWMutex
	name  string
	keys  KeyFunc[DK]
	rows  map[DK]D
	order []DK
}

// New returns an empty engine. name labels the collection in logs and
// errors. A nil keys makes every Insert fail with types.ErrKeyAssignment.
func New[D types.Entity[DK], DK comparable](name string, keys KeyFunc[DK]) *Engine[D, DK] {
	return &Engine[D, DK]{
		name: name,
		keys: keys,
		rows: make(map[DK]D),
	}
}

// Name returns the collection name.
func (e *Engine[D, DK]) Name() string { return e.name }

// Open returns a new handle.
func (e *Engine[D, DK]) Open(ctx context.Context) (types.Handle[D, DK], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &handle[D, DK]{engine: e}, nil
}

// Len returns the number of committed records.
func (e *Engine[D, DK]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rows)
}

type operation int

const (
	opInsert operation = iota
	opUpdate
	opRemove
)

// pendingWrite is one queued write awaiting Commit.
type pendingWrite[D any, DK comparable] struct {
	op     operation
	key    DK
	record D
}

type handle[D types.Entity[DK], DK comparable] struct {
	engine  *Engine[D, DK]
	pending []pendingWrite[D, DK]
	closed  bool
}

func (h *handle[D, DK]) check(ctx context.Context) error {
	if h.closed {
		return ErrHandleClosed
	}
	return ctx.Err()
}

// staged reports whether key has a queued insert on this handle.
func (h *handle[D, DK]) staged(key DK) bool {
	found := false
	for _, pw := range h.pending {
		if pw.key != key {
			continue
		}
		found = pw.op != opRemove
	}
	return found
}

func (h *handle[D, DK]) exists(key DK) bool {
	h.engine.mu.RLock()
	_, ok := h.engine.rows[key]
	h.engine.mu.RUnlock()
	return ok || h.staged(key)
}

func (h *handle[D, DK]) Insert(ctx context.Context, d D) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	if h.engine.keys == nil {
		return fmt.Errorf("%s: %w", h.engine.name, types.ErrKeyAssignment)
	}
	key, err := h.engine.keys()
	if err != nil {
		return fmt.Errorf("%s: generate key: %w: %w", h.engine.name, types.ErrKeyAssignment, err)
	}
	if h.exists(key) {
		return fmt.Errorf("%s: generated key %v already in use: %w", h.engine.name, key, types.ErrKeyAssignment)
	}
	d.SetID(key)
	h.pending = append(h.pending, pendingWrite[D, DK]{op: opInsert, key: key, record: clone(d)})
	return nil
}

func (h *handle[D, DK]) Find(ctx context.Context, key DK) (D, bool, error) {
	var zero D
	if err := h.check(ctx); err != nil {
		return zero, false, err
	}
	h.engine.mu.RLock()
	defer h.engine.mu.RUnlock()
	d, ok := h.engine.rows[key]
	if !ok {
		return zero, false, nil
	}
	return clone(d), true, nil
}

func (h *handle[D, DK]) Update(ctx context.Context, d D) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	key := d.GetID()
	if !h.exists(key) {
		return &types.NotFoundError{Entity: h.engine.name, Key: key}
	}
	h.pending = append(h.pending, pendingWrite[D, DK]{op: opUpdate, key: key, record: clone(d)})
	return nil
}

func (h *handle[D, DK]) Remove(ctx context.Context, key DK) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	if !h.exists(key) {
		return &types.NotFoundError{Entity: h.engine.name, Key: key}
	}
	h.pending = append(h.pending, pendingWrite[D, DK]{op: opRemove, key: key})
	return nil
}

func (h *handle[D, DK]) Count(ctx context.Context) (int, error) {
	if err := h.check(ctx); err != nil {
		return 0, err
	}
	return h.engine.Len(), nil
}

func (h *handle[D, DK]) Scan(ctx context.Context, skip, take int) ([]D, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	h.engine.mu.RLock()
	defer h.engine.mu.RUnlock()

	keys := h.engine.order
	if skip > 0 {
		if skip >= len(keys) {
			return []D{}, nil
		}
		keys = keys[skip:]
	}
	if take >= 0 && take < len(keys) {
		keys = keys[:take]
	}
	out := make([]D, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(h.engine.rows[k]))
	}
	return out, nil
}

// Commit applies the queued writes in order. Updates and removals whose
// record vanished since they were queued fail the whole commit and nothing
// is applied. Otherwise the last writer wins.
func (h *handle[D, DK]) Commit(ctx context.Context) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	if len(h.pending) == 0 {
		return nil
	}

	e := h.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	present := make(map[DK]bool, len(h.pending))
	for _, pw := range h.pending {
		ok, seen := present[pw.key]
		if !seen {
			_, ok = e.rows[pw.key]
		}
		switch pw.op {
		case opInsert:
			if ok {
				return fmt.Errorf("%s: key %v already in use: %w", e.name, pw.key, types.ErrKeyAssignment)
			}
			present[pw.key] = true
		case opUpdate:
			if !ok {
				return &types.NotFoundError{Entity: e.name, Key: pw.key}
			}
		case opRemove:
			if !ok {
				return &types.NotFoundError{Entity: e.name, Key: pw.key}
			}
			present[pw.key] = false
		}
	}

	for _, pw := range h.pending {
		switch pw.op {
		case opInsert:
			e.rows[pw.key] = pw.record
			e.order = append(e.order, pw.key)
		case opUpdate:
			e.rows[pw.key] = pw.record
		case opRemove:
			delete(e.rows, pw.key)
			if i := slices.Index(e.order, pw.key); i >= 0 {
				e.order = slices.Delete(e.order, i, i+1)
			}
		}
	}
	ctxlog.FromContext(ctx).Debug("memory commit", "collection", e.name, "writes", len(h.pending))
	h.pending = nil
	return nil
}

func (h *handle[D, DK]) Close() error {
	h.closed = true
	h.pending = nil
	return nil
}

// clone returns a shallow copy of the struct behind a pointer record, so
// callers never alias stored state. Non-struct records are returned as is.
func clone[D any](d D) D {
	v := reflect.ValueOf(d)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return d
	}
	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	return cp.Interface().(D)
}
