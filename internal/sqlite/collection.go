package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Collection is a types.Engine storing records of type D, a pointer to a
// struct, as JSON documents keyed by DK.
type Collection[D types.Entity[DK], DK comparable] struct {
	backend *Backend
	name    string
	keys    Keys[DK]
}

// NewCollection creates the table for name if needed and returns the
// collection. name must be lower case letters, digits and underscores.
func NewCollection[D types.Entity[DK], DK comparable](ctx context.Context, b *Backend, name string, keys Keys[DK]) (*Collection[D, DK], error) {
	t := reflect.TypeFor[D]()
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("collection %s: record type %s is not a pointer to a struct", name, t)
	}
	if keys == nil {
		return nil, fmt.Errorf("collection %s: nil key strategy", name)
	}
	if err := b.ensureTable(ctx, name); err != nil {
		return nil, err
	}
	return &Collection[D, DK]{backend: b, name: name, keys: keys}, nil
}

// Name returns the table name.
func (c *Collection[D, DK]) Name() string { return c.name }

// Open begins a transaction and returns it as a handle.
func (c *Collection[D, DK]) Open(ctx context.Context) (types.Handle[D, DK], error) {
	h, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Collection[D, DK]) open(ctx context.Context) (*handle[D, DK], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := c.backend.begin(ctx)
	if err != nil {
		return nil, err
	}
	return &handle[D, DK]{c: c, tx: tx}, nil
}

type handle[D types.Entity[DK], DK comparable] struct {
	c    *Collection[D, DK]
	tx   *sql.Tx
	done bool
}

func (h *handle[D, DK]) check(ctx context.Context) error {
	if h.done {
		return sql.ErrTxDone
	}
	return ctx.Err()
}

func (h *handle[D, DK]) notFound(key DK) error {
	return &types.NotFoundError{Entity: h.c.name, Key: key}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (h *handle[D, DK]) Insert(ctx context.Context, d D) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	key, err := h.c.keys.Next(ctx, h.tx, h.c.name)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrKeyAssignment, err)
	}
	d.SetID(key)

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", h.c.name, err)
	}
	_, err = h.tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)", h.c.name),
		h.c.keys.Encode(key), string(data), now())
	if err != nil {
		return fmt.Errorf("inserting %s record: %w", h.c.name, err)
	}
	return nil
}

func (h *handle[D, DK]) Find(ctx context.Context, key DK) (D, bool, error) {
	var zero D
	if err := h.check(ctx); err != nil {
		return zero, false, err
	}
	var data string
	err := h.tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", h.c.name),
		h.c.keys.Encode(key)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("finding %s record: %w", h.c.name, err)
	}
	d, err := h.c.decode(key, data)
	if err != nil {
		return zero, false, err
	}
	return d, true, nil
}

func (h *handle[D, DK]) Update(ctx context.Context, d D) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	key := d.GetID()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", h.c.name, err)
	}
	res, err := h.tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET data = ?, updated_at = ? WHERE id = ?", h.c.name),
		string(data), now(), h.c.keys.Encode(key))
	if err != nil {
		return fmt.Errorf("updating %s record: %w", h.c.name, err)
	}
	return h.affected(res, key)
}

func (h *handle[D, DK]) Remove(ctx context.Context, key DK) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	res, err := h.tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", h.c.name),
		h.c.keys.Encode(key))
	if err != nil {
		return fmt.Errorf("deleting %s record: %w", h.c.name, err)
	}
	return h.affected(res, key)
}

func (h *handle[D, DK]) affected(res sql.Result, key DK) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return h.notFound(key)
	}
	return nil
}

func (h *handle[D, DK]) Count(ctx context.Context) (int, error) {
	if err := h.check(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := h.tx.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", h.c.name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s records: %w", h.c.name, err)
	}
	return n, nil
}

func (h *handle[D, DK]) Scan(ctx context.Context, skip, take int) ([]D, error) {
	if err := h.check(ctx); err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if take < 0 {
		take = -1
	}
	rows, err := h.tx.QueryContext(ctx,
		fmt.Sprintf("SELECT id, data FROM %s ORDER BY seq LIMIT ? OFFSET ?", h.c.name),
		take, skip)
	if err != nil {
		return nil, fmt.Errorf("scanning %s records: %w", h.c.name, err)
	}
	defer rows.Close()

	out := []D{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", h.c.name, err)
		}
		key, err := h.c.keys.Decode(id)
		if err != nil {
			return nil, fmt.Errorf("decoding %s key %q: %w", h.c.name, id, err)
		}
		d, err := h.c.decode(key, data)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (h *handle[D, DK]) Commit(ctx context.Context) error {
	if err := h.check(ctx); err != nil {
		return err
	}
	h.done = true
	if err := h.tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", h.c.name, err)
	}
	ctxlog.FromContext(ctx).Debug("sqlite commit", "collection", h.c.name)
	return nil
}

func (h *handle[D, DK]) Close() error {
	if h.done {
		return nil
	}
	h.done = true
	return h.tx.Rollback()
}

// decode builds a record from its stored JSON and key. The key column is
// authoritative over any key inside the document.
func (c *Collection[D, DK]) decode(key DK, data string) (D, error) {
	d := newRecord[D]()
	if err := json.Unmarshal([]byte(data), d); err != nil {
		var zero D
		return zero, fmt.Errorf("decoding %s record: %w: %w", c.name, types.ErrInvalidData, err)
	}
	d.SetID(key)
	return d, nil
}

func newRecord[D any]() D {
	return reflect.New(reflect.TypeFor[D]().Elem()).Interface().(D)
}
