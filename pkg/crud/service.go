// Package crud provides Service, the generic CRUD service that implements the
// command and query contracts of pkg/types for one entity type.
//
// A Service composes three collaborators: a persistence engine working on
// storage records D keyed by DK, a shape mapper translating between the
// entity E and D, and a key mapper translating the application key K to DK.
// It holds no mutable state; each call opens its own engine handle and closes
// it on every exit path.
//
// Cancellation is cooperative. The context is checked on entry and before
// every round trip to the engine, and a canceled call returns an error
// wrapping context.Canceled or context.DeadlineExceeded.
//
// Concurrent writes to the same key race in the engine and the last writer
// wins. GetPaged reads the count and the page as two steps with no
// consistency guarantee between them.
package crud

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/pkg/keymap"
	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Service implements types.EntityService[E, K] over a types.Engine[D, DK].
type Service[E types.Entity[K], K comparable, D types.Entity[DK], DK comparable] struct {
	engine types.Engine[D, DK]
	mapper *mapping.Mapper
	keys   keymap.KeyMapper[K, DK]
	name   string
}

type options struct {
	name string
}

// Option configures a Service.
type Option func(*options)

// WithName sets the entity name used in errors and logs. The default is
// the entity's Go type name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// New builds a Service. It fails when a collaborator is nil or when the
// mapper lacks the E to D or D to E translation.
func New[E types.Entity[K], K comparable, D types.Entity[DK], DK comparable](
	engine types.Engine[D, DK],
	mapper *mapping.Mapper,
	keys keymap.KeyMapper[K, DK],
	opts ...Option,
) (*Service[E, K, D, DK], error) {
	o := options{name: entityName[E]()}
	for _, opt := range opts {
		opt(&o)
	}

	var errs []error
	if engine == nil {
		errs = append(errs, errors.New("nil engine"))
	}
	if keys == nil {
		errs = append(errs, errors.New("nil key mapper"))
	}
	if mapper == nil {
		errs = append(errs, errors.New("nil mapper"))
	} else {
		errs = append(errs,
			mapping.EnsureMapping[E, D](mapper),
			mapping.EnsureMapping[D, E](mapper),
		)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("crud service for %s: %w", o.name, err)
	}

	return &Service[E, K, D, DK]{
		engine: engine,
		mapper: mapper,
		keys:   keys,
		name:   o.name,
	}, nil
}

// Name returns the entity name used in diagnostics.
func (s *Service[E, K, D, DK]) Name() string { return s.name }

// Create maps entity to a storage record, inserts it and returns the
// application form of the key the engine assigned.
func (s *Service[E, K, D, DK]) Create(ctx context.Context, entity E) (K, error) {
	var zero K
	if err := ctx.Err(); err != nil {
		return zero, s.wrap("create", err)
	}

	rec, err := mapping.Map[E, D](s.mapper, entity)
	if err != nil {
		return zero, s.wrap("create", err)
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return zero, s.wrap("create", err)
	}
	defer h.Close()

	if err := h.Insert(ctx, rec); err != nil {
		return zero, s.wrap("create", err)
	}
	if types.IsZeroKey(rec.GetID()) {
		return zero, s.wrap("create", types.ErrKeyAssignment)
	}
	if err := ctx.Err(); err != nil {
		return zero, s.wrap("create", err)
	}
	if err := h.Commit(ctx); err != nil {
		return zero, s.wrap("create", err)
	}

	id, err := s.keys.ToAppKey(rec.GetID())
	if err != nil {
		return zero, s.wrap("create", err)
	}
	ctxlog.FromContext(ctx).Debug("entity created", "entity", s.name, "id", id)
	return id, nil
}

// Update overlays entity onto the stored record with the same key and
// returns that key. A nil entity fails with types.ErrInvalidData. The stored key is restored after the overlay, so an
// update never changes identity. An absent record is a *types.NotFoundError.
func (s *Service[E, K, D, DK]) Update(ctx context.Context, entity E) (K, error) {
	var zero K
	if err := ctx.Err(); err != nil {
		return zero, s.wrap("update", err)
	}
	if isNil(entity) {
		return zero, s.wrap("update", fmt.Errorf("nil entity: %w", types.ErrInvalidData))
	}

	id := entity.GetID()
	dk, err := s.keys.ToDBKey(id)
	if err != nil {
		return zero, s.wrap("update", err)
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return zero, s.wrap("update", err)
	}
	defer h.Close()

	existing, ok, err := h.Find(ctx, dk)
	if err != nil {
		return zero, s.wrap("update", err)
	}
	if !ok {
		return zero, s.wrap("update", &types.NotFoundError{Entity: s.name, Key: id})
	}

	if err := mapping.Overlay[E, D](s.mapper, entity, existing); err != nil {
		return zero, s.wrap("update", err)
	}
	existing.SetID(dk)

	if err := ctx.Err(); err != nil {
		return zero, s.wrap("update", err)
	}
	if err := h.Update(ctx, existing); err != nil {
		return zero, s.wrap("update", err)
	}
	if err := ctx.Err(); err != nil {
		return zero, s.wrap("update", err)
	}
	if err := h.Commit(ctx); err != nil {
		return zero, s.wrap("update", err)
	}

	ctxlog.FromContext(ctx).Debug("entity updated", "entity", s.name, "id", id)
	return id, nil
}

// Delete removes the entity stored under id. Deleting an absent entity is a
// successful no-op.
func (s *Service[E, K, D, DK]) Delete(ctx context.Context, id K) error {
	if err := ctx.Err(); err != nil {
		return s.wrap("delete", err)
	}

	dk, err := s.keys.ToDBKey(id)
	if err != nil {
		return s.wrap("delete", err)
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return s.wrap("delete", err)
	}
	defer h.Close()

	_, ok, err := h.Find(ctx, dk)
	if err != nil {
		return s.wrap("delete", err)
	}
	if !ok {
		ctxlog.FromContext(ctx).Debug("entity already absent", "entity", s.name, "id", id)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return s.wrap("delete", err)
	}
	if err := h.Remove(ctx, dk); err != nil {
		return s.wrap("delete", err)
	}
	if err := ctx.Err(); err != nil {
		return s.wrap("delete", err)
	}
	if err := h.Commit(ctx); err != nil {
		return s.wrap("delete", err)
	}

	ctxlog.FromContext(ctx).Debug("entity deleted", "entity", s.name, "id", id)
	return nil
}

// GetByID returns the entity stored under id. ok is false when absent.
func (s *Service[E, K, D, DK]) GetByID(ctx context.Context, id K) (E, bool, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, false, s.wrap("get", err)
	}

	dk, err := s.keys.ToDBKey(id)
	if err != nil {
		return zero, false, s.wrap("get", err)
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return zero, false, s.wrap("get", err)
	}
	defer h.Close()

	rec, ok, err := h.Find(ctx, dk)
	if err != nil {
		return zero, false, s.wrap("get", err)
	}
	if !ok {
		return zero, false, nil
	}

	e, err := s.toEntity(rec)
	if err != nil {
		return zero, false, s.wrap("get", err)
	}
	return e, true, nil
}

// GetAll returns every entity in storage order. The result is never nil.
func (s *Service[E, K, D, DK]) GetAll(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("list", err)
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	defer h.Close()

	recs, err := h.Scan(ctx, 0, -1)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	out, err := s.toEntities(recs)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	return out, nil
}

// GetPaged returns page number page (1-based) of pageSize entities. page
// and pageSize below 1 are rejected with a *types.PagingError before storage
// is touched.
func (s *Service[E, K, D, DK]) GetPaged(ctx context.Context, page, pageSize int) (*types.PagedResult[E], error) {
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("page", err)
	}
	if page < 1 {
		return nil, s.wrap("page", &types.PagingError{Param: "page", Value: page, Min: 1})
	}
	if pageSize < 1 {
		return nil, s.wrap("page", &types.PagingError{Param: "pageSize", Value: pageSize, Min: 1})
	}

	h, err := s.engine.Open(ctx)
	if err != nil {
		return nil, s.wrap("page", err)
	}
	defer h.Close()

	total, err := h.Count(ctx)
	if err != nil {
		return nil, s.wrap("page", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.wrap("page", err)
	}
	recs, err := h.Scan(ctx, skipFor(page, pageSize), pageSize)
	if err != nil {
		return nil, s.wrap("page", err)
	}

	items, err := s.toEntities(recs)
	if err != nil {
		return nil, s.wrap("page", err)
	}
	return types.NewPagedResult(items, total, page, pageSize)
}

// skipFor returns (page-1)*pageSize, saturating instead of overflowing.
func skipFor(page, pageSize int) int {
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

func (s *Service[E, K, D, DK]) toEntity(rec D) (E, error) {
	var zero E
	e, err := mapping.Map[D, E](s.mapper, rec)
	if err != nil {
		return zero, err
	}
	id, err := s.keys.ToAppKey(rec.GetID())
	if err != nil {
		return zero, err
	}
	e.SetID(id)
	return e, nil
}

func (s *Service[E, K, D, DK]) toEntities(recs []D) ([]E, error) {
	out := make([]E, 0, len(recs))
	for _, rec := range recs {
		e, err := s.toEntity(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Service[E, K, D, DK]) wrap(op string, err error) error {
	return fmt.Errorf("%s %s: %w", op, s.name, err)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func entityName[E any]() string {
	t := reflect.TypeFor[E]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
