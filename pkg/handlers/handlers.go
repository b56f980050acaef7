package handlers

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// CreateHandler maps the create model to a new entity and creates it.
type CreateHandler[C any, E types.Entity[K], K comparable] struct {
	creator types.Creator[E, K]
	mapper  *mapping.Mapper
}

// Handle implements mediator.Handler.
func (h *CreateHandler[C, E, K]) Handle(ctx context.Context, cmd CreateCommand[C, E, K]) (K, error) {
	var zero K
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	entity, err := mapping.Map[C, E](h.mapper, cmd.Model)
	if err != nil {
		return zero, err
	}
	return h.creator.Create(ctx, entity)
}

// UpdateHandler loads the entity named by the update model, overlays the
// model onto it, restores the loaded key and saves it.
type UpdateHandler[U types.Entity[K], E types.Entity[K], K comparable] struct {
	getter  types.ByIDGetter[E, K]
	updater types.Updater[E, K]
	mapper  *mapping.Mapper
}

// Handle implements mediator.Handler. It returns the loaded key.
func (h *UpdateHandler[U, E, K]) Handle(ctx context.Context, cmd UpdateCommand[U, E, K]) (K, error) {
	var zero K
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if isNil(cmd.Model) {
		return zero, fmt.Errorf("update %s: nil model: %w", typeName[E](), types.ErrInvalidData)
	}

	id := cmd.Model.GetID()
	entity, ok, err := h.getter.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, &types.NotFoundError{Entity: typeName[E](), Key: id}
	}

	original := entity.GetID()
	if err := mapping.Overlay[U, E](h.mapper, cmd.Model, entity); err != nil {
		return zero, err
	}
	entity.SetID(original)

	return h.updater.Update(ctx, entity)
}

// DeleteHandler deletes through the service, which treats an absent entity
// as already deleted.
type DeleteHandler[E types.Entity[K], K comparable] struct {
	deleter types.Deleter[E, K]
}

// Handle implements mediator.Handler.
func (h *DeleteHandler[E, K]) Handle(ctx context.Context, cmd DeleteCommand[E, K]) (Empty, error) {
	if err := ctx.Err(); err != nil {
		return Empty{}, err
	}
	return Empty{}, h.deleter.Delete(ctx, cmd.ID)
}

// GetByIDHandler answers GetByIDQuery with a Lookup.
type GetByIDHandler[E types.Entity[K], K comparable] struct {
	getter types.ByIDGetter[E, K]
}

// Handle implements mediator.Handler.
func (h *GetByIDHandler[E, K]) Handle(ctx context.Context, q GetByIDQuery[E, K]) (Lookup[E], error) {
	if err := ctx.Err(); err != nil {
		return Lookup[E]{}, err
	}
	e, ok, err := h.getter.GetByID(ctx, q.ID)
	if err != nil {
		return Lookup[E]{}, err
	}
	return Lookup[E]{Entity: e, Found: ok}, nil
}

// GetAllHandler answers GetAllQuery.
type GetAllHandler[E types.Entity[K], K comparable] struct {
	getter types.AllGetter[E, K]
}

// Handle implements mediator.Handler.
func (h *GetAllHandler[E, K]) Handle(ctx context.Context, _ GetAllQuery[E, K]) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.getter.GetAll(ctx)
}

// GetPagedHandler answers GetPagedQuery.
type GetPagedHandler[E types.Entity[K], K comparable] struct {
	getter types.PagedGetter[E, K]
}

// Handle implements mediator.Handler.
func (h *GetPagedHandler[E, K]) Handle(ctx context.Context, q GetPagedQuery[E, K]) (*types.PagedResult[E], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.getter.GetPaged(ctx, q.Page, q.PageSize)
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
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
