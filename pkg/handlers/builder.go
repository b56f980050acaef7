package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
	"github.com/mesh-intelligence/entityaxis/pkg/mediator"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
	"github.com/mesh-intelligence/entityaxis/pkg/validation"
)

// CommandDeps are the collaborators of the command handlers for E.
type CommandDeps[E types.Entity[K], K comparable] struct {
	Commands   types.CommandService[E, K]
	Getter     types.ByIDGetter[E, K]
	Mapper     *mapping.Mapper
	Validators *validation.Registry
}

// QueryDeps are the collaborators of the query handlers for E.
type QueryDeps[E types.Entity[K], K comparable] struct {
	Queries types.QueryService[E, K]
}

// CommandBuilder registers the command triples for entity E with create
// model C and update model U. Registration errors are collected and
// reported by Err.
type CommandBuilder[C any, U types.Entity[K], E types.Entity[K], K comparable] struct {
	m    *mediator.Mediator
	deps CommandDeps[E, K]
	errs []error
}

// NewCommandBuilder returns a builder registering into m.
func NewCommandBuilder[C any, U types.Entity[K], E types.Entity[K], K comparable](m *mediator.Mediator, deps CommandDeps[E, K]) *CommandBuilder[C, U, E, K] {
	return &CommandBuilder[C, U, E, K]{m: m, deps: deps}
}

func (b *CommandBuilder[C, U, E, K]) fail(what string, err error) {
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s %s: %w", what, typeName[E](), err))
	}
}

func (b *CommandBuilder[C, U, E, K]) require(what string, ok bool, dep string) bool {
	if !ok {
		b.fail(what, fmt.Errorf("missing %s", dep))
	}
	return ok
}

// AddCreate registers CreateCommand[C, E, K].
func (b *CommandBuilder[C, U, E, K]) AddCreate() *CommandBuilder[C, U, E, K] {
	if !b.require("create", b.deps.Commands != nil && b.deps.Mapper != nil && b.deps.Validators != nil,
		"command service, mapper or validator registry") {
		return b
	}
	b.fail("create", mapping.EnsureMapping[C, E](b.deps.Mapper))
	b.fail("create", mediator.Handle[CreateCommand[C, E, K], K](b.m,
		&CreateHandler[C, E, K]{creator: b.deps.Commands, mapper: b.deps.Mapper}))
	b.fail("create", mediator.AddValidator[CreateCommand[C, E, K]](b.m, CreateValidator[C, E, K](b.deps.Validators)))
	return b
}

// AddUpdate registers UpdateCommand[U, E, K].
func (b *CommandBuilder[C, U, E, K]) AddUpdate() *CommandBuilder[C, U, E, K] {
	if !b.require("update", b.deps.Commands != nil && b.deps.Getter != nil && b.deps.Mapper != nil && b.deps.Validators != nil,
		"command service, getter, mapper or validator registry") {
		return b
	}
	b.fail("update", mapping.EnsureMapping[U, E](b.deps.Mapper))
	b.fail("update", mediator.Handle[UpdateCommand[U, E, K], K](b.m,
		&UpdateHandler[U, E, K]{getter: b.deps.Getter, updater: b.deps.Commands, mapper: b.deps.Mapper}))
	b.fail("update", mediator.AddValidator[UpdateCommand[U, E, K]](b.m, UpdateValidator[U, E, K](b.deps.Validators)))
	return b
}

// AddDelete registers DeleteCommand[E, K].
func (b *CommandBuilder[C, U, E, K]) AddDelete() *CommandBuilder[C, U, E, K] {
	if !b.require("delete", b.deps.Commands != nil, "command service") {
		return b
	}
	b.fail("delete", mediator.Handle[DeleteCommand[E, K], Empty](b.m, &DeleteHandler[E, K]{deleter: b.deps.Commands}))
	b.fail("delete", mediator.AddValidator[DeleteCommand[E, K]](b.m, DeleteValidator[E, K]()))
	return b
}

// AddAll registers create, update and delete.
func (b *CommandBuilder[C, U, E, K]) AddAll() *CommandBuilder[C, U, E, K] {
	return b.AddCreate().AddUpdate().AddDelete()
}

// Err returns the joined registration errors, or nil.
func (b *CommandBuilder[C, U, E, K]) Err() error { return errors.Join(b.errs...) }

// QueryBuilder registers the query triples for entity E.
type QueryBuilder[E types.Entity[K], K comparable] struct {
	m    *mediator.Mediator
	deps QueryDeps[E, K]
	errs []error
}

// NewQueryBuilder returns a builder registering into m.
func NewQueryBuilder[E types.Entity[K], K comparable](m *mediator.Mediator, deps QueryDeps[E, K]) *QueryBuilder[E, K] {
	return &QueryBuilder[E, K]{m: m, deps: deps}
}

func (b *QueryBuilder[E, K]) fail(what string, err error) {
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("%s %s: %w", what, typeName[E](), err))
	}
}

func (b *QueryBuilder[E, K]) ready(what string) bool {
	if b.deps.Queries == nil {
		b.fail(what, errors.New("missing query service"))
		return false
	}
	return true
}

// AddGetByID registers GetByIDQuery[E, K].
func (b *QueryBuilder[E, K]) AddGetByID() *QueryBuilder[E, K] {
	if !b.ready("get-by-id") {
		return b
	}
	b.fail("get-by-id", mediator.Handle[GetByIDQuery[E, K], Lookup[E]](b.m, &GetByIDHandler[E, K]{getter: b.deps.Queries}))
	b.fail("get-by-id", mediator.AddValidator[GetByIDQuery[E, K]](b.m, GetByIDValidator[E, K]()))
	return b
}

// AddGetAll registers GetAllQuery[E, K]. It has no validator.
func (b *QueryBuilder[E, K]) AddGetAll() *QueryBuilder[E, K] {
	if !b.ready("get-all") {
		return b
	}
	b.fail("get-all", mediator.Handle[GetAllQuery[E, K], []E](b.m, &GetAllHandler[E, K]{getter: b.deps.Queries}))
	return b
}

// AddGetPaged registers GetPagedQuery[E, K].
func (b *QueryBuilder[E, K]) AddGetPaged() *QueryBuilder[E, K] {
	if !b.ready("get-paged") {
		return b
	}
	b.fail("get-paged", mediator.Handle[GetPagedQuery[E, K], *types.PagedResult[E]](b.m, &GetPagedHandler[E, K]{getter: b.deps.Queries}))
	b.fail("get-paged", mediator.AddValidator[GetPagedQuery[E, K]](b.m, GetPagedValidator[E, K]()))
	return b
}

// AddAll registers get-by-id, get-all and get-paged.
func (b *QueryBuilder[E, K]) AddAll() *QueryBuilder[E, K] {
	return b.AddGetByID().AddGetAll().AddGetPaged()
}

// Err returns the joined registration errors, or nil.
func (b *QueryBuilder[E, K]) Err() error { return errors.Join(b.errs...) }

// AddHandlers registers every command and query triple for E.
func AddHandlers[C any, U types.Entity[K], E types.Entity[K], K comparable](m *mediator.Mediator, cmd CommandDeps[E, K], q QueryDeps[E, K]) error {
	return errors.Join(
		NewCommandBuilder[C, U, E, K](m, cmd).AddAll().Err(),
		NewQueryBuilder[E, K](m, q).AddAll().Err(),
	)
}

// Create sends a CreateCommand through m.
func Create[C any, E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator, model C) (K, error) {
	return mediator.Send[CreateCommand[C, E, K], K](ctx, m, CreateCommand[C, E, K]{Model: model})
}

// Update sends an UpdateCommand through m.
func Update[U types.Entity[K], E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator, model U) (K, error) {
	return mediator.Send[UpdateCommand[U, E, K], K](ctx, m, UpdateCommand[U, E, K]{Model: model})
}

// Delete sends a DeleteCommand through m.
func Delete[E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator, id K) error {
	_, err := mediator.Send[DeleteCommand[E, K], Empty](ctx, m, DeleteCommand[E, K]{ID: id})
	return err
}

// GetByID sends a GetByIDQuery through m.
func GetByID[E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator, id K) (E, bool, error) {
	res, err := mediator.Send[GetByIDQuery[E, K], Lookup[E]](ctx, m, GetByIDQuery[E, K]{ID: id})
	return res.Entity, res.Found, err
}

// GetAll sends a GetAllQuery through m.
func GetAll[E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator) ([]E, error) {
	return mediator.Send[GetAllQuery[E, K], []E](ctx, m, GetAllQuery[E, K]{})
}

// GetPaged sends a GetPagedQuery through m.
func GetPaged[E types.Entity[K], K comparable](ctx context.Context, m *mediator.Mediator, page, pageSize int) (*types.PagedResult[E], error) {
	return mediator.Send[GetPagedQuery[E, K], *types.PagedResult[E]](ctx, m, GetPagedQuery[E, K]{Page: page, PageSize: pageSize})
}
