package types

import "context"

// Creator persists a new entity and returns the key assigned to it.
type Creator[E Entity[K], K comparable] interface {
	Create(ctx context.Context, entity E) (K, error)
}

// Updater overwrites an existing entity. The returned key always equals
// entity.GetID(); identity is never changed by an update.
type Updater[E Entity[K], K comparable] interface {
	Update(ctx context.Context, entity E) (K, error)
}

// Deleter removes an entity. Deleting an absent entity succeeds.
type Deleter[E Entity[K], K comparable] interface {
	Delete(ctx context.Context, id K) error
}

// ByIDGetter looks up a single entity. ok is false when no entity exists
// with that key.
type ByIDGetter[E Entity[K], K comparable] interface {
	GetByID(ctx context.Context, id K) (entity E, ok bool, err error)
}

// AllGetter returns every entity. Ordering is whatever storage provides.
type AllGetter[E Entity[K], K comparable] interface {
	GetAll(ctx context.Context) ([]E, error)
}

// PagedGetter returns one page of entities. page is 1-based.
type PagedGetter[E Entity[K], K comparable] interface {
	GetPaged(ctx context.Context, page, pageSize int) (*PagedResult[E], error)
}

// CommandService bundles the write capabilities for one entity type.
type CommandService[E Entity[K], K comparable] interface {
	Creator[E, K]
	Updater[E, K]
	Deleter[E, K]
}

// QueryService bundles the read capabilities for one entity type.
type QueryService[E Entity[K], K comparable] interface {
	ByIDGetter[E, K]
	AllGetter[E, K]
	PagedGetter[E, K]
}

// EntityService is the full command and query surface for one entity type.
type EntityService[E Entity[K], K comparable] interface {
	CommandService[E, K]
	QueryService[E, K]
}
