// Package handlers wires CRUD requests for one entity type into a
// mediator.Mediator: a request type, its handler and its validator for each
// of create, update, delete, get-by-id, get-all and get-paged.
//
// Request types carry the entity type as a type parameter even where no
// field uses it, so the requests of different entities sharing a key type
// route separately.
package handlers

import (
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// CreateCommand asks for a new E built from Model. Its response is the new
// key.
type CreateCommand[C any, E types.Entity[K], K comparable] struct {
	Model C
}

// UpdateCommand asks to overlay Model onto the E with Model's key. Its
// response is that key.
type UpdateCommand[U types.Entity[K], E types.Entity[K], K comparable] struct {
	Model U
}

// DeleteCommand asks to delete the E stored under ID.
type DeleteCommand[E types.Entity[K], K comparable] struct {
	ID K
}

// GetByIDQuery asks for the E stored under ID. Its response is a Lookup.
type GetByIDQuery[E types.Entity[K], K comparable] struct {
	ID K
}

// GetAllQuery asks for every E.
type GetAllQuery[E types.Entity[K], K comparable] struct{}

// GetPagedQuery asks for one page of E. Page is 1-based.
type GetPagedQuery[E types.Entity[K], K comparable] struct {
	Page     int
	PageSize int
}

// Lookup is the response to GetByIDQuery.
type Lookup[E any] struct {
	Entity E
	Found  bool
}

// Empty is the response to DeleteCommand.
type Empty struct{}
