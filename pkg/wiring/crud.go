package wiring

import (
	"reflect"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Shapes of the CRUD contracts in pkg/types.
const (
	ShapeCreator        Shape = "Creator"
	ShapeUpdater        Shape = "Updater"
	ShapeDeleter        Shape = "Deleter"
	ShapeByIDGetter     Shape = "ByIDGetter"
	ShapeAllGetter      Shape = "AllGetter"
	ShapePagedGetter    Shape = "PagedGetter"
	ShapeCommandService Shape = "CommandService"
	ShapeQueryService   Shape = "QueryService"
	ShapeEntityService  Shape = "EntityService"
)

// CreateContract is the node for types.Creator[E, K].
func CreateContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.Creator[E, K]](ShapeCreator, TypeArgs[E, K]())
}

// UpdateContract is the node for types.Updater[E, K].
func UpdateContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.Updater[E, K]](ShapeUpdater, TypeArgs[E, K]())
}

// DeleteContract is the node for types.Deleter[E, K].
func DeleteContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.Deleter[E, K]](ShapeDeleter, TypeArgs[E, K]())
}

// GetByIDContract is the node for types.ByIDGetter[E, K].
func GetByIDContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.ByIDGetter[E, K]](ShapeByIDGetter, TypeArgs[E, K]())
}

// GetAllContract is the node for types.AllGetter[E, K].
func GetAllContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.AllGetter[E, K]](ShapeAllGetter, TypeArgs[E, K]())
}

// GetPagedContract is the node for types.PagedGetter[E, K].
func GetPagedContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.PagedGetter[E, K]](ShapePagedGetter, TypeArgs[E, K]())
}

// CommandServiceContract extends the create, update and delete contracts.
func CommandServiceContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.CommandService[E, K]](ShapeCommandService, TypeArgs[E, K](),
		CreateContract[E, K](),
		UpdateContract[E, K](),
		DeleteContract[E, K](),
	)
}

// QueryServiceContract extends the get-by-id, get-all and get-paged
// contracts.
func QueryServiceContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.QueryService[E, K]](ShapeQueryService, TypeArgs[E, K](),
		GetByIDContract[E, K](),
		GetAllContract[E, K](),
		GetPagedContract[E, K](),
	)
}

// EntityServiceContract extends both composites.
func EntityServiceContract[E types.Entity[K], K comparable]() *Contract {
	return NewContract[types.EntityService[E, K]](ShapeEntityService, TypeArgs[E, K](),
		CommandServiceContract[E, K](),
		QueryServiceContract[E, K](),
	)
}

// AddCommandService registers T as the command service for E together with
// each narrow write capability. Entries are Transient unless overridden.
func AddCommandService[T any, E types.Entity[K], K comparable](r *Registry, opts ...Option) error {
	o := newOptions(Transient, opts)
	_, err := r.RecursiveAdd(CommandServiceContract[E, K](), reflect.TypeFor[T](), WithLifetime(o.lifetime))
	return err
}

// AddQueryService registers T as the query service for E together with each
// narrow read capability. Entries are Transient unless overridden.
func AddQueryService[T any, E types.Entity[K], K comparable](r *Registry, opts ...Option) error {
	o := newOptions(Transient, opts)
	_, err := r.RecursiveAdd(QueryServiceContract[E, K](), reflect.TypeFor[T](), WithLifetime(o.lifetime))
	return err
}

// ScanCommandAndQueryServices scans pool for command and query services.
func ScanCommandAndQueryServices(r *Registry, pool []Candidate, opts ...Option) (int, error) {
	return r.Scan(pool, []Shape{ShapeCommandService, ShapeQueryService}, opts...)
}
