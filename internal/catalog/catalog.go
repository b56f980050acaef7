package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/entityaxis/internal/memory"
	"github.com/mesh-intelligence/entityaxis/pkg/crud"
	"github.com/mesh-intelligence/entityaxis/pkg/handlers"
	"github.com/mesh-intelligence/entityaxis/pkg/keymap"
	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
	"github.com/mesh-intelligence/entityaxis/pkg/mediator"
	"github.com/mesh-intelligence/entityaxis/pkg/sqlite"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
	"github.com/mesh-intelligence/entityaxis/pkg/validation"
)

// Table names.
const (
	ProductsTable = "products"
	OrdersTable   = "orders"
)

// ErrNoPorter is returned by Table when the backend cannot export or import.
var ErrNoPorter = errors.New("backend does not support export and import")

// Porter moves one table to and from JSONL.
type Porter interface {
	ExportJSONL(ctx context.Context, w io.Writer) (int, error)
	ImportJSONL(ctx context.Context, r io.Reader) (int, error)
}

// Catalog holds the composed services of one attached backend.
type Catalog struct {
	Mediator *mediator.Mediator
	Products *ProductService
	Orders   *OrderService

	backend types.Backend
	tables  map[string]Porter
}

// Open attaches the backend named by config and composes the catalog on
// top of it. Close detaches it.
func Open(ctx context.Context, config types.Config) (*Catalog, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		products types.Engine[*ProductRecord, int]
		orders   types.Engine[*OrderRecord, uuid.UUID]
		c        = &Catalog{tables: make(map[string]Porter)}
	)
	switch config.Backend {
	case types.BackendMemory:
		products = memory.New[*ProductRecord, int](ProductsTable, memory.IntKeys())
		orders = memory.New[*OrderRecord, uuid.UUID](OrdersTable, memory.UUIDKeys())
	case types.BackendSQLite:
		b := sqlite.NewBackend()
		if err := b.Attach(config); err != nil {
			return nil, err
		}
		c.backend = b
		p, err := sqlite.Collection[*ProductRecord, int](ctx, b, ProductsTable, sqlite.IntKeys())
		if err != nil {
			b.Detach()
			return nil, err
		}
		o, err := sqlite.Collection[*OrderRecord, uuid.UUID](ctx, b, OrdersTable, sqlite.UUIDKeys())
		if err != nil {
			b.Detach()
			return nil, err
		}
		products, orders = p, o
		c.tables[ProductsTable] = p
		c.tables[OrdersTable] = o
	}

	if err := c.compose(products, orders); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) compose(products types.Engine[*ProductRecord, int], orders types.Engine[*OrderRecord, uuid.UUID]) error {
	mapper, err := NewMapper()
	if err != nil {
		return fmt.Errorf("mapping profile: %w", err)
	}
	validators := NewValidators(validation.New())

	c.Products, err = crud.New[*Product, string, *ProductRecord, int](
		products, mapper, keymap.StringToInt{}, crud.WithName("product"))
	if err != nil {
		return err
	}
	c.Orders, err = crud.New[*Order, string, *OrderRecord, uuid.UUID](
		orders, mapper, keymap.StringToUUID{}, crud.WithName("order"))
	if err != nil {
		return err
	}

	c.Mediator = mediator.New()
	return errors.Join(
		handlers.AddHandlers[*NewProduct, *ProductUpdate, *Product, string](c.Mediator,
			commandDeps[*Product, string](c.Products, mapper, validators),
			handlers.QueryDeps[*Product, string]{Queries: c.Products}),
		handlers.AddHandlers[*NewOrder, *OrderUpdate, *Order, string](c.Mediator,
			commandDeps[*Order, string](c.Orders, mapper, validators),
			handlers.QueryDeps[*Order, string]{Queries: c.Orders}),
	)
}

func commandDeps[E types.Entity[K], K comparable](svc types.EntityService[E, K], m *mapping.Mapper, v *validation.Registry) handlers.CommandDeps[E, K] {
	return handlers.CommandDeps[E, K]{Commands: svc, Getter: svc, Mapper: m, Validators: v}
}

// Table returns the JSONL porter of the named table.
func (c *Catalog) Table(name string) (Porter, error) {
	if len(c.tables) == 0 {
		return nil, ErrNoPorter
	}
	p, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return p, nil
}

// Close detaches the backend. It is safe to call more than once.
func (c *Catalog) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Detach()
}
