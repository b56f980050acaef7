package catalog

import (
	"github.com/google/uuid"

	"github.com/mesh-intelligence/entityaxis/pkg/crud"
)

// Order statuses.
const (
	StatusPending  = "pending"
	StatusPaid     = "paid"
	StatusShipped  = "shipped"
	StatusCanceled = "canceled"
)

// Order is a request for a quantity of one product. Its ID is a UUID string.
type Order struct {
	ID        string
	ProductID string
	Quantity  int
	Status    string
}

// GetID and SetID implement types.Entity.
func (o *Order) GetID() string   { return o.ID }
func (o *Order) SetID(id string) { o.ID = id }

// OrderRecord is the stored form of an Order.
type OrderRecord struct {
	ID        uuid.UUID `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
}

// GetID and SetID implement types.Entity.
func (r *OrderRecord) GetID() uuid.UUID   { return r.ID }
func (r *OrderRecord) SetID(id uuid.UUID) { r.ID = id }

// NewOrder is the create model. New orders start pending.
type NewOrder struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"min=1,max=1000"`
}

// OrderUpdate is the update model.
type OrderUpdate struct {
	ID       string `validate:"required,uuid"`
	Quantity int    `validate:"min=1,max=1000"`
	Status   string `validate:"required,oneof=pending paid shipped canceled"`
}

// GetID and SetID implement types.Entity.
func (u *OrderUpdate) GetID() string   { return u.ID }
func (u *OrderUpdate) SetID(id string) { u.ID = id }

// OrderService is the CRUD service for orders.
type OrderService = crud.Service[*Order, string, *OrderRecord, uuid.UUID]
