// Package catalog is the composition root of the entityaxis CLI: a small
// product and order domain wired through the generic CRUD services, the
// mediator handlers and the discovery registry.
package catalog

import (
	"time"

	"github.com/mesh-intelligence/entityaxis/pkg/crud"
)

// Product is a sellable item. Its ID is the decimal form of the storage key.
type Product struct {
	ID         string
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
	Tags       []string
	Created    time.Time
}

// GetID and SetID implement types.Entity.
func (p *Product) GetID() string   { return p.ID }
func (p *Product) SetID(id string) { p.ID = id }

// ProductRecord is the stored form of a Product.
type ProductRecord struct {
	ID         int       `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	Tags       []string  `json:"tags,omitempty"`
	Created    time.Time `json:"created"`
}

// GetID and SetID implement types.Entity.
func (r *ProductRecord) GetID() int   { return r.ID }
func (r *ProductRecord) SetID(id int) { r.ID = id }

// NewProduct is the create model.
type NewProduct struct {
	SKU        string   `validate:"required,min=3,max=32"`
	Name       string   `validate:"required,max=100"`
	PriceCents int64    `validate:"min=0"`
	Stock      int      `validate:"min=0"`
	Tags       []string `validate:"max=8,dive,required"`
}

// ProductUpdate is the update model. SKU and creation time are fixed.
type ProductUpdate struct {
	ID         string   `validate:"required"`
	Name       string   `validate:"required,max=100"`
	PriceCents int64    `validate:"min=0"`
	Stock      int      `validate:"min=0"`
	Tags       []string `validate:"max=8,dive,required"`
}

// GetID and SetID implement types.Entity.
func (u *ProductUpdate) GetID() string   { return u.ID }
func (u *ProductUpdate) SetID(id string) { u.ID = id }

// ProductService is the CRUD service for products.
type ProductService = crud.Service[*Product, string, *ProductRecord, int]
