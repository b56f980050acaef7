package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// NewMapper returns the shape mapper holding every catalog translation.
// Keys are never copied by name; the CRUD service and handlers own them.
func NewMapper() (*mapping.Mapper, error) {
	m := mapping.New()
	err := errors.Join(
		mapping.Register[*Product, *ProductRecord](m, mapping.ByName[*Product, *ProductRecord]("ID")),
		mapping.Register[*ProductRecord, *Product](m, mapping.ByName[*ProductRecord, *Product]("ID")),
		mapping.Register[*NewProduct, *Product](m, mapping.Func[*NewProduct, *Product](newProduct)),
		mapping.Register[*ProductUpdate, *Product](m, mapping.ByName[*ProductUpdate, *Product]("ID")),

		mapping.Register[*Order, *OrderRecord](m, mapping.ByName[*Order, *OrderRecord]("ID")),
		mapping.Register[*OrderRecord, *Order](m, mapping.ByName[*OrderRecord, *Order]("ID")),
		mapping.Register[*NewOrder, *Order](m, mapping.Func[*NewOrder, *Order](newOrder)),
		mapping.Register[*OrderUpdate, *Order](m, mapping.ByName[*OrderUpdate, *Order]("ID")),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newProduct(src *NewProduct, dst *Product) error {
	dst.SKU = strings.ToUpper(strings.TrimSpace(src.SKU))
	dst.Name = strings.TrimSpace(src.Name)
	dst.PriceCents = src.PriceCents
	dst.Stock = src.Stock
	dst.Tags = append([]string(nil), src.Tags...)
	dst.Created = now()
	return nil
}

func newOrder(src *NewOrder, dst *Order) error {
	dst.ProductID = src.ProductID
	dst.Quantity = src.Quantity
	dst.Status = StatusPending
	return nil
}
