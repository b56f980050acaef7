package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/entityaxis/pkg/validation"
)

// NewValidators returns the model validators of the catalog: the struct
// tags of each model plus the rules tags cannot express.
func NewValidators(v *validator.Validate) *validation.Registry {
	r := validation.NewRegistry()
	validation.Register[*NewProduct](r, validation.All[*NewProduct](
		validation.Struct[*NewProduct](v),
		validation.Func[*NewProduct](func(_ context.Context, p *NewProduct) error {
			return validation.Check(!strings.ContainsAny(p.SKU, " \t"), "SKU", "must not contain spaces")
		}),
	))
	validation.Register[*ProductUpdate](r, validation.All[*ProductUpdate](
		validation.Struct[*ProductUpdate](v),
		validation.Func[*ProductUpdate](func(_ context.Context, p *ProductUpdate) error {
			_, err := strconv.Atoi(p.ID)
			return validation.Check(p.ID == "" || err == nil, "ID", "must be a product number")
		}),
	))
	validation.Register[*NewOrder](r, validation.Struct[*NewOrder](v))
	validation.Register[*OrderUpdate](r, validation.Struct[*OrderUpdate](v))
	return r
}
