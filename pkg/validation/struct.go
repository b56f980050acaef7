package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// New returns a go-playground validator that reports field names as
// written in Go.
func New() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// Struct returns a validator that checks `validate` struct tags on T with
// v. A nil v uses New.
func Struct[T any](v *validator.Validate) Validator[T] {
	if v == nil {
		v = New()
	}
	return Func[T](func(ctx context.Context, value T) error {
		err := v.StructCtx(ctx, value)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			out := make(Errors, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				out = append(out, Failure{Field: fe.Field(), Message: message(fe)})
			}
			return out
		}
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return Errors{{Message: "value is missing"}}
		}
		return err
	})
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid", "uuid4", "uuid7":
		return "must be a UUID"
	case "email":
		return "must be an email address"
	}
	return fmt.Sprintf("failed the %q rule", fe.Tag())
}
