package handlers

import (
	"context"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
	"github.com/mesh-intelligence/entityaxis/pkg/validation"
)

// CreateValidator checks the create model with the validator registered
// for C in reg. It fails with a *validation.MissingValidatorError when none
// is registered.
func CreateValidator[C any, E types.Entity[K], K comparable](reg *validation.Registry) validation.Validator[CreateCommand[C, E, K]] {
	inner := validation.Delegate[C](reg)
	return validation.Func[CreateCommand[C, E, K]](func(ctx context.Context, cmd CreateCommand[C, E, K]) error {
		if isNil(cmd.Model) {
			return validation.Errors{{Field: "Model", Message: "is required"}}
		}
		return inner.Validate(ctx, cmd.Model)
	})
}

// UpdateValidator checks the update model with the validator registered
// for U in reg.
func UpdateValidator[U types.Entity[K], E types.Entity[K], K comparable](reg *validation.Registry) validation.Validator[UpdateCommand[U, E, K]] {
	inner := validation.Delegate[U](reg)
	return validation.Func[UpdateCommand[U, E, K]](func(ctx context.Context, cmd UpdateCommand[U, E, K]) error {
		if isNil(cmd.Model) {
			return validation.Errors{{Field: "Model", Message: "is required"}}
		}
		return inner.Validate(ctx, cmd.Model)
	})
}

// DeleteValidator rejects a zero ID.
func DeleteValidator[E types.Entity[K], K comparable]() validation.Validator[DeleteCommand[E, K]] {
	return validation.Func[DeleteCommand[E, K]](func(_ context.Context, cmd DeleteCommand[E, K]) error {
		return validation.Check(!types.IsZeroKey(cmd.ID), "ID", "is required")
	})
}

// GetByIDValidator rejects a zero ID.
func GetByIDValidator[E types.Entity[K], K comparable]() validation.Validator[GetByIDQuery[E, K]] {
	return validation.Func[GetByIDQuery[E, K]](func(_ context.Context, q GetByIDQuery[E, K]) error {
		return validation.Check(!types.IsZeroKey(q.ID), "ID", "is required")
	})
}

// GetPagedValidator requires Page >= 1 and PageSize > 0, reporting both
// when both are wrong.
func GetPagedValidator[E types.Entity[K], K comparable]() validation.Validator[GetPagedQuery[E, K]] {
	return validation.Func[GetPagedQuery[E, K]](func(_ context.Context, q GetPagedQuery[E, K]) error {
		var errs validation.Errors
		if q.Page < 1 {
			errs = append(errs, validation.Failure{Field: "Page", Message: "page number must be 1 or greater"})
		}
		if q.PageSize < 1 {
			errs = append(errs, validation.Failure{Field: "PageSize", Message: "page size must be greater than zero"})
		}
		if len(errs) == 0 {
			return nil
		}
		return errs
	})
}
