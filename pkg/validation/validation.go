// Package validation defines typed validators, a registry keyed by the
// validated type, and a container validator that delegates to whatever is
// registered for a model type.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Validator checks a value of type T. A failed check returns Errors.
type Validator[T any] interface {
	Validate(ctx context.Context, v T) error
}

// Func adapts a function to Validator.
type Func[T any] func(ctx context.Context, v T) error

// Validate calls f.
func (f Func[T]) Validate(ctx context.Context, v T) error { return f(ctx, v) }

// Failure is one failed rule.
type Failure struct {
	Field   string
	Message string
}

// String renders the failure as "Field: message".
func (f Failure) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// Errors is the error returned by a failed validation. It wraps
// types.ErrValidation.
type Errors []Failure

// Error implements the error interface.
func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, f := range e {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns types.ErrValidation.
func (e Errors) Unwrap() error { return types.ErrValidation }

// Check returns Errors holding one failure when ok is false, else nil.
func Check(ok bool, field, message string) error {
	if ok {
		return nil
	}
	return Errors{{Field: field, Message: message}}
}

// All runs every validator and merges their Errors. A non-validation error
// stops the run and is returned as is.
func All[T any](validators ...Validator[T]) Validator[T] {
	return Func[T](func(ctx context.Context, v T) error {
		var merged Errors
		for _, val := range validators {
			err := val.Validate(ctx, v)
			if err == nil {
				continue
			}
			var verrs Errors
			if !errors.As(err, &verrs) {
				return err
			}
			merged = append(merged, verrs...)
		}
		if len(merged) == 0 {
			return nil
		}
		return merged
	})
}

// ErrNoValidator is wrapped by MissingValidatorError.
var ErrNoValidator = errors.New("no validator registered")

// MissingValidatorError reports that a container validator found nothing
// registered for the model type.
type MissingValidatorError struct {
	Type string
}

// Error implements the error interface.
func (e *MissingValidatorError) Error() string {
	return fmt.Sprintf("no validator registered for %s; register one with validation.Register[%s]", e.Type, e.Type)
}

// Unwrap returns ErrNoValidator.
func (e *MissingValidatorError) Unwrap() error { return ErrNoValidator }

// Registry holds at most one validator per validated type.
type Registry struct {
	validators map[reflect.Type]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[reflect.Type]any)}
}

// Register installs v as the validator for T, replacing any previous one.
func Register[T any](r *Registry, v Validator[T]) {
	r.validators[reflect.TypeFor[T]()] = v
}

// Lookup returns the validator registered for T.
func Lookup[T any](r *Registry) (Validator[T], bool) {
	raw, ok := r.validators[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return raw.(Validator[T]), true
}

// Delegate returns a container validator that runs the validator registered
// for T at validation time. When none is registered it fails with a
// *MissingValidatorError naming T.
func Delegate[T any](r *Registry) Validator[T] {
	return Func[T](func(ctx context.Context, v T) error {
		inner, ok := Lookup[T](r)
		if !ok {
			return &MissingValidatorError{Type: reflect.TypeFor[T]().String()}
		}
		return inner.Validate(ctx, v)
	})
}
