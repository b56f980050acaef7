package types

import (
	"errors"
	"fmt"
)

// CRUD operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrUnmappableKey = errors.New("unmappable key")
	ErrInvalidPaging = errors.New("invalid paging parameter")
	ErrKeyAssignment = errors.New("storage cannot assign a key")
	ErrInvalidData   = errors.New("invalid entity data")
)

// Composition-time errors.
var (
	ErrNotAssignable  = errors.New("implementation does not satisfy interface")
	ErrMissingMapping = errors.New("missing shape mapping")
	ErrMappingFailed  = errors.New("shape mapping failed")
	ErrValidation     = errors.New("validation failed")
)

// NotFoundError reports that no entity of the named type exists under Key.
type NotFoundError struct {
	Entity string
	Key    any
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to find %s with ID %q", e.Entity, fmt.Sprint(e.Key))
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PagingError reports a page or page size outside its valid range.
type PagingError struct {
	Param string
	Value int
	Min   int
}

// Error implements the error interface.
func (e *PagingError) Error() string {
	return fmt.Sprintf("%s must be at least %d, got %d", e.Param, e.Min, e.Value)
}

// Unwrap returns ErrInvalidPaging.
func (e *PagingError) Unwrap() error { return ErrInvalidPaging }
