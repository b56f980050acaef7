package mapping

import (
	"fmt"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// MissingMapError reports that no translation is registered for a pair.
// It is a configuration error, not a failure of a translation.
type MissingMapError struct {
	From string
	To   string
}

// Error implements the error interface.
func (e *MissingMapError) Error() string {
	return fmt.Sprintf("mapping: no translation from %s to %s is registered; "+
		"add one with mapping.Register[%s, %s](m, fn) at composition time",
		e.From, e.To, e.From, e.To)
}

// Unwrap returns types.ErrMissingMapping.
func (e *MissingMapError) Unwrap() error { return types.ErrMissingMapping }

// MapError reports a registered translation that failed.
type MapError struct {
	From string
	To   string
	Err  error
}

// Error implements the error interface.
func (e *MapError) Error() string {
	return fmt.Sprintf("mapping %s -> %s: %v", e.From, e.To, e.Err)
}

// Unwrap returns types.ErrMappingFailed and the underlying cause.
func (e *MapError) Unwrap() []error {
	return []error{types.ErrMappingFailed, e.Err}
}

func missing[S, D any]() *MissingMapError {
	p := pairOf[S, D]()
	return &MissingMapError{From: p.from.String(), To: p.to.String()}
}
