// Package keymap translates entity identifiers between their application
// representation and their storage representation.
//
// Every mapper is pure and safe for concurrent use. A mapper never
// substitutes a sentinel key: input that cannot be represented in the
// target type is reported as an *Error wrapping types.ErrUnmappableKey.
package keymap

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// KeyMapper converts application keys of type A to storage keys of type D
// and back.
type KeyMapper[A, D any] interface {
	ToDBKey(appKey A) (D, error)
	ToAppKey(dbKey D) (A, error)
}

// Direction names which way a failed translation was going.
type Direction string

// Translation directions.
const (
	ToDB  Direction = "app->db"
	ToApp Direction = "db->app"
)

// Error reports a key that cannot be represented in the target key type.
type Error struct {
	Direction Direction
	Input     any
	Target    string
	Reason    string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("keymap %s: cannot map %q to %s", e.Direction, fmt.Sprint(e.Input), e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns types.ErrUnmappableKey and the underlying parse error, if any.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{types.ErrUnmappableKey, e.Err}
	}
	return []error{types.ErrUnmappableKey}
}

func unmappable[T any](dir Direction, input any, reason string, cause error) *Error {
	return &Error{
		Direction: dir,
		Input:     input,
		Target:    typeName[T](),
		Reason:    reason,
		Err:       cause,
	}
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}

// Func adapts a pair of functions to KeyMapper.
type Func[A, D any] struct {
	Forward  func(A) (D, error)
	Backward func(D) (A, error)
}

// ToDBKey implements KeyMapper.
func (f Func[A, D]) ToDBKey(appKey A) (D, error) { return f.Forward(appKey) }

// ToAppKey implements KeyMapper.
func (f Func[A, D]) ToAppKey(dbKey D) (A, error) { return f.Backward(dbKey) }
