// Package mapping translates records between two structurally different
// shapes, such as an application entity and its storage record.
//
// Translations are registered per (source, destination) pair as overlay
// functions that copy a source onto an existing destination. Map allocates a
// fresh destination and applies the overlay; Overlay applies it to a
// destination the caller already holds. Destinations are pointer types.
//
// A pair with no registered translation fails with a *MissingMapError that
// names both types, distinct from a *MapError raised by a translation that
// ran and failed.
package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Func copies src onto dst.
type Func[S, D any] func(src S, dst D) error

type pair struct {
	from reflect.Type
	to   reflect.Type
}

// Mapper holds the registered translations. The zero value is not usable;
// call New. A Mapper is safe for concurrent use once configured.
type Mapper struct {
	mu    sync.RWMutex
	funcs map[pair]any
}

// New returns an empty Mapper.
func New() *Mapper {
	return &Mapper{funcs: make(map[pair]any)}
}

// ErrNotPointer is returned by Register when the destination type is not a
// pointer, since Map could not allocate it.
var ErrNotPointer = errors.New("mapping destination must be a pointer type")

// Register installs fn as the translation from S to D, replacing any
// previous translation for the pair.
func Register[S, D any](m *Mapper, fn Func[S, D]) error {
	p := pairOf[S, D]()
	if p.to.Kind() != reflect.Pointer {
		return fmt.Errorf("register %s -> %s: %w", p.from, p.to, ErrNotPointer)
	}
	if fn == nil {
		return fmt.Errorf("register %s -> %s: nil mapping function", p.from, p.to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[p] = fn
	return nil
}

// Has reports whether a translation from S to D is registered.
func Has[S, D any](m *Mapper) bool {
	_, ok := lookup[S, D](m)
	return ok
}

// EnsureMapping fails with a *MissingMapError when no translation from S to
// D is registered. Call it at composition time so a missing translation is
// reported before the first request.
func EnsureMapping[S, D any](m *Mapper) error {
	if !Has[S, D](m) {
		return missing[S, D]()
	}
	return nil
}

// Map allocates a new D and copies src onto it.
func Map[S, D any](m *Mapper, src S) (D, error) {
	var zero D
	fn, ok := lookup[S, D](m)
	if !ok {
		return zero, missing[S, D]()
	}
	p := pairOf[S, D]()
	dst := reflect.New(p.to.Elem()).Interface().(D)
	if err := apply(fn, src, dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// MapAll maps every element of src. The result is never nil.
func MapAll[S, D any](m *Mapper, src []S) ([]D, error) {
	out := make([]D, 0, len(src))
	for i, s := range src {
		d, err := Map[S, D](m, s)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Overlay copies src onto the existing dst.
func Overlay[S, D any](m *Mapper, src S, dst D) error {
	fn, ok := lookup[S, D](m)
	if !ok {
		return missing[S, D]()
	}
	if isNil(dst) {
		return &MapError{From: pairOf[S, D]().from.String(), To: pairOf[S, D]().to.String(), Err: errors.New("nil destination")}
	}
	return apply(fn, src, dst)
}

func lookup[S, D any](m *Mapper) (Func[S, D], bool) {
	m.mu.RLock()
	raw, ok := m.funcs[pairOf[S, D]()]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return raw.(Func[S, D]), true
}

// apply runs fn and converts failures and panics into a *MapError.
func apply[S, D any](fn Func[S, D], src S, dst D) (err error) {
	p := pairOf[S, D]()
	defer func() {
		if rec := recover(); rec != nil {
			err = &MapError{From: p.from.String(), To: p.to.String(), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if isNil(src) {
		return &MapError{From: p.from.String(), To: p.to.String(), Err: errors.New("nil source")}
	}
	if err := fn(src, dst); err != nil {
		return &MapError{From: p.from.String(), To: p.to.String(), Err: err}
	}
	return nil
}

func pairOf[S, D any]() pair {
	return pair{
		from: reflect.TypeOf((*S)(nil)).Elem(),
		to:   reflect.TypeOf((*D)(nil)).Elem(),
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
