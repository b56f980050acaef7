package wiring

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Lifetime tells a resolver how long an instance lives.
type Lifetime int

// Lifetimes.
const (
	Transient Lifetime = iota
	Scoped
	Singleton
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	}
	return fmt.Sprintf("Lifetime(%d)", int(l))
}

// ParseLifetime is the inverse of Lifetime.String.
func ParseLifetime(s string) (Lifetime, error) {
	for _, l := range []Lifetime{Transient, Scoped, Singleton} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown lifetime %q", s)
}

// ErrNotInterface is returned when a service type is not an interface.
var ErrNotInterface = errors.New("service type is not an interface")

// NotAssignableError reports an implementation registered against an
// interface it does not satisfy.
type NotAssignableError struct {
	Service        reflect.Type
	Implementation reflect.Type
}

// Error implements the error interface.
func (e *NotAssignableError) Error() string {
	return fmt.Sprintf("wiring: %s does not implement %s", e.Implementation, e.Service)
}

// Unwrap returns types.ErrNotAssignable.
func (e *NotAssignableError) Unwrap() error { return types.ErrNotAssignable }

// Entry is one registration.
type Entry struct {
	Service        reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime
}

// String renders the entry as service -> implementation (lifetime).
func (e Entry) String() string {
	return fmt.Sprintf("%s -> %s (%s)", e.Service, e.Implementation, e.Lifetime)
}

type entryKey struct {
	service reflect.Type
	impl    reflect.Type
}

// Registry records which implementation serves which interface. It holds at
// most one entry per (service, implementation) pair. A Registry is filled at
// composition time from a single goroutine and is not safe for concurrent
// mutation.
type Registry struct {
	entries []Entry
	index   map[entryKey]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[entryKey]int)}
}

// Add registers impl as an implementation of service. It reports whether a
// new entry was recorded; adding a pair that is already present is a no-op
// that keeps the original lifetime.
func (r *Registry) Add(service, impl reflect.Type, lifetime Lifetime) (bool, error) {
	if err := assignable(service, impl); err != nil {
		return false, err
	}

	k := entryKey{service: service, impl: impl}
	if _, ok := r.index[k]; ok {
		return false, nil
	}
	r.index[k] = len(r.entries)
	r.entries = append(r.entries, Entry{Service: service, Implementation: impl, Lifetime: lifetime})
	return true, nil
}

// assignable checks that service is an interface type impl implements.
func assignable(service, impl reflect.Type) error {
	if service == nil || impl == nil {
		return errors.New("wiring: nil service or implementation type")
	}
	if service.Kind() != reflect.Interface {
		return fmt.Errorf("wiring: %s: %w", service, ErrNotInterface)
	}
	if !impl.Implements(service) {
		return &NotAssignableError{Service: service, Implementation: impl}
	}
	return nil
}

// RecursiveAdd registers impl against c and every contract c transitively
// extends. It returns the number of new entries. The whole closure is
// checked first, so a failure leaves the registry unchanged.
func (r *Registry) RecursiveAdd(c *Contract, impl reflect.Type, opts ...Option) (int, error) {
	o := newOptions(Scoped, opts)
	if c == nil {
		return 0, nil
	}
	for _, n := range c.Ancestors() {
		if err := assignable(n.Type, impl); err != nil {
			return 0, err
		}
	}
	return r.climb(c, impl, o.lifetime, make(map[reflect.Type]bool))
}

func (r *Registry) climb(c *Contract, impl reflect.Type, lifetime Lifetime, visited map[reflect.Type]bool) (int, error) {
	if c == nil || visited[c.Type] {
		return 0, nil
	}
	visited[c.Type] = true

	added := 0
	ok, err := r.Add(c.Type, impl, lifetime)
	if err != nil {
		return added, err
	}
	if ok {
		added++
	}
	for _, parent := range c.Extends {
		n, err := r.climb(parent, impl, lifetime, visited)
		added += n
		if err != nil {
			return added, err
		}
	}
	return added, nil
}

// Entries returns a copy of the entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Has reports whether impl is registered for service.
func (r *Registry) Has(service, impl reflect.Type) bool {
	_, ok := r.index[entryKey{service: service, impl: impl}]
	return ok
}

// Lookup returns the entry for the pair.
func (r *Registry) Lookup(service, impl reflect.Type) (Entry, bool) {
	i, ok := r.index[entryKey{service: service, impl: impl}]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Implementations returns every implementation registered for service, in
// registration order.
func (r *Registry) Implementations(service reflect.Type) []reflect.Type {
	var out []reflect.Type
	for _, e := range r.entries {
		if e.Service == service {
			out = append(out, e.Implementation)
		}
	}
	return out
}

// Option configures a registration pass.
type Option func(*options)

type options struct {
	lifetime Lifetime
}

// WithLifetime overrides the lifetime given to every entry of the pass.
func WithLifetime(l Lifetime) Option {
	return func(o *options) { o.lifetime = l }
}

func newOptions(def Lifetime, opts []Option) options {
	o := options{lifetime: def}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
