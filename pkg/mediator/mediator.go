// Package mediator dispatches typed requests to a single registered handler
// after running the validators registered for the request type.
//
// Routes are keyed by the request's Go type. Each request type has exactly
// one handler and any number of validators; validators run in registration
// order and the first failure stops the request before the handler runs.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
)

// Dispatch errors.
var (
	ErrNoHandler        = errors.New("no handler registered")
	ErrDuplicateHandler = errors.New("handler already registered")
	ErrResponseType     = errors.New("response type mismatch")
)

// Handler handles requests of type Req.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Handle calls f.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// Validator checks a request before it reaches its handler.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) error
}

type route struct {
	request    reflect.Type
	response   reflect.Type
	handler    any
	validators []any
}

// Mediator holds the routes. Register routes at composition time; Send is
// safe for concurrent use.
type Mediator struct {
	mu     sync.RWMutex
	routes map[reflect.Type]*route
}

// New returns an empty Mediator.
func New() *Mediator {
	return &Mediator{routes: make(map[reflect.Type]*route)}
}

func (m *Mediator) routeFor(req reflect.Type) *route {
	r, ok := m.routes[req]
	if !ok {
		r = &route{request: req}
		m.routes[req] = r
	}
	return r
}

// Handle registers h for Req. A second handler for the same request type
// fails with ErrDuplicateHandler.
func Handle[Req, Resp any](m *Mediator, h Handler[Req, Resp]) error {
	req := reflect.TypeFor[Req]()
	if h == nil {
		return fmt.Errorf("mediator: nil handler for %s", req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.routeFor(req)
	if r.handler != nil {
		return fmt.Errorf("mediator: %s: %w", req, ErrDuplicateHandler)
	}
	r.handler = h
	r.response = reflect.TypeFor[Resp]()
	return nil
}

// AddValidator appends v to the validators of Req. Validators may be added
// before or after the handler.
func AddValidator[Req any](m *Mediator, v Validator[Req]) error {
	req := reflect.TypeFor[Req]()
	if v == nil {
		return fmt.Errorf("mediator: nil validator for %s", req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.routeFor(req)
	r.validators = append(r.validators, v)
	return nil
}

// Send validates req and passes it to its handler.
func Send[Req, Resp any](ctx context.Context, m *Mediator, req Req) (Resp, error) {
	var zero Resp
	reqType := reflect.TypeFor[Req]()

	m.mu.RLock()
	r, ok := m.routes[reqType]
	var (
		handler    any
		validators []any
	)
	if ok {
		handler = r.handler
		validators = slices.Clone(r.validators)
	}
	m.mu.RUnlock()

	if handler == nil {
		return zero, fmt.Errorf("mediator: %s: %w", reqType, ErrNoHandler)
	}
	h, ok := handler.(Handler[Req, Resp])
	if !ok {
		return zero, fmt.Errorf("mediator: %s is handled with %s, not %s: %w",
			reqType, r.response, reflect.TypeFor[Resp](), ErrResponseType)
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	log := ctxlog.FromContext(ctx)
	for _, raw := range validators {
		if err := raw.(Validator[Req]).Validate(ctx, req); err != nil {
			log.Debug("request rejected", "request", reqType.String(), "error", err)
			return zero, err
		}
	}

	log.Debug("dispatching request", "request", reqType.String())
	return h.Handle(ctx, req)
}

// Has reports whether a handler is registered for Req.
func Has[Req any](m *Mediator) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.routes[reflect.TypeFor[Req]()]
	return ok && r.handler != nil
}

// Route describes one registered request type.
type Route struct {
	Request    reflect.Type
	Response   reflect.Type
	Validators int
}

// String implements fmt.Stringer.
func (r Route) String() string {
	return fmt.Sprintf("%s -> %s (%d validators)", r.Request, r.Response, r.Validators)
}

// Routes lists every request type that has a handler, sorted by request
// type name.
func (m *Mediator) Routes() []Route {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Route, 0, len(m.routes))
	for _, r := range m.routes {
		if r.handler == nil {
			continue
		}
		out = append(out, Route{Request: r.request, Response: r.response, Validators: len(r.validators)})
	}
	slices.SortFunc(out, func(a, b Route) int {
		return strings.Compare(a.Request.String(), b.Request.String())
	})
	return out
}
