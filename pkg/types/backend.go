package types

import "errors"

// Backend is a storage backend with an explicit attach/detach lifecycle.
// Callers attach to a backend, open typed engines from it, and detach when
// done.
type Backend interface {
	// Attach connects the backend described by config. Returns
	// ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, handle operations return ErrBackendDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
