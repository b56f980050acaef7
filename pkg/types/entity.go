package types

// Entity is implemented by every entity, model and storage record that
// exposes a unique identifier of type K. Implementations are pointer types
// so the identifier can be restored after an overlay mapping.
type Entity[K comparable] interface {
	GetID() K
	SetID(id K)
}

// IsZeroKey reports whether k is the zero value of its type. Zero keys are
// never valid identifiers.
func IsZeroKey[K comparable](k K) bool {
	var zero K
	return k == zero
}
