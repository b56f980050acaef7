package keymap

// Identity maps a key to itself. The zero value of T is rejected in both
// directions since it never identifies a stored record.
type Identity[T comparable] struct{}

var _ KeyMapper[string, string] = Identity[string]{}

// ToDBKey implements KeyMapper.
func (Identity[T]) ToDBKey(appKey T) (T, error) {
	var zero T
	if appKey == zero {
		return zero, unmappable[T](ToDB, appKey, "application key must not be empty", nil)
	}
	return appKey, nil
}

// ToAppKey implements KeyMapper.
func (Identity[T]) ToAppKey(dbKey T) (T, error) {
	var zero T
	if dbKey == zero {
		return zero, unmappable[T](ToApp, dbKey, "database key must not be empty", nil)
	}
	return dbKey, nil
}
