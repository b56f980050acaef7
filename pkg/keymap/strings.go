package keymap

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// StringToInt maps decimal string keys to int storage keys. The mapping is
// lossy for non-canonical input ("007" and "7" both map to 7) but the
// forward direction is deterministic. Zero is never a key.
type StringToInt struct{}

var _ KeyMapper[string, int] = StringToInt{}

// ToDBKey implements KeyMapper.
func (StringToInt) ToDBKey(appKey string) (int, error) {
	if strings.TrimSpace(appKey) == "" {
		return 0, unmappable[int](ToDB, appKey, "application key cannot be empty or whitespace", nil)
	}
	n, err := strconv.Atoi(appKey)
	if err != nil {
		return 0, unmappable[int](ToDB, appKey, "not a valid integer", err)
	}
	if n == 0 {
		return 0, unmappable[int](ToDB, appKey, "zero is not a key", nil)
	}
	return n, nil
}

// ToAppKey implements KeyMapper. Zero is rejected.
func (StringToInt) ToAppKey(dbKey int) (string, error) {
	if dbKey == 0 {
		return "", unmappable[string](ToApp, dbKey, "zero is not a key", nil)
	}
	return strconv.Itoa(dbKey), nil
}

// StringToUUID maps string keys to UUID storage keys. Any form accepted by
// uuid.Parse maps to the canonical lowercase hyphenated form on the way
// back. The nil UUID is never a key.
type StringToUUID struct{}

var _ KeyMapper[string, uuid.UUID] = StringToUUID{}

// ToDBKey implements KeyMapper.
func (StringToUUID) ToDBKey(appKey string) (uuid.UUID, error) {
	if strings.TrimSpace(appKey) == "" {
		return uuid.Nil, unmappable[uuid.UUID](ToDB, appKey, "application key cannot be empty or whitespace", nil)
	}
	id, err := uuid.Parse(appKey)
	if err != nil {
		return uuid.Nil, unmappable[uuid.UUID](ToDB, appKey, "not a valid UUID", err)
	}
	if id == uuid.Nil {
		return uuid.Nil, unmappable[uuid.UUID](ToDB, appKey, "nil UUID is not a key", nil)
	}
	return id, nil
}

// ToAppKey implements KeyMapper. uuid.Nil is rejected.
func (StringToUUID) ToAppKey(dbKey uuid.UUID) (string, error) {
	if dbKey == uuid.Nil {
		return "", unmappable[string](ToApp, dbKey, "nil UUID is not a key", nil)
	}
	return dbKey.String(), nil
}
