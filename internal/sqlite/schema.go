package sqlite

import "fmt"

// createKeys holds the last issued integer key per collection, so integer
// keys are never reused after a delete.
const createKeys = `CREATE TABLE IF NOT EXISTS entityaxis_keys (
    name TEXT PRIMARY KEY,
    last INTEGER NOT NULL
);`

// createDocumentTable returns the DDL of one collection table. seq orders
// scans by insertion. name must already be validated.
func createDocumentTable(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    seq INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`, name)
}
