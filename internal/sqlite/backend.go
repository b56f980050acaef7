// Package sqlite implements the SQLite persistence engine.
//
// A Backend owns one database file under the configured data directory.
// Each entity collection is a document table: the storage key in an indexed
// id column and the record itself as JSON in a data column. Collection
// handles are database transactions, so writes made through a handle become
// visible to other handles only on Commit.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// DBFile is the database file name inside the data directory.
const DBFile = "entityaxis.db"

// Backend manages the database connection and the collection tables.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]bool
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]bool),
	}
}

// Attach opens (creating if needed) the database in config.DataDir and
// installs the shared schema. Existing data is kept.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("sqlite backend cannot attach %q: %w", config.Backend, types.ErrBackendUnknown)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn(filepath.Join(dataDir, DBFile)))
	if err != nil {
		return err
	}
	if _, err := db.Exec(createKeys); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// dsn builds the connection string: a busy timeout so concurrent handles
// wait for the write lock, WAL journaling, and immediate transactions so a
// handle holds the write lock from its first statement.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Detach closes the database. After Detach, handle operations return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.tables = make(map[string]bool)
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Tables returns the names of the collection tables created or opened
// since Attach, sorted.
func (b *Backend) Tables() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.tables))
	for name := range b.tables {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

var tableName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ensureTable creates the document table for name if it does not exist.
func (b *Backend) ensureTable(ctx context.Context, name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	if b.tables[name] {
		return nil
	}
	if _, err := b.db.ExecContext(ctx, createDocumentTable(name)); err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}
	b.tables[name] = true
	return nil
}

// begin starts a transaction for a collection handle.
func (b *Backend) begin(ctx context.Context) (*sql.Tx, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.db.BeginTx(ctx, nil)
}
