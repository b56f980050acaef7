package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

func attach(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()
	b := attach(t, tmpDir)

	if _, err := os.Stat(filepath.Join(tmpDir, DBFile)); os.IsNotExist(err) {
		t.Errorf("%s not created", DBFile)
	}

	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: tmpDir})
	if !errors.Is(err, types.ErrAlreadyAttached) {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}
	if got := b.Config().DataDir; got != tmpDir {
		t.Errorf("Config().DataDir = %q, want %q", got, tmpDir)
	}
}

func TestBackend_AttachCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	attach(t, dir)

	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		t.Fatalf("expected database in nested dir: %v", err)
	}
}

func TestBackend_AttachRejectsConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{DataDir: t.TempDir()}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "postgres"}, types.ErrBackendUnknown},
		{"memory backend", types.Config{Backend: types.BackendMemory}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend()
			err := b.Attach(tt.config)
			if !errors.Is(err, tt.want) {
				t.Errorf("Attach() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBackend_Detach(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())

	c, err := NewCollection[*note, int](ctx, b, "notes", IntKeys{})
	if err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	if _, err := c.Open(ctx); !errors.Is(err, types.ErrBackendDetached) {
		t.Errorf("Open after Detach: expected ErrBackendDetached, got %v", err)
	}
	if _, err := NewCollection[*note, int](ctx, b, "notes", IntKeys{}); !errors.Is(err, types.ErrBackendDetached) {
		t.Errorf("NewCollection after Detach: expected ErrBackendDetached, got %v", err)
	}
}

func TestBackend_ReattachAfterDetach(t *testing.T) {
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := b.Attach(config); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	b.Detach()
}

func TestBackend_Tables(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())

	if _, err := NewCollection[*note, int](ctx, b, "notes", IntKeys{}); err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}
	if _, err := NewCollection[*tagged, string](ctx, b, "labels", TextKeys{}); err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}
	// Opening the same collection twice is allowed.
	if _, err := NewCollection[*note, int](ctx, b, "notes", IntKeys{}); err != nil {
		t.Fatalf("NewCollection failed: %v", err)
	}

	want := []string{"labels", "notes"}
	if got := b.Tables(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tables() = %v, want %v", got, want)
	}
}

func TestBackend_InvalidTableName(t *testing.T) {
	ctx := context.Background()
	b := attach(t, t.TempDir())

	for _, name := range []string{"", "Notes", "1notes", "notes; DROP TABLE x", "my-notes"} {
		if _, err := NewCollection[*note, int](ctx, b, name, IntKeys{}); err == nil {
			t.Errorf("NewCollection(%q) should fail", name)
		}
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/x/entityaxis.db")
	for _, part := range []string{"file:/tmp/x/entityaxis.db?", "busy_timeout%285000%29", "journal_mode%28WAL%29", "_txlock=immediate"} {
		if !strings.Contains(got, part) {
			t.Errorf("dsn() = %q, missing %q", got, part)
		}
	}
}
