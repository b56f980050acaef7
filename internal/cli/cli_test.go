package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is an isolated config and data directory for running commands
// in process.
type testEnv struct {
	t       *testing.T
	Config  string
	DataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir := t.TempDir()
	return &testEnv{
		t:       t,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
	}
}

// cmdResult holds the outcome of one command.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *testEnv) run(stdin string, args ...string) cmdResult {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	all := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	code := run(root, all, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	r := e.run("", args...)
	if r.ExitCode != 0 {
		e.t.Fatalf("entityaxis %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, r.ExitCode, r.Stdout, r.Stderr)
	}
	return r
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(s), &out), "output: %s", s)
	return out
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("version")
	assert.Contains(t, r.Stdout, "entityaxis "+Version)
	assert.Contains(t, r.Stdout, modulePath)

	_, err := os.Stat(env.Config)
	assert.True(t, os.IsNotExist(err), "version must not touch the config dir")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("init")
	assert.Contains(t, r.Stdout, "Initialized sqlite backend")

	data, err := os.ReadFile(filepath.Join(env.Config, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "page_size: 20")

	_, err = os.Stat(filepath.Join(env.DataDir, "entityaxis.db"))
	assert.NoError(t, err)

	// A second init keeps the existing file.
	require.NoError(t, os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte("backend: sqlite\npage_size: 7\n"), 0o644))
	env.mustRun("init")
	data, err = os.ReadFile(filepath.Join(env.Config, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size: 7")
}

func TestProductCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	r := env.mustRun("--json", "product", "add", "--sku", "ax-100", "--name", "Axle", "--price-cents", "1250", "--stock", "4", "--tag", "metal")
	created := parseJSON[map[string]string](t, r.Stdout)
	assert.Equal(t, "1", created["id"])
	env.mustRun("product", "add", "--sku", "BR-200", "--name", "Bracket", "--price-cents", "399")

	r = env.mustRun("--json", "product", "get", "1")
	p := parseJSON[productView](t, r.Stdout)
	assert.Equal(t, "AX-100", p.SKU)
	assert.Equal(t, "12.50", p.Price)
	assert.Equal(t, []string{"metal"}, p.Tags)

	env.mustRun("product", "update", "1", "--stock", "9")
	r = env.mustRun("--json", "product", "get", "1")
	p = parseJSON[productView](t, r.Stdout)
	assert.Equal(t, 9, p.Stock)
	assert.Equal(t, "Axle", p.Name, "fields without flags are kept")

	r = env.mustRun("product", "list")
	assert.Contains(t, r.Stdout, "Bracket")
	assert.Contains(t, r.Stdout, "Total: 2 product(s)")

	r = env.mustRun("--json", "product", "page", "--page", "2", "--size", "1")
	page := parseJSON[pageView](t, r.Stdout)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "BR-200", page.Items[0].SKU)

	env.mustRun("product", "delete", "2")
	env.mustRun("product", "delete", "2")
	r = env.run("", "product", "get", "2")
	assert.Equal(t, exitUserError, r.ExitCode)
	assert.Contains(t, r.Stderr, "unable to find product")
}

func TestProductUserErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing sku", []string{"product", "add", "--name", "x"}, "SKU"},
		{"negative price", []string{"product", "add", "--sku", "ABC", "--name", "x", "--price-cents", "-5"}, "PriceCents"},
		{"bad page", []string{"product", "page", "--page", "0"}, "Page"},
		{"unmappable key", []string{"product", "delete", "abc"}, "abc"},
		{"update missing", []string{"product", "update", "99", "--name", "x"}, "unable to find product"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run("", tt.args...)
			assert.Equal(t, exitUserError, r.ExitCode, "stderr: %s", r.Stderr)
			assert.Contains(t, r.Stderr, tt.want)
		})
	}
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun("init")
	src.mustRun("product", "add", "--sku", "AAA", "--name", "first")
	src.mustRun("product", "add", "--sku", "BBB", "--name", "second")

	exported := src.mustRun("export").Stdout
	lines := strings.Split(strings.TrimSpace(exported), "\n")
	require.Len(t, lines, 2)

	file := filepath.Join(t.TempDir(), "products.jsonl")
	src.mustRun("export", "--file", file)

	dst := newTestEnv(t)
	dst.mustRun("init")
	r := dst.mustRun("import", file)
	assert.Contains(t, r.Stdout, "Imported 2 record(s) into products")

	piped := newTestEnv(t)
	piped.mustRun("init")
	r = piped.run(exported+"not json\n", "import")
	assert.Equal(t, 0, r.ExitCode, "stderr: %s", r.Stderr)
	assert.Contains(t, r.Stdout, "Imported 2 record(s)")

	r = dst.mustRun("--json", "product", "list")
	products := parseJSON[[]productView](t, r.Stdout)
	require.Len(t, products, 2)
	assert.Equal(t, "BBB", products[1].SKU)
}

func TestExportUnknownTable(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	r := env.run("", "export", "--table", "widgets")
	assert.Equal(t, exitSysError, r.ExitCode)
	assert.Contains(t, r.Stderr, "unknown table")
}

func TestMemoryBackend(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("--backend", "memory", "--json", "product", "add", "--sku", "MEM", "--name", "volatile")
	assert.Equal(t, "1", parseJSON[map[string]string](t, r.Stdout)["id"])

	// Nothing persists between invocations.
	r = env.mustRun("--backend", "memory", "product", "list")
	assert.Contains(t, r.Stdout, "No products found.")

	r = env.run("", "--backend", "memory", "export")
	assert.Equal(t, exitSysError, r.ExitCode)
}

func TestEnvironmentOverrides(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	for _, sku := range []string{"AAA", "BBB", "CCC"} {
		env.mustRun("product", "add", "--sku", sku, "--name", sku)
	}

	t.Setenv("ENTITYAXIS_PAGE_SIZE", "2")
	r := env.mustRun("--json", "product", "page")
	page := parseJSON[pageView](t, r.Stdout)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Items, 2)

	t.Setenv("ENTITYAXIS_BACKEND", "postgres")
	r = env.run("", "product", "list")
	assert.Equal(t, exitSysError, r.ExitCode)
	assert.Contains(t, r.Stderr, "unknown backend")
}

func TestRegistryCommand(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("registry")
	assert.Contains(t, r.Stdout, "Registered (22):")
	assert.Contains(t, r.Stdout, "via")

	r = env.mustRun("--json", "registry", "--lifetime", "singleton")
	view := parseJSON[registryView](t, r.Stdout)
	assert.Len(t, view.Entries, 22)
	assert.Len(t, view.Discovered, 3)
	for _, e := range view.Entries {
		assert.Equal(t, "singleton", e.Lifetime)
	}

	r = env.run("", "registry", "--lifetime", "forever")
	assert.Equal(t, exitUserError, r.ExitCode)
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{0: "0.00", 5: "0.05", 1250: "12.50", -399: "-3.99"}
	for in, want := range tests {
		assert.Equal(t, want, formatCents(in))
	}
}
