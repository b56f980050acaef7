// Package cli implements the entityaxis command-line interface: a product
// catalog driven through the generic CRUD services and the mediator.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entityaxis/internal/catalog"
	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/internal/paths"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	config    Config
}

// NewRootCmd creates the top-level "entityaxis" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "entityaxis",
		Short: "Generic CRUD services over a product catalog",
		Long: "entityaxis drives a small product catalog through generic CRUD services,\n" +
			"mediator handlers and validators, backed by SQLite or memory.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.entityaxis)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: <config-dir>/data)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite or memory (overrides config)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newRegistryCmd(a))
	root.AddCommand(newProductCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// setup resolves directories, loads config.yaml and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	if a.flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", paths.ConfigFile(configDir), err)
	}

	logger, err := ctxlog.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

	a.configDir = configDir
	a.config = cfg
	logger.Debug("configuration loaded", "config_dir", configDir, "backend", cfg.Backend)
	return nil
}

// backendConfig returns the storage config for the current invocation.
func (a *app) backendConfig() (types.Config, error) {
	dataDir, err := resolveDataDir(a.flags.dataDir, a.config, a.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{Backend: a.config.Backend, DataDir: dataDir}, nil
}

// withCatalog returns a RunE that composes the catalog on the configured
// backend, runs fn and detaches the backend on every path.
func (a *app) withCatalog(fn func(cmd *cobra.Command, args []string, c *catalog.Catalog) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		cfg, err := a.backendConfig()
		if err != nil {
			return err
		}
		c, err := catalog.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
		}
		ctxlog.FromContext(ctx).Debug("catalog opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)
		defer func() {
			err = errors.Join(err, c.Close())
		}()
		return fn(cmd, args, c)
	}
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and maps the outcome to an exit code.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	if isUserError(err) {
		return exitUserError
	}
	return exitSysError
}

// isUserError reports whether err was caused by the input rather than the
// system.
func isUserError(err error) bool {
	return errors.Is(err, types.ErrValidation) ||
		errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrUnmappableKey) ||
		errors.Is(err, types.ErrInvalidPaging) ||
		errors.Is(err, errUsage)
}

// errUsage marks bad arguments.
var errUsage = errors.New("usage")
