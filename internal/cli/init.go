package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entityaxis/internal/ctxlog"
	"github.com/mesh-intelligence/entityaxis/internal/paths"
	"github.com/mesh-intelligence/entityaxis/internal/sqlite"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long: "Create the configuration directory and a default config.yaml if missing,\n" +
			"then create the SQLite database in the data directory.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	path := paths.ConfigFile(a.configDir)
	wrote, err := writeConfigIfMissing(path, a.config)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if wrote {
		log.Info("wrote default configuration", "path", path)
	}

	cfg, err := a.backendConfig()
	if err != nil {
		return err
	}
	if cfg.Backend == types.BackendSQLite {
		backend := sqlite.NewBackend()
		if err := backend.Attach(cfg); err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
		if err := backend.Detach(); err != nil {
			return fmt.Errorf("finalize storage: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s backend in %s\n", cfg.Backend, cfg.DataDir)
	return nil
}
