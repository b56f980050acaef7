package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entityaxis/internal/catalog"
)

func newExportCmd(a *app) *cobra.Command {
	var table, file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a table as JSONL",
		Example: `  entityaxis export > products.jsonl
  entityaxis export --table orders --file orders.jsonl`,
		Args: cobra.NoArgs,
		RunE: a.withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
			porter, err := c.Table(table)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			n, err := porter.ExportJSONL(cmd.Context(), w)
			if err != nil {
				return err
			}
			if file != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", n, file)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&table, "table", catalog.ProductsTable, "table to export")
	cmd.Flags().StringVar(&file, "file", "", "output file (default: stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import JSONL records into a table",
		Long: "Import reads one JSON record per line and stores each under its own key,\n" +
			"replacing existing records. Malformed lines are skipped. Without a file\n" +
			"argument records are read from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: a.withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
			porter, err := c.Table(table)
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			n, err := porter.ImportJSONL(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) into %s\n", n, table)
			return nil
		}),
	}
	cmd.Flags().StringVar(&table, "table", catalog.ProductsTable, "table to import into")
	return cmd
}
