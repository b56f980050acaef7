package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entityaxis/internal/catalog"
	"github.com/mesh-intelligence/entityaxis/pkg/wiring"
)

type registryView struct {
	Discovered []string    `json:"discovered"`
	Entries    []entryView `json:"entries"`
}

type entryView struct {
	Service        string `json:"service"`
	Implementation string `json:"implementation"`
	Lifetime       string `json:"lifetime"`
}

func newRegistryCmd(a *app) *cobra.Command {
	var lifetime string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Show the services discovered in the catalog",
		Long: "Registry runs a discovery pass over the catalog's candidate types and\n" +
			"prints each match and every registration it produced.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := wiring.ParseLifetime(lifetime)
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}
			reg, err := catalog.NewRegistry(wiring.WithLifetime(l))
			if err != nil {
				return err
			}
			found := wiring.Discover(catalog.Pool(), wiring.ShapeCommandService, wiring.ShapeQueryService)

			view := registryView{}
			for _, d := range found {
				view.Discovered = append(view.Discovered, d.String())
			}
			for _, e := range reg.Entries() {
				view.Entries = append(view.Entries, entryView{
					Service:        e.Service.String(),
					Implementation: e.Implementation.String(),
					Lifetime:       e.Lifetime.String(),
				})
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), view)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Discovered:")
			for _, d := range view.Discovered {
				fmt.Fprintf(w, "  %s\n", d)
			}
			fmt.Fprintf(w, "Registered (%d):\n", reg.Len())
			for _, e := range reg.Entries() {
				fmt.Fprintf(w, "  %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lifetime, "lifetime", wiring.Scoped.String(), "lifetime of the registrations: transient, scoped or singleton")
	return cmd
}
