package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/entityaxis/internal/catalog"
	"github.com/mesh-intelligence/entityaxis/pkg/handlers"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products"},
		Short:   "Manage products",
	}
	cmd.AddCommand(
		newProductAddCmd(a),
		newProductGetCmd(a),
		newProductListCmd(a),
		newProductPageCmd(a),
		newProductUpdateCmd(a),
		newProductDeleteCmd(a),
	)
	return cmd
}

// productFields are the flags shared by add and update.
type productFields struct {
	sku        string
	name       string
	priceCents int64
	stock      int
	tags       []string
}

func (f *productFields) bind(cmd *cobra.Command, withSKU bool) {
	if withSKU {
		cmd.Flags().StringVar(&f.sku, "sku", "", "stock keeping unit (required)")
	}
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().Int64Var(&f.priceCents, "price-cents", 0, "price in cents")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "units in stock")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "tag (repeatable)")
}

func newProductAddCmd(a *app) *cobra.Command {
	var f productFields
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Example: `  entityaxis product add --sku AX-100 --name Axle --price-cents 1250 --stock 4
  entityaxis product add --sku AX-200 --name "Axle XL" --tag metal --tag heavy`,
		Args: cobra.NoArgs,
		RunE: a.withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
			id, err := handlers.Create[*catalog.NewProduct, *catalog.Product, string](cmd.Context(), c.Mediator, &catalog.NewProduct{
				SKU:        f.sku,
				Name:       f.name,
				PriceCents: f.priceCents,
				Stock:      f.stock,
				Tags:       f.tags,
			})
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created product %s\n", id)
			return nil
		}),
	}
	f.bind(cmd, true)
	return cmd
}

func newProductGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: a.withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
			p, ok, err := handlers.GetByID[*catalog.Product, string](cmd.Context(), c.Mediator, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return &types.NotFoundError{Entity: "product", Key: args[0]}
			}
			return a.printProduct(cmd.OutOrStdout(), p)
		}),
	}
}

func newProductListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: a.withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
			products, err := handlers.GetAll[*catalog.Product, string](cmd.Context(), c.Mediator)
			if err != nil {
				return err
			}
			if err := a.printProducts(cmd.OutOrStdout(), products); err != nil {
				return err
			}
			if !a.flags.jsonMode && len(products) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d product(s)\n", len(products))
			}
			return nil
		}),
	}
}

func newProductPageCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "page",
		Short: "List one page of products",
		Example: `  entityaxis product page --page 2
  entityaxis product page --page 1 --size 50`,
		Args: cobra.NoArgs,
		RunE: a.withCatalog(func(cmd *cobra.Command, _ []string, c *catalog.Catalog) error {
			if size == 0 {
				size = a.config.PageSize
			}
			result, err := handlers.GetPaged[*catalog.Product, string](cmd.Context(), c.Mediator, page, size)
			if err != nil {
				return err
			}
			return a.printPage(cmd.OutOrStdout(), result)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, from 1")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default: page_size from config)")
	return cmd
}

func newProductUpdateCmd(a *app) *cobra.Command {
	var f productFields
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Long:  "Update changes the fields given as flags and keeps the others.",
		Args:  cobra.ExactArgs(1),
		RunE: a.withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
			ctx := cmd.Context()
			current, ok, err := handlers.GetByID[*catalog.Product, string](ctx, c.Mediator, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return &types.NotFoundError{Entity: "product", Key: args[0]}
			}

			model := &catalog.ProductUpdate{
				ID:         args[0],
				Name:       current.Name,
				PriceCents: current.PriceCents,
				Stock:      current.Stock,
				Tags:       current.Tags,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				model.Name = f.name
			}
			if flags.Changed("price-cents") {
				model.PriceCents = f.priceCents
			}
			if flags.Changed("stock") {
				model.Stock = f.stock
			}
			if flags.Changed("tag") {
				model.Tags = f.tags
			}

			if _, err := handlers.Update[*catalog.ProductUpdate, *catalog.Product, string](ctx, c.Mediator, model); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated product %s\n", args[0])
			return nil
		}),
	}
	f.bind(cmd, false)
	return cmd
}

func newProductDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Long:  "Delete removes a product. Deleting a product that does not exist succeeds.",
		Args:  cobra.ExactArgs(1),
		RunE: a.withCatalog(func(cmd *cobra.Command, args []string, c *catalog.Catalog) error {
			if err := handlers.Delete[*catalog.Product, string](cmd.Context(), c.Mediator, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		}),
	}
}
