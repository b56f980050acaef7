package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/entityaxis/internal/catalog"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

// productView is the JSON form of a product.
type productView struct {
	ID      string   `json:"id"`
	SKU     string   `json:"sku"`
	Name    string   `json:"name"`
	Price   string   `json:"price"`
	Stock   int      `json:"stock"`
	Tags    []string `json:"tags,omitempty"`
	Created string   `json:"created"`
}

func viewOf(p *catalog.Product) productView {
	return productView{
		ID:      p.ID,
		SKU:     p.SKU,
		Name:    p.Name,
		Price:   formatCents(p.PriceCents),
		Stock:   p.Stock,
		Tags:    p.Tags,
		Created: p.Created.Format("2006-01-02"),
	}
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printProducts prints products as JSON or as a table.
func (a *app) printProducts(w io.Writer, products []*catalog.Product) error {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p))
	}
	if a.flags.jsonMode {
		return writeJSON(w, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(w, "No products found.")
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tPRICE\tSTOCK\tCREATED")
	for _, v := range views {
		name := v.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", v.ID, v.SKU, name, v.Price, v.Stock, v.Created)
	}
	tw.Flush()

	// Trim the padding tabwriter leaves on the last column.
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}

func (a *app) printProduct(w io.Writer, p *catalog.Product) error {
	if a.flags.jsonMode {
		return writeJSON(w, viewOf(p))
	}
	v := viewOf(p)
	fmt.Fprintf(w, "ID:      %s\nSKU:     %s\nName:    %s\nPrice:   %s\nStock:   %d\n", v.ID, v.SKU, v.Name, v.Price, v.Stock)
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "Tags:    %s\n", strings.Join(v.Tags, ", "))
	}
	fmt.Fprintf(w, "Created: %s\n", v.Created)
	return nil
}

// pageView is the JSON form of one page of products.
type pageView struct {
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Items      []productView `json:"items"`
}

func (a *app) printPage(w io.Writer, page *types.PagedResult[*catalog.Product]) error {
	if a.flags.jsonMode {
		items := make([]productView, 0, len(page.Items()))
		for _, p := range page.Items() {
			items = append(items, viewOf(p))
		}
		return writeJSON(w, pageView{
			Page:       page.PageNumber(),
			PageSize:   page.PageSize(),
			Total:      page.TotalItemCount(),
			TotalPages: page.TotalPages(),
			Items:      items,
		})
	}
	if err := a.printProducts(w, page.Items()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Page %d of %d (%d products)\n", page.PageNumber(), page.TotalPages(), page.TotalItemCount())
	return nil
}
