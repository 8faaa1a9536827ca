package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// listFlags maps CLI flag names to query parameter keys.
var listFlags = []struct {
	flag, key, usage string
}{
	{"page", query.KeyPage, "Page number (1-based)"},
	{"limit", query.KeyLimit, "Items per page"},
	{"search", query.KeySearch, "Case-insensitive text in title or description"},
	{"category", query.KeyCategory, `Exact category, or "all"`},
	{"min-price", query.KeyMinPrice, "Minimum price (inclusive)"},
	{"max-price", query.KeyMaxPrice, "Maximum price (inclusive)"},
	{"start-date", query.KeyStartDate, "Earliest date, YYYY-MM-DD (inclusive)"},
	{"end-date", query.KeyEndDate, "Latest date, YYYY-MM-DD (inclusive)"},
	{"min-rating", query.KeyMinRating, "Minimum rating"},
	{"min-stock", query.KeyMinStock, "Minimum stock"},
	{"sort-by", query.KeySortBy, "Sort field: id, title, category, date, price, description, stock, rating"},
	{"sort-order", query.KeySortOrder, "asc or desc"},
}

func newListCmd() *cobra.Command {
	values := make(map[string]*string, len(listFlags))
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]string{}
			for _, f := range listFlags {
				if cmd.Flags().Changed(f.flag) {
					overrides[f.key] = *values[f.flag]
				}
			}
			if err := app.Load(cmd.Context(), overrides); err != nil {
				return userError(err)
			}

			page := app.State().Page
			out := cmd.OutOrStdout()
			if len(page.Items) == 0 {
				fmt.Fprintln(out, "No items found.")
				return nil
			}
			printTable(out, page.Items)
			fmt.Fprintf(out, "\nPage %d of %d (%d items)\n", page.CurrentPage, page.TotalPages, page.TotalItems)
			return nil
		},
	}
	for _, f := range listFlags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func printTable(out io.Writer, items []records.Record) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tDATE\tPRICE\tDESCRIPTION\tSTOCK\tRATING")
	for _, r := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\t%d\t%d\n",
			r.ID, r.Title, r.Category, r.Date, r.Price, r.Description, r.Stock, r.Rating)
	}
	tw.Flush()
}

func printRecord(out io.Writer, r records.Record) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", r.ID)
	fmt.Fprintf(tw, "Title\t%s\n", r.Title)
	fmt.Fprintf(tw, "Category\t%s\n", r.Category)
	fmt.Fprintf(tw, "Date\t%s\n", r.Date)
	fmt.Fprintf(tw, "Price\t%.2f\n", r.Price)
	fmt.Fprintf(tw, "Description\t%s\n", r.Description)
	fmt.Fprintf(tw, "Stock\t%d\n", r.Stock)
	fmt.Fprintf(tw, "Rating\t%d\n", r.Rating)
	tw.Flush()
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}
