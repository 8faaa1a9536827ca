package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-catalogflow/internal/client"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rec, err := app.Open(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}
			printRecord(cmd.OutOrStdout(), *rec)
			return nil
		},
	}
}

// formFlags binds the item form fields to command flags.
func formFlags(cmd *cobra.Command, f *client.ItemForm) {
	cmd.Flags().StringVar(&f.Title, "title", "", "Title (2-255 characters)")
	cmd.Flags().StringVar(&f.Description, "description", "", "Description (2-255 characters)")
	cmd.Flags().StringVar(&f.Category, "category", "", "Category")
	cmd.Flags().StringVar(&f.Date, "date", "", "Date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&f.Price, "price", "", "Price, 0-1000 with up to two decimals")
	cmd.Flags().StringVar(&f.Stock, "stock", "", "Units in stock")
	cmd.Flags().IntVar(&f.Rating, "rating", 0, "Rating, 1-5")
}

func newAddCmd() *cobra.Command {
	var form client.ItemForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := app.Save(cmd.Context(), 0, form)
			if err != nil {
				return formOrUserError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created item %d\n", rec.ID)
			return nil
		},
	}
	formFlags(cmd, &form)
	return cmd
}

func newEditCmd() *cobra.Command {
	var changes client.ItemForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update an item; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := app.Open(cmd.Context(), id)
			if err != nil {
				return userError(err)
			}

			form := client.FormFromRecord(*current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				form.Title = changes.Title
			}
			if flags.Changed("description") {
				form.Description = changes.Description
			}
			if flags.Changed("category") {
				form.Category = changes.Category
			}
			if flags.Changed("date") {
				form.Date = changes.Date
			}
			if flags.Changed("price") {
				form.Price = changes.Price
			}
			if flags.Changed("stock") {
				form.Stock = changes.Stock
			}
			if flags.Changed("rating") {
				form.Rating = changes.Rating
			}

			rec, err := app.Save(cmd.Context(), id, form)
			if err != nil {
				return formOrUserError(cmd, err)
			}
			printRecord(cmd.OutOrStdout(), *rec)
			return nil
		},
	}
	formFlags(cmd, &changes)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Remove(cmd.Context(), id); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item deleted successfully")
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.LoadCategories(cmd.Context()); err != nil {
				return userError(err)
			}
			for _, c := range app.State().Categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

// formOrUserError prints per-field form messages, which block submission.
func formOrUserError(cmd *cobra.Command, err error) error {
	var fe *client.FormError
	if !errors.As(err, &fe) {
		return userError(err)
	}
	w := cmd.ErrOrStderr()
	for _, field := range slices.Sorted(maps.Keys(fe.Fields)) {
		fmt.Fprintf(w, "  %s: %s\n", field, fe.Fields[field])
	}
	return fmt.Errorf("invalid form")
}
