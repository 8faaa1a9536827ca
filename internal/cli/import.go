package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-catalogflow/internal/importer"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Create one item per spreadsheet row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := importer.ParseRecords(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			for i, r := range rows {
				if _, err := svc.CreateItem(cmd.Context(), r); err != nil {
					return fmt.Errorf("row %d (%s): %w", i+1, r.Title, userError(err))
				}
			}
			logger.Info("import finished", "file", args[0], "items", len(rows))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items\n", len(rows))
			return nil
		},
	}
}
