package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-catalogflow/internal/client"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local read cache",
	}

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached list pages (--all also drops categories)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if all {
				err = cache.Clear(cmd.Context())
			} else {
				err = cache.ClearNamespace(cmd.Context(), client.NamespaceItems)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "Also clear cached categories")

	cmd.AddCommand(clearCmd)
	return cmd
}
