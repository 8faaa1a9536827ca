// Package cli implements the catalog command line client.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-catalogflow/internal/client"
	"github.com/imrishuroy/go-catalogflow/internal/logging"
)

var (
	flagServer    string
	flagCache     string
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	cache  *client.Cache
	svc    *client.Service
	app    *client.App
)

// defaultServer returns the service base URL, checking CATALOG_API_BASE_URL first.
func defaultServer() string {
	if s := os.Getenv("CATALOG_API_BASE_URL"); s != "" {
		return s
	}
	return "http://localhost:8000/api"
}

// defaultCachePath returns CATALOG_CACHE_PATH or a file in the user cache dir.
func defaultCachePath() string {
	if p := os.Getenv("CATALOG_CACHE_PATH"); p != "" {
		return p
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "catalog-cache.db"
	}
	return filepath.Join(dir, "catalog", "cache.db")
}

// NewRootCmd creates the root cobra command for the catalog CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog",
		Short: "Browse and edit the product catalog",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New(flagLogLevel, flagLogFormat)
			if err := closeCache(); err != nil {
				return err
			}

			if flagCache != ":memory:" {
				if err := os.MkdirAll(filepath.Dir(flagCache), 0o755); err != nil {
					return fmt.Errorf("create cache dir: %w", err)
				}
			}
			c, err := client.OpenCache(cmd.Context(), flagCache, logger)
			if err != nil {
				return err
			}
			cache = c
			svc = client.NewService(client.NewAPI(flagServer, logger), cache, logger)
			app = client.NewApp(svc, client.NewStore(client.InitialState()), logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeCache()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Catalog API base URL (or CATALOG_API_BASE_URL env)")
	root.PersistentFlags().StringVar(&flagCache, "cache", defaultCachePath(), "Local cache database (or CATALOG_CACHE_PATH env)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newListCmd(),
		newGetCmd(),
		newAddCmd(),
		newEditCmd(),
		newDeleteCmd(),
		newCategoriesCmd(),
		newCacheCmd(),
		newImportCmd(),
	)
	return root
}

func closeCache() error {
	if cache == nil {
		return nil
	}
	err := cache.Close()
	cache = nil
	return err
}

// userError converts a client error into the message shown to the user.
// Form errors are printed field by field by the caller.
func userError(err error) error {
	var fe *client.FormError
	if errors.As(err, &fe) {
		return err
	}
	return errors.New(client.Message(err))
}
