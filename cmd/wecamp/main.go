// Package main is the entry point for the WeCamp category service.
// The root command loads configuration; subcommands serve the API, run
// migrations, seed the store and print the tree.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"wecamp/internal/category"
	"wecamp/internal/config"
	"wecamp/internal/database"
	"wecamp/internal/store"
)

var (
	cfg     *config.Config
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "wecamp",
	Short: "WeCamp category tree service",
	Long: `Serves and maintains the WeCamp outdoor-gear category tree
(root → column → leaf): the public navbar and filter API, the admin
category editor, and the change stream.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(treeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: JSON in production, text in
// development.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore returns the configured category repository. db is nil for the
// memory store. The caller must call closeFn.
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (repo category.Repository, db *sql.DB, closeFn func(), err error) {
	if cfg.Store == config.StoreMemory {
		mem, err := store.NewMemoryStore(cfg.MemoryFile)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("using in-memory category store", "file", cfg.MemoryFile)
		return mem, nil, func() {}, nil
	}

	db, err = database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}
	return store.NewCategoryStore(db), db, func() { db.Close() }, nil
}
