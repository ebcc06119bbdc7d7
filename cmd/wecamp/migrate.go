package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"wecamp/internal/config"
	"wecamp/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate requires WECAMP_STORE=%s", config.StorePostgres)
	}

	ctx := cmd.Context()
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	version, err := database.Version(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("database is up to date", "version", version)
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
