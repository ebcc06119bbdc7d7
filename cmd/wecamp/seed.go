package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wecamp/internal/category"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in category tree into an empty store",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repo, _, closeStore, err := openStore(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := category.Seed(ctx, repo)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "store already has categories, nothing seeded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories\n", n)
	return nil
}
