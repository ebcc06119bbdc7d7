package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wecamp/internal/category"
	"wecamp/internal/tree"
)

var treeJSON bool

var treeCmd = &cobra.Command{
	Use:   "tree [root-id]",
	Short: "Print the category tree",
	Long:  `Prints every root, or only the given root, with its columns and leaves. Leaves show their browsing path.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output as JSON")
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repo, _, closeStore, err := openStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := category.NewService(repo, nil)

	var forest []tree.Node
	if len(args) == 1 {
		n, err := svc.Project(ctx, args[0])
		if err != nil {
			return fmt.Errorf("project %s: %w", args[0], err)
		}
		forest = []tree.Node{n}
	} else if forest, err = svc.Forest(ctx); err != nil {
		return err
	}

	if treeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(forest)
	}
	printTree(cmd.OutOrStdout(), forest)
	return nil
}

// printTree writes one line per node, indented two spaces per level.
func printTree(w io.Writer, nodes []tree.Node) {
	var walk func(nodes []tree.Node, depth int)
	walk = func(nodes []tree.Node, depth int) {
		for _, n := range nodes {
			line := strings.Repeat("  ", depth)
			if n.Icon != "" {
				line += n.Icon + " "
			}
			line += n.Name + " [" + string(n.Role) + "]"
			if n.Path != "" {
				line += " " + n.Path
			}
			fmt.Fprintln(w, line)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}
