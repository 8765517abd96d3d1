package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Project-Sylos/Canopy/internal/categories"
	"github.com/Project-Sylos/Canopy/internal/config"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/internal/tree"
	"github.com/Project-Sylos/Canopy/internal/types"
	"github.com/Project-Sylos/Canopy/sdk"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	envFile    string
	lang       string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "canopy",
		Short: "Administer a Canopy category tree",
		Long: `Canopy stores the category tree of a Q&A site and lets administrators
add and rename categories. These commands work directly on the configured
store; run cmd/api for the HTTP server.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a JSON config file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.PersistentFlags().StringVar(&flags.lang, "lang", "", "Language of error messages (default: the configured default language)")

	cmd.AddCommand(treeCmd(flags))
	cmd.AddCommand(addCmd(flags))
	cmd.AddCommand(renameCmd(flags))
	cmd.AddCommand(seedCmd(flags))
	cmd.AddCommand(statsCmd(flags))
	cmd.AddCommand(initConfigCmd())

	return cmd
}

// open loads the configuration and opens the store. The caller closes it.
func open(flags *globalFlags) (*sdk.Canopy, error) {
	cfg, err := config.Load(flags.configPath, flags.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// Seeding is an explicit command here, not a side effect of opening
	cfg.Categories.SeedFile = ""
	return sdk.New(cfg, log.New(cfg.Log))
}

// userError localizes rejected requests and keeps unexpected failures intact
func userError(c *sdk.Canopy, lang string, err error) error {
	if categories.KindOf(err) == categories.KindOther {
		return err
	}
	return errors.New(c.Message(lang, err))
}

func treeCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open(flags)
			if err != nil {
				return err
			}
			defer c.Close()

			t, err := c.Tree(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			printTree(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the serialized tree as JSON")
	return cmd
}

func printTree(w io.Writer, t tree.Tree) {
	if t.IsEmpty() {
		fmt.Fprintln(w, "(no categories)")
		return
	}
	var walk func(n *tree.TreeNode, depth int)
	walk = func(n *tree.TreeNode, depth int) {
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), n.Name, n.ID)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(t.Root, 0)
}

func addCmd(flags *globalFlags) *cobra.Command {
	var parent []int

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Long: `Add a category under --parent (a tree_id,lft pair), or as a new root when
--parent is omitted. Category names are unique across all trees.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *types.NodeID
			switch len(parent) {
			case 0:
			case 2:
				parentID = &types.NodeID{parent[0], parent[1]}
			default:
				return fmt.Errorf("--parent must be a tree_id,lft pair")
			}

			c, err := open(flags)
			if err != nil {
				return err
			}
			defer c.Close()

			node, err := c.Add(cmd.Context(), args[0], parentID)
			if err != nil {
				return userError(c, flags.lang, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", node.Name, node.Identity())
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&parent, "parent", nil, "Parent category as tree_id,lft")
	return cmd
}

func renameCmd(flags *globalFlags) *cobra.Command {
	var id []int

	cmd := &cobra.Command{
		Use:   "rename NAME",
		Short: "Rename the category at --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(id) != 2 {
				return fmt.Errorf("--id must be a tree_id,lft pair")
			}

			c, err := open(flags)
			if err != nil {
				return err
			}
			defer c.Close()

			node, err := c.Rename(cmd.Context(), types.NodeID{id[0], id[1]}, args[0])
			if err != nil {
				return userError(c, flags.lang, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", node.Identity(), node.Name)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&id, "id", nil, "Category to rename as tree_id,lft")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func seedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Create the categories listed in a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open(flags)
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Seed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new categories (%d already present)\n", res.Created, res.Existing)
			return nil
		},
	}
}

func statsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print node and tree counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open(flags)
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Nodes: %d\nTrees: %d\n", stats.Nodes, stats.Trees)
			return nil
		},
	}
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config PATH",
		Short: "Write the default configuration to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := config.SaveToFile(&cfg, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", args[0])
			return nil
		},
	}
}
