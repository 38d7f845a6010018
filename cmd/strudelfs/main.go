// strudelfs is the maintenance CLI for the graph-based track/folder store:
// it runs the legacy migration, validates a user's hierarchy and prints the
// materialized tree and graph stats.
package main

import (
	"fmt"
	"os"
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/config"
	"github.com/dygy/strudel-client-sub004/filesystem"
	"github.com/dygy/strudel-client-sub004/internal/util"
	"github.com/dygy/strudel-client-sub004/migrate"
	"github.com/dygy/strudel-client-sub004/store"
	"github.com/dygy/strudel-client-sub004/workspace"
	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagConfig  string
	flagVerbose int
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "strudelfs",
		Short:         "Maintenance tooling for the track/folder node graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagDB, "db", "", "Path to the SQLite database (overrides config)")
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to a YAML or JSON config file")
	root.PersistentFlags().IntVarP(&flagVerbose, "verbose", "v", 3,
		"Log verbosity level between 1 (error) and 5 (trace)")

	root.AddCommand(migrateCmd(), validateCmd(), treeCmd(), statsCmd())
	return root
}

// setup loads config, initializes the logger and opens the store.
func setup() (*config.Config, *store.Store, error) {
	cfg := config.NewDefaultConfig()
	if flagConfig != "" {
		loaded, err := config.NewConfigFromFile(flagConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}

	if flagVerbose < 1 {
		flagVerbose = 1
	}
	if flagVerbose > 5 {
		flagVerbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	util.InitializeLogger(logLvls[flagVerbose-1])

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func openWorkspace(cmd *cobra.Command, userID string) (*workspace.Workspace, *store.Store, error) {
	cfg, st, err := setup()
	if err != nil {
		return nil, nil, err
	}
	ws := workspace.New(cfg, st, nil, userID)
	if err := ws.Load(cmd.Context()); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return ws, st, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <user-id>",
		Short: "Convert a user's legacy flat folders/tracks into graph nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			rep, err := migrate.New(st, cfg.MigrateBatchSize).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "folders migrated: %d\n", rep.Folders)
			fmt.Fprintf(out, "tracks migrated:  %d\n", rep.Tracks)
			fmt.Fprintf(out, "skipped:          %d\n", rep.Skipped)
			fmt.Fprintf(out, "rows inserted:    %d\n", rep.Inserted)
			fmt.Fprintf(out, "hierarchy valid:  %v\n", rep.Valid)
			for _, w := range rep.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range rep.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if len(rep.Errors) > 0 {
				return fmt.Errorf("migration finished with %d error(s)", len(rep.Errors))
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <user-id>",
		Short: "Check a user's node hierarchy for cycles and dangling parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, st, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			res := ws.Validate()
			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			if !res.IsValid {
				return fmt.Errorf("hierarchy invalid: %d error(s)", len(res.Errors))
			}
			fmt.Fprintln(out, "hierarchy valid")
			return nil
		},
	}
}

func treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <user-id>",
		Short: "Print a user's folder/track tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, st, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			for _, root := range ws.Tree() {
				printTree(cmd, root)
			}
			return nil
		},
	}
}

func printTree(cmd *cobra.Command, tn *filesystem.TreeNode) {
	marker := ""
	if tn.Node.Type == strudelfs.FolderNode {
		marker = "/"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s\n", strings.Repeat("  ", tn.Depth), tn.Node.Name, marker)
	for _, child := range tn.Children {
		printTree(cmd, child)
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <user-id>",
		Short: "Print aggregate counts for a user's node graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, st, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			s := ws.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:       %d\n", s.TotalNodes)
			fmt.Fprintf(out, "folders:     %d\n", s.Folders)
			fmt.Fprintf(out, "tracks:      %d\n", s.Tracks)
			fmt.Fprintf(out, "multitracks: %d\n", s.Multitracks)
			fmt.Fprintf(out, "roots:       %d\n", s.RootNodes)
			fmt.Fprintf(out, "max depth:   %d\n", s.MaxDepth)
			return nil
		},
	}
}
