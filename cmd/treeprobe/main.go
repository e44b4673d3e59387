package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"treeprobe/internal/config"
	"treeprobe/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// newRootCmd builds the command tree. Tests build a fresh tree per run so flag
// values never leak between them.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treeprobe",
		Short: "Inspect tree-sitter parse trees and simulate incremental edits",
		Long: `treeprobe parses source files with bundled tree-sitter grammars, applies
simulated edits with incremental re-parses, renders the resulting syntax tree
and reports the first parse error it can locate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath
			}
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			if verbose {
				loaded.Logging.DebugMode = true
				loaded.Logging.Level = "debug"
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid config %s: %w", path, err)
			}
			if err := logging.Initialize(loaded.Logging.ToLogging()); err != nil {
				return err
			}
			cfg = loaded
			logging.Boot("loaded config from %s", path)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	verbose, configPath = false, ""
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultPath+")")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLanguagesCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errParseFailures) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
