// Package cli implements the modsync command-line interface using Cobra.
// It provides commands for updating mod dependency versions, inspecting
// the platform catalog, and managing repository credentials.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/majorcontext/modsync/internal/config"
	"github.com/majorcontext/modsync/internal/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	dryRun  bool
	jsonOut bool

	globalCfg = config.DefaultGlobalConfig()
)

var rootCmd = &cobra.Command{
	Use:   "modsync",
	Short: "modsync - keep mod dependency versions in step with the game",
	Long: `modsync resolves the latest version of each declared mod dependency for
the Minecraft version in gradle.properties and writes the results back.

Versions are matched against patterns such as "${fabric}+${mcVersion}",
trying the exact game version first and falling back to earlier patches.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		globalCfg = cfg

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			Actions:       inActions(),
			DebugDir:      config.DebugDir(),
			RetentionDays: cfg.Debug.RetentionDays,
		}); err != nil {
			// Non-fatal: the default logger stays in place.
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}
		return nil
	},
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer log.Close()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing files")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}
