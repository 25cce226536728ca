package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of modsync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("modsync %s\n", buildVersion)
		if buildCommit != "none" {
			fmt.Printf("  commit: %s\n", buildCommit)
		}
		if buildDate != "unknown" {
			fmt.Printf("  built:  %s\n", buildDate)
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Printf("  go:     %s\n", info.GoVersion)
		}
	},
}
