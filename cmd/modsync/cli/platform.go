package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/majorcontext/modsync/internal/version"
	"github.com/spf13/cobra"
)

var platformCmd = &cobra.Command{
	Use:   "platform [major]",
	Short: "List the latest released patch of each Minecraft minor line",
	Long: `Read the Minecraft version manifest and print the newest release of each
minor line of the given major version (default 1).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlatform,
}

func init() {
	rootCmd.AddCommand(platformCmd)
}

func runPlatform(cmd *cobra.Command, args []string) error {
	major := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid major version %q", args[0])
		}
		major = n
	}

	patches, err := newCatalog().LatestPatches(cmd.Context(), major)
	if err != nil {
		return err
	}

	minors := patches.Minors()
	sort.Sort(sort.Reverse(sort.IntSlice(minors)))

	if jsonOut {
		latest := make(map[string]string, len(minors))
		for _, minor := range minors {
			latest[fmt.Sprintf("%d.%d", major, minor)] = version.Platform{Major: major, Minor: minor, Patch: patches[minor]}.String()
		}
		return json.NewEncoder(os.Stdout).Encode(latest)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MINOR\tLATEST")
	for _, minor := range minors {
		fmt.Fprintf(w, "%d.%d\t%s\n", major, minor, version.Platform{Major: major, Minor: minor, Patch: patches[minor]}.String())
	}
	return w.Flush()
}
