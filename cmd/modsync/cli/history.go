package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/majorcontext/modsync/internal/config"
	"github.com/majorcontext/modsync/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently applied property updates",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of changes to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.HistoryPath()); os.IsNotExist(err) {
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode([]history.Change{})
		}
		fmt.Println("No history recorded")
		return nil
	}

	store, err := history.Open(config.HistoryPath())
	if err != nil {
		return err
	}
	defer store.Close()

	changes, err := store.Recent(historyLimit)
	if err != nil {
		return err
	}

	if jsonOut {
		if changes == nil {
			changes = []history.Change{}
		}
		return json.NewEncoder(os.Stdout).Encode(changes)
	}
	if len(changes) == 0 {
		fmt.Println("No history recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tRUN ID\tPROPERTY\tOLD\tNEW")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", formatAge(c.Time), c.RunID, c.Property, c.Old, c.New)
	}
	return w.Flush()
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
