package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/majorcontext/modsync/internal/config"
	"github.com/majorcontext/modsync/internal/history"
	"github.com/majorcontext/modsync/internal/id"
	"github.com/majorcontext/modsync/internal/log"
	"github.com/majorcontext/modsync/internal/ui"
	"github.com/majorcontext/modsync/internal/update"
	"github.com/spf13/cobra"
)

// Workflow input names, as declared by the action.
const (
	inputUpdatePatch      = "update_mc_patch"
	inputOnlyWithPlatform = "update_only_with_mc"
	inputTolerable        = "tolerable"
)

var (
	propertiesPath   string
	declarationsPath string
	platformKey      string
	updatePatch      bool
	onlyWithPlatform bool
	tolerable        bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update dependency versions in gradle.properties",
	Long: `Resolve every dependency declared in the declarations file against the
Minecraft version in the properties file and write the results back.

With --update-platform-patch the Minecraft version is first raised to the
latest released patch of its minor line. Inside GitHub Actions the flags
default to the workflow inputs update_mc_patch, update_only_with_mc and
tolerable, and any_update is written to the step outputs.

Examples:
  # Update against the current Minecraft version
  modsync update

  # Also move to the newest patch release, and skip dependencies otherwise
  modsync update --update-platform-patch --only-with-platform

  # Preview without writing
  modsync update --dry-run`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addFileFlags(updateCmd)
	updateCmd.Flags().BoolVar(&updatePatch, "update-platform-patch", actionBool(inputUpdatePatch, false),
		"raise the platform version to the latest patch of its minor line")
	updateCmd.Flags().BoolVar(&onlyWithPlatform, "only-with-platform", actionBool(inputOnlyWithPlatform, false),
		"update dependencies only when the platform version was raised")
	updateCmd.Flags().BoolVar(&tolerable, "tolerable", actionBool(inputTolerable, false),
		"skip dependencies that fail to resolve instead of aborting")
}

// addFileFlags registers the properties and declarations file flags.
func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&propertiesPath, "properties", "gradle.properties", "properties file to update")
	cmd.Flags().StringVar(&declarationsPath, "config", "modding-dependencies.yml", "dependency declarations file")
	cmd.Flags().StringVar(&platformKey, "platform-key", update.DefaultPlatformKey, "properties key holding the platform version")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	runID := id.Generate("run")
	log.SetRunID(runID)

	updater := &update.Updater{
		Resolver: newResolver(),
		Catalog:  newCatalog(),
	}
	if globalCfg.History.Enabled && !dryRun {
		store, err := history.Open(config.HistoryPath())
		if err != nil {
			log.Warn("history disabled", "error", err)
		} else {
			defer store.Close()
			updater.History = store
		}
	}

	report, err := updater.Run(cmd.Context(), update.Options{
		PropertiesPath:      propertiesPath,
		DeclarationsPath:    declarationsPath,
		PlatformKey:         platformKey,
		UpdatePlatformPatch: updatePatch,
		OnlyWithPlatform:    onlyWithPlatform,
		Tolerable:           tolerable,
		DryRun:              dryRun,
		Parallelism:         globalCfg.Resolve.Parallelism,
		RunID:               runID,
	})
	if err != nil {
		log.Error("update failed", "error", err)
		return err
	}

	if err := writeActionOutput(os.Getenv("GITHUB_OUTPUT"), "any_update", strconv.FormatBool(report.AnyUpdate())); err != nil {
		return err
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(report)
	}
	printReport(report)
	return nil
}

func printReport(r *update.Report) {
	p := r.Platform
	if p.Checked {
		ui.Change(p.Key, p.From.String(), p.To.String())
	}
	for _, c := range r.Changes {
		ui.Change(c.Name, c.Old, c.New)
	}
	for _, s := range r.Skipped {
		ui.Warnf("dependencies[%d] %s skipped: %s", s.Index, s.Coordinates, s.Error)
	}

	summary := fmt.Sprintf("%d of %d properties updated", r.Updated, r.Total)
	switch {
	case !r.AnyUpdate():
		ui.Printf("\nEverything is up to date.\n")
		return
	case dryRun:
		summary += " (dry run, nothing written)"
	case r.Written:
		summary += ", wrote " + propertiesPath
	}
	ui.Printf("\n%s\n", summary)
}
