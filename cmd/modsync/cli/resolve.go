package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/properties"
	"github.com/majorcontext/modsync/internal/ui"
	"github.com/majorcontext/modsync/internal/update"
	"github.com/majorcontext/modsync/internal/version"
	"github.com/spf13/cobra"
)

var resolvePlatform string

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve dependencies and print the values without writing",
	Long: `Resolve every declared dependency and print the property values it would
produce. Nothing is written.

The platform version is read from the properties file unless --platform
is given.

Examples:
  modsync resolve
  modsync resolve --platform 1.20.4 --json`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	addFileFlags(resolveCmd)
	resolveCmd.Flags().StringVar(&resolvePlatform, "platform", "", "platform version to resolve against (e.g. 1.20.4)")
}

type resolvedDependency struct {
	Index       int               `json:"index"`
	Coordinates string            `json:"coordinates"`
	ArtifactID  string            `json:"artifact_id,omitempty"`
	Version     string            `json:"version,omitempty"`
	Trial       string            `json:"trial,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget()
	if err != nil {
		return err
	}
	decls, err := deps.LoadDeclarations(declarationsPath)
	if err != nil {
		return err
	}

	updater := &update.Updater{Resolver: newResolver()}
	outcomes, err := updater.Resolve(cmd.Context(), decls, target, true, globalCfg.Resolve.Parallelism)
	if err != nil {
		return err
	}

	results := make([]resolvedDependency, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		r := resolvedDependency{Index: o.Index, Coordinates: o.Declaration.Coordinates()}
		if o.Err != nil {
			r.Error = o.Err.Error()
			failed++
		} else {
			r.ArtifactID = o.Resolution.ArtifactID
			r.Version = o.Resolution.Version()
			r.Trial = o.Resolution.Context.String()
			r.Properties = o.Resolution.Properties()
		}
		results = append(results, r)
	}

	if jsonOut {
		if err := json.NewEncoder(os.Stdout).Encode(results); err != nil {
			return err
		}
	} else {
		printResolved(target, results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d dependencies failed to resolve", failed, len(results))
	}
	return nil
}

func resolveTarget() (version.Platform, error) {
	if resolvePlatform != "" {
		return version.ParsePlatform(resolvePlatform)
	}
	props, err := properties.Load(propertiesPath)
	if err != nil {
		return version.Platform{}, err
	}
	target, err := update.PlatformFrom(props, platformKey)
	if err != nil {
		return version.Platform{}, fmt.Errorf("%s: %w", propertiesPath, err)
	}
	return target, nil
}

func printResolved(target version.Platform, results []resolvedDependency) {
	ui.Section("Dependencies for " + target.String())
	for _, r := range results {
		if r.Error != "" {
			ui.Printf("%s %s\n  %s\n", ui.Bold(r.Coordinates), ui.Yellow("unresolved"), r.Error)
			continue
		}
		ui.Printf("%s %s %s\n", ui.Bold(r.Coordinates), r.Version, ui.Dim("["+r.Trial+"]"))
		names := make([]string, 0, len(r.Properties))
		for name := range r.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ui.Printf("  %s=%s\n", name, r.Properties[name])
		}
	}
}
