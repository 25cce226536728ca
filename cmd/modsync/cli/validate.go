package cli

import (
	"encoding/json"
	"os"

	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/ui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a dependency declarations file",
	Long: `Parse a declarations file and check every pattern and property without
contacting any repository. Defaults to modding-dependencies.yml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

type declarationSummary struct {
	Repository string   `json:"repository"`
	GroupID    string   `json:"group_id"`
	ArtifactID string   `json:"artifact_id"`
	Version    string   `json:"version"`
	Properties []string `json:"properties"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := "modding-dependencies.yml"
	if len(args) == 1 {
		path = args[0]
	}
	decls, err := deps.LoadDeclarations(path)
	if err != nil {
		return err
	}

	summaries := make([]declarationSummary, 0, len(decls))
	for _, d := range decls {
		s := declarationSummary{
			Repository: d.Repository,
			GroupID:    d.GroupID,
			ArtifactID: d.ArtifactID.String(),
			Version:    d.Version.String(),
		}
		for _, p := range d.Properties {
			s.Properties = append(s.Properties, p.Name)
		}
		summaries = append(summaries, s)
	}

	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(summaries)
	}
	for _, s := range summaries {
		ui.Printf("%s:%s %s\n", s.GroupID, s.ArtifactID, ui.Dim(s.Version))
	}
	ui.Printf("\n%s %d dependencies declared in %s\n", ui.Green("ok"), len(decls), path)
	return nil
}
