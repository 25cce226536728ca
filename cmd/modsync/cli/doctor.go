package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/majorcontext/modsync/internal/config"
	"github.com/majorcontext/modsync/internal/credential"
	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/doctor"
	"github.com/majorcontext/modsync/internal/history"
	"github.com/majorcontext/modsync/internal/ui"
	"github.com/majorcontext/modsync/internal/version"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnostic information about the modsync environment",
	Long: `Displays diagnostic information for debugging:
- modsync version and effective configuration
- whether the system keychain is usable for repository credentials
- the update history database
- reachability of the Minecraft version manifest
- the declarations file in the current directory, if any`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println(ui.Bold("modsync doctor"))
	fmt.Println()

	reg := doctor.NewRegistry()
	reg.Register(&versionSection{})
	reg.Register(&configSection{cfg: globalCfg})
	reg.Register(&keychainSection{store: credential.NewKeyringStore()})
	reg.Register(&historySection{path: config.HistoryPath()})
	reg.Register(&catalogSection{})
	reg.Register(&declarationsSection{path: "modding-dependencies.yml"})

	reg.Run(cmd.Context(), os.Stdout, ui.Section)
	return nil
}

type versionSection struct{}

func (s *versionSection) Name() string { return "Version" }

func (s *versionSection) Print(_ context.Context, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "modsync:\t%s\n", buildVersion)
	fmt.Fprintf(tw, "Go:\t%s\n", runtime.Version())
	fmt.Fprintf(tw, "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(tw, "GitHub Actions:\t%t\n", inActions())
	return tw.Flush()
}

type configSection struct {
	cfg *config.GlobalConfig
}

func (s *configSection) Name() string { return "Configuration" }

func (s *configSection) Print(_ context.Context, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Config dir:\t%s\n", config.GlobalConfigDir())
	fmt.Fprintf(tw, "Trial delay:\t%s\n", s.cfg.Resolve.TrialDelay)
	fmt.Fprintf(tw, "HTTP timeout:\t%s\n", s.cfg.Resolve.HTTPTimeout)
	fmt.Fprintf(tw, "Parallelism:\t%d\n", s.cfg.Resolve.Parallelism)
	fmt.Fprintf(tw, "Manifest:\t%s\n", s.cfg.Platform.ManifestURL)
	fmt.Fprintf(tw, "Debug logs:\t%s (%d days)\n", config.DebugDir(), s.cfg.Debug.RetentionDays)
	fmt.Fprintf(tw, "History:\t%t\n", s.cfg.History.Enabled)
	return tw.Flush()
}

type keychainSection struct {
	store credential.Store
}

func (s *keychainSection) Name() string { return "Keychain" }

func (s *keychainSection) Print(_ context.Context, w io.Writer) error {
	// A lookup of a key that is never stored tells a working keychain
	// (ErrNotFound) from an unavailable one.
	_, err := s.store.Get("https://modsync.invalid/doctor-probe")
	switch {
	case err == nil, errors.Is(err, credential.ErrNotFound):
		fmt.Fprintln(w, "Keychain is available")
	default:
		fmt.Fprintf(w, "Keychain unavailable: %v\n", err)
		fmt.Fprintln(w, "Private repositories will be queried without credentials")
	}
	return nil
}

type historySection struct {
	path string
}

func (s *historySection) Name() string { return "History" }

func (s *historySection) Print(_ context.Context, w io.Writer) error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		fmt.Fprintf(w, "No history database at %s\n", s.path)
		return nil
	}
	store, err := history.Open(s.path)
	if err != nil {
		return err
	}
	defer store.Close()

	changes, err := store.Recent(0)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Database:\t%s\n", s.path)
	fmt.Fprintf(tw, "Changes:\t%d\n", len(changes))
	if len(changes) > 0 {
		fmt.Fprintf(tw, "Last change:\t%s (%s)\n", formatAge(changes[0].Time), changes[0].RunID)
	}
	return tw.Flush()
}

type catalogSection struct{}

func (s *catalogSection) Name() string { return "Version Manifest" }

func (s *catalogSection) Print(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	patches, err := newCatalog().LatestPatches(ctx, 1)
	if err != nil {
		fmt.Fprintf(w, "Unreachable: %v\n", err)
		return nil
	}
	minors := patches.Minors()
	latest := minors[len(minors)-1]
	fmt.Fprintf(w, "Reachable in %s, %d minor lines, newest release %s\n",
		time.Since(start).Round(time.Millisecond), len(minors),
		version.Platform{Major: 1, Minor: latest, Patch: patches[latest]})
	return nil
}

type declarationsSection struct {
	path string
}

func (s *declarationsSection) Name() string { return "Declarations" }

func (s *declarationsSection) Print(_ context.Context, w io.Writer) error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		fmt.Fprintf(w, "No %s in the current directory\n", s.path)
		return nil
	}
	decls, err := deps.LoadDeclarations(s.path)
	if err != nil {
		fmt.Fprintf(w, "Invalid: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "%s declares %d dependencies\n", s.path, len(decls))
	return nil
}
