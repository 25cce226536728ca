// Package update runs a full synchronization: it optionally raises the
// platform patch version, resolves every declared dependency against the
// target platform, and writes the materialized properties back.
package update

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/deps/versions"
	"github.com/majorcontext/modsync/internal/history"
	"github.com/majorcontext/modsync/internal/id"
	"github.com/majorcontext/modsync/internal/log"
	"github.com/majorcontext/modsync/internal/properties"
	"github.com/majorcontext/modsync/internal/version"
)

// DefaultPlatformKey is the properties key holding the platform version.
const DefaultPlatformKey = "minecraft_version"

// Catalog reports the latest released patch of each platform minor line.
type Catalog interface {
	LatestPatches(ctx context.Context, major int) (versions.Patches, error)
}

// Recorder stores applied changes.
type Recorder interface {
	Record(runID string, changes []history.Change) error
}

// Options configures one run.
type Options struct {
	PropertiesPath   string
	DeclarationsPath string
	// PlatformKey defaults to DefaultPlatformKey.
	PlatformKey string
	// UpdatePlatformPatch raises the platform version to the latest
	// released patch of its minor line before resolving.
	UpdatePlatformPatch bool
	// OnlyWithPlatform skips dependency resolution unless the platform
	// version was raised.
	OnlyWithPlatform bool
	// Tolerable skips declarations that fail to resolve instead of failing
	// the run.
	Tolerable bool
	// DryRun computes the report without writing the properties file or
	// history.
	DryRun bool
	// Parallelism caps concurrent resolutions. Values below one mean one.
	Parallelism int
	// RunID tags history rows. Generated when empty.
	RunID string
}

// Updater wires the resolver and its collaborators.
type Updater struct {
	Resolver *deps.Resolver
	// Catalog is required when UpdatePlatformPatch is set.
	Catalog Catalog
	// History is optional.
	History Recorder
}

// Run performs an update. The properties file is read once and written at
// most once, after every declaration has been resolved.
func (u *Updater) Run(ctx context.Context, opts Options) (*Report, error) {
	key := opts.PlatformKey
	if key == "" {
		key = DefaultPlatformKey
	}
	report := &Report{RunID: opts.RunID, Platform: PlatformChange{Key: key}}
	if report.RunID == "" {
		report.RunID = id.Generate("run")
	}

	props, err := properties.Load(opts.PropertiesPath)
	if err != nil {
		return nil, err
	}
	decls, err := deps.LoadDeclarations(opts.DeclarationsPath)
	if err != nil {
		return nil, err
	}

	current, err := PlatformFrom(props, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.PropertiesPath, err)
	}
	report.Platform.From, report.Platform.To = current, current

	if opts.UpdatePlatformPatch {
		target, err := u.latestPatch(ctx, current)
		if err != nil {
			return nil, err
		}
		report.Platform.Checked = true
		report.Platform.To = target
		if report.Platform.Moved() {
			props.Set(key, target.String())
			log.Info("platform version raised", "key", key, "from", current.String(), "to", target.String())
		} else {
			log.Info("platform version unchanged", "key", key, "version", current.String())
		}
	} else {
		log.Debug("platform patch update disabled", "key", key)
	}

	var applied []history.Change
	if report.Platform.Moved() {
		applied = append(applied, history.Change{
			File:     opts.PropertiesPath,
			Property: key,
			Old:      current.String(),
			New:      report.Platform.To.String(),
		})
	}

	if opts.OnlyWithPlatform && !report.Platform.Moved() {
		log.Info("skipping dependencies: platform version did not change")
	} else {
		outcomes, err := u.Resolve(ctx, decls, report.Platform.To, opts.Tolerable, opts.Parallelism)
		if err != nil {
			return nil, err
		}
		applied = append(applied, merge(props, outcomes, report, opts.PropertiesPath)...)
	}
	log.Info("dependencies updated", "updated", report.Updated, "total", report.Total)

	if !report.AnyUpdate() || opts.DryRun {
		return report, nil
	}
	if err := props.Save(opts.PropertiesPath); err != nil {
		return nil, err
	}
	report.Written = true

	if u.History != nil {
		if err := u.History.Record(report.RunID, applied); err != nil {
			log.Warn("recording history", "error", err)
		}
	}
	return report, nil
}

// PlatformFrom reads and parses the platform version stored under key.
// Surrounding whitespace, which .properties values keep, is ignored.
func PlatformFrom(props *properties.File, key string) (version.Platform, error) {
	raw, ok := props.Get(key)
	if !ok {
		return version.Platform{}, fmt.Errorf("%s is not set", key)
	}
	return version.ParsePlatform(strings.TrimSpace(raw))
}

func (u *Updater) latestPatch(ctx context.Context, current version.Platform) (version.Platform, error) {
	if u.Catalog == nil {
		return current, errors.New("no platform catalog configured")
	}
	patches, err := u.Catalog.LatestPatches(ctx, current.Major)
	if err != nil {
		return current, fmt.Errorf("checking platform patches: %w", err)
	}
	latest, ok := patches.Latest(current.Minor)
	if !ok {
		log.Warn("no released patches known for platform minor line",
			"minor", fmt.Sprintf("%d.%d", current.Major, current.Minor))
		return current, nil
	}
	if latest <= current.Patch {
		return current, nil
	}
	return current.WithPatch(latest), nil
}

// Resolve resolves every declaration against target, at most parallelism
// at a time. Outcomes are returned in declaration order. Without tolerable
// the first failure cancels the rest and is returned; with it, failures are
// kept in their Outcome.
func (u *Updater) Resolve(ctx context.Context, decls []*deps.Declaration, target version.Platform, tolerable bool, parallelism int) ([]Outcome, error) {
	if parallelism < 1 {
		parallelism = 1
	}
	outcomes := make([]Outcome, len(decls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, decl := range decls {
		outcomes[i] = Outcome{Index: i, Declaration: decl}
		g.Go(func() error {
			res, err := u.Resolver.Resolve(gctx, decl, target)
			if err != nil {
				if !tolerable || ctx.Err() != nil {
					return fmt.Errorf("dependencies[%d] %s: %w", i, decl.Coordinates(), err)
				}
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Resolution = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// merge applies outcomes to props in declaration order and returns the
// changes made.
func merge(props *properties.File, outcomes []Outcome, report *Report, file string) []history.Change {
	var applied []history.Change
	for _, o := range outcomes {
		coords := o.Declaration.Coordinates()
		if o.Err != nil {
			log.Warn("skipping dependency", "index", o.Index, "coordinates", coords, "error", o.Err)
			report.Skipped = append(report.Skipped, Skipped{Index: o.Index, Coordinates: coords, Error: o.Err.Error()})
			continue
		}

		for _, prop := range o.Declaration.Properties {
			old, _ := props.Get(prop.Name)
			val := o.Resolution.Value(prop)
			change := PropertyChange{Name: prop.Name, Old: old, New: val, Coordinates: coords}
			report.Changes = append(report.Changes, change)
			report.Total++

			if !change.Changed() {
				log.Info("property unchanged", "name", prop.Name, "value", val)
				continue
			}
			props.Set(prop.Name, val)
			report.Updated++
			log.Info("property updated", "name", prop.Name, "from", old, "to", val)
			applied = append(applied, history.Change{
				File:        file,
				Property:    prop.Name,
				Old:         old,
				New:         val,
				Coordinates: coords,
			})
		}
	}
	return applied
}
