// Package deps resolves declared Maven dependencies to the best published
// version for a platform version.
package deps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/majorcontext/modsync/internal/log"
	"github.com/majorcontext/modsync/internal/pattern"
	"github.com/majorcontext/modsync/internal/version"
)

// DefaultTrialDelay separates successive listing queries of one declaration.
const DefaultTrialDelay = time.Second

// ErrNoMatch is returned when no trial produced a matching version.
var ErrNoMatch = errors.New("no matching version found")

// Lister fetches the versions published for an artifact.
type Lister interface {
	Versions(ctx context.Context, repository, groupID, artifactID string) ([]string, error)
}

// ListingError records a failed listing query. It is never fatal on its own:
// the resolver moves on to the next trial.
type ListingError struct {
	Repository string
	GroupID    string
	ArtifactID string
	Err        error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %s:%s in %s: %v", e.GroupID, e.ArtifactID, e.Repository, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// Resolver runs the trial loop for declarations. A Resolver holds no state
// between calls and may resolve several declarations concurrently.
type Resolver struct {
	Lister Lister
	// Delay is waited before every listing query but the first of a
	// declaration.
	Delay time.Duration
}

// NewResolver returns a Resolver using DefaultTrialDelay.
func NewResolver(lister Lister) *Resolver {
	return &Resolver{Lister: lister, Delay: DefaultTrialDelay}
}

// Resolve finds the highest ranked version of decl for target.
//
// Trials run from the most specific context to the loosest (see trialState)
// and the first trial with any matching candidate wins; later trials are
// never consulted. A trial reuses the previous listing when its artifact id
// did not change. Among the matches of a trial, the one whose captures rank
// highest wins, and on ties the candidate listed last.
func (r *Resolver) Resolve(ctx context.Context, decl *Declaration, target version.Platform) (*Resolution, error) {
	var (
		queried    bool
		artifactID string
		listing    []string
		listErr    error
		failures   []error
	)

	for s := startTrials(target); !s.done(); s = s.advance() {
		tctx := s.context()

		id := decl.ArtifactID.Concrete(tctx)
		if !queried || id != artifactID {
			if queried {
				if err := r.wait(ctx); err != nil {
					return nil, err
				}
			}
			artifactID = id
			listing, listErr = r.Lister.Versions(ctx, decl.Repository, decl.GroupID, artifactID)
			queried = true

			if listErr != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				listErr = &ListingError{
					Repository: decl.Repository,
					GroupID:    decl.GroupID,
					ArtifactID: artifactID,
					Err:        listErr,
				}
				failures = append(failures, listErr)
				log.Debug("trial failed",
					"group", decl.GroupID,
					"artifact", artifactID,
					"repository", decl.Repository,
					"platform", tctx.String(),
					"error", listErr)
			}
		}
		if listErr != nil {
			continue
		}

		match, ok, err := bestMatch(decl.Version, tctx, listing)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Debug("no candidate matched",
				"group", decl.GroupID,
				"artifact", artifactID,
				"platform", tctx.String(),
				"candidates", len(listing))
			continue
		}

		log.Info("best matching version",
			"version", match.Version,
			"group", decl.GroupID,
			"artifact", artifactID,
			"repository", decl.Repository,
			"platform", tctx.String())
		return &Resolution{
			Declaration: decl,
			ArtifactID:  artifactID,
			Match:       match,
			Context:     tctx,
		}, nil
	}

	noMatch := fmt.Errorf("%w for %s in %s", ErrNoMatch, decl.Coordinates(), decl.Repository)
	return nil, errors.Join(append([]error{noMatch}, failures...)...)
}

// bestMatch returns the highest ranked candidate matching p under ctx.
func bestMatch(p pattern.Pattern, ctx pattern.Context, candidates []string) (pattern.MatchResult, bool, error) {
	m, err := p.Matcher(ctx)
	if err != nil {
		return pattern.MatchResult{}, false, err
	}

	var (
		best    pattern.MatchResult
		bestVer version.Version
		found   bool
	)
	for _, candidate := range candidates {
		res, ok := m.Match(candidate)
		if !ok {
			continue
		}
		v, err := p.CaptureVersion(res.Captures)
		if err != nil {
			return pattern.MatchResult{}, false, err
		}
		if !found || v.Compare(bestVer) >= 0 {
			best, bestVer, found = res, v, true
		}
	}
	return best, found, nil
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
