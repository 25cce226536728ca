package deps

import (
	"github.com/majorcontext/modsync/internal/pattern"
	"github.com/majorcontext/modsync/internal/version"
)

// pass is one sweep over the patch numbers of the target minor line.
type pass int

const (
	passWithPatch pass = iota
	passWithoutPatch
	passDone
)

// trialState is the position of the resolution loop. The with-patch pass
// walks the patch down from the target's to 0; the without-patch pass only
// tries patch 0 with the patch omitted from ${mcVersion}.
//
// Trying lower patches assumes a minor line has few patch releases and that
// mods built for an earlier patch keep working on later ones.
type trialState struct {
	target version.Platform
	pass   pass
	patch  int
}

func startTrials(target version.Platform) trialState {
	return trialState{target: target, pass: passWithPatch, patch: max(target.Patch, 0)}
}

func (s trialState) done() bool { return s.pass == passDone }

func (s trialState) context() pattern.Context {
	return pattern.Context{
		Platform:  s.target.WithPatch(s.patch),
		OmitPatch: s.pass == passWithoutPatch,
	}
}

func (s trialState) advance() trialState {
	if s.patch > 0 {
		s.patch--
		return s
	}
	switch s.pass {
	case passWithPatch:
		s.pass = passWithoutPatch
	default:
		s.pass = passDone
	}
	return s
}

// trials lists, in order, the contexts the resolver tries for target.
func trials(target version.Platform) []pattern.Context {
	var out []pattern.Context
	for s := startTrials(target); !s.done(); s = s.advance() {
		out = append(out, s.context())
	}
	return out
}
