package deps

import (
	"fmt"

	"github.com/majorcontext/modsync/internal/pattern"
)

// PropertySource defines where a property's value comes from.
type PropertySource string

const (
	// SourceVersion uses the resolved version string verbatim.
	SourceVersion PropertySource = "version"
	// SourceArtifactID uses the artifact id the version was found under.
	SourceArtifactID PropertySource = "artifactId"
	// SourceWildcard uses the text of a named or contextual wildcard.
	SourceWildcard PropertySource = "wildcard"
)

// Valid reports whether s is a known source.
func (s PropertySource) Valid() bool {
	switch s {
	case SourceVersion, SourceArtifactID, SourceWildcard:
		return true
	default:
		return false
	}
}

// Property is one output of a declaration, written to the properties file
// under Name.
type Property struct {
	Name   string
	Source PropertySource
	// Wildcard names the wildcard read by SourceWildcard properties.
	Wildcard string
}

// Declaration describes how to find one dependency in a Maven repository.
type Declaration struct {
	Repository string
	GroupID    string
	ArtifactID pattern.Pattern // literals and contextual wildcards only
	Version    pattern.Pattern
	Properties []Property // sorted by name
}

// Coordinates renders group:artifact for messages.
func (d *Declaration) Coordinates() string {
	return fmt.Sprintf("%s:%s", d.GroupID, d.ArtifactID.String())
}

// validate checks the invariants the resolver and materializer rely on.
func (d *Declaration) validate() error {
	if err := pattern.ValidateArtifactID(d.ArtifactID); err != nil {
		return err
	}
	for _, prop := range d.Properties {
		if !prop.Source.Valid() {
			return fmt.Errorf("property %q: unknown source %q (expected one of %q, %q, %q)",
				prop.Name, prop.Source, SourceVersion, SourceArtifactID, SourceWildcard)
		}
		if prop.Source != SourceWildcard {
			continue
		}
		if pattern.IsContextual(prop.Wildcard) || d.Version.CaptureIndex(prop.Wildcard) >= 0 {
			continue
		}
		return fmt.Errorf("%w: property %q reads wildcard %q, which is neither a contextual wildcard nor a named wildcard of version %q (named: %q)",
			ErrUnresolvedProperty, prop.Name, prop.Wildcard, d.Version.String(), d.Version.Names())
	}
	return nil
}
