package deps

import "github.com/majorcontext/modsync/internal/pattern"

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Declaration *Declaration
	ArtifactID  string
	Match       pattern.MatchResult
	// Context is the trial the match was found under.
	Context pattern.Context
}

// Version returns the matched version string.
func (r *Resolution) Version() string { return r.Match.Version }

// Value computes a single property. Declarations are validated at load
// time, so every wildcard property resolves.
func (r *Resolution) Value(prop Property) string {
	switch prop.Source {
	case SourceVersion:
		return r.Match.Version
	case SourceArtifactID:
		return r.ArtifactID
	case SourceWildcard:
		if v, ok := pattern.Expand(prop.Wildcard, r.Context); ok {
			return v
		}
		if i := r.Declaration.Version.CaptureIndex(prop.Wildcard); i >= 0 && i < len(r.Match.Captures) {
			return r.Match.Captures[i]
		}
	}
	return ""
}

// Properties computes every declared property, keyed by property name.
func (r *Resolution) Properties() map[string]string {
	out := make(map[string]string, len(r.Declaration.Properties))
	for _, prop := range r.Declaration.Properties {
		out[prop.Name] = r.Value(prop)
	}
	return out
}
