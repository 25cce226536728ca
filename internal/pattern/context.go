package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/majorcontext/modsync/internal/version"
)

// Context binds a pattern to one hypothesized platform version.
type Context struct {
	Platform version.Platform
	// OmitPatch drops the patch component from ${mcVersion}, for artifacts
	// published against a minor line rather than a specific release.
	OmitPatch bool
}

func (c Context) String() string {
	if c.OmitPatch {
		return c.Platform.Format(false) + " (patch omitted)"
	}
	return c.Platform.Full()
}

// contextual is the closed table of platform-derived substitutions.
var contextual = map[string]func(Context) string{
	"mcVersion":     func(c Context) string { return c.Platform.Format(!c.OmitPatch) },
	"mcVersionFull": func(c Context) string { return c.Platform.Full() },
	"mcMajor":       func(c Context) string { return strconv.Itoa(c.Platform.Major) },
	"mcMinor":       func(c Context) string { return strconv.Itoa(c.Platform.Minor) },
	"mcPatch":       func(c Context) string { return strconv.Itoa(c.Platform.Patch) },
}

// IsContextual reports whether ${name} is a contextual wildcard.
func IsContextual(name string) bool {
	_, ok := contextual[name]
	return ok
}

// Expand evaluates the contextual wildcard called name under ctx.
func Expand(name string, ctx Context) (string, bool) {
	fn, ok := contextual[name]
	if !ok {
		return "", false
	}
	return fn(ctx), true
}

// text resolves a segment to literal text. Capturing segments have none.
func (s Segment) text(ctx Context) string {
	switch s.Kind {
	case Literal:
		return s.Value
	case Contextual:
		v, _ := Expand(s.Value, ctx)
		return v
	default:
		return ""
	}
}

// Render returns the regular expression fragment for one segment: quoted
// text for literals and contextual wildcards, an unquoted capture group for
// the others.
func Render(s Segment, ctx Context) string {
	if s.Escaped() {
		return regexp.QuoteMeta(s.text(ctx))
	}
	return "(.*)"
}

// Concrete resolves every segment to text. It is meant for artifact ids,
// which never contain capturing segments.
func (p Pattern) Concrete(ctx Context) string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.text(ctx))
	}
	return b.String()
}

// Expression returns the anchored regular expression matching the pattern
// under ctx.
func (p Pattern) Expression(ctx Context) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, s := range p {
		b.WriteString(Render(s, ctx))
	}
	b.WriteByte('$')
	return b.String()
}

// MatchResult is a candidate that satisfied a Matcher.
type MatchResult struct {
	Version  string
	Captures []string
}

// Matcher tests candidate strings against a contextualized pattern.
type Matcher struct {
	pattern Pattern
	re      *regexp.Regexp
}

// Matcher compiles the expression of p under ctx.
func (p Pattern) Matcher(ctx Context) (*Matcher, error) {
	re, err := regexp.Compile(p.Expression(ctx))
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", p.String(), err)
	}
	return &Matcher{pattern: p, re: re}, nil
}

// Match reports whether candidate satisfies the pattern and returns its
// captures in segment order.
func (m *Matcher) Match(candidate string) (MatchResult, bool) {
	sub := m.re.FindStringSubmatch(candidate)
	if sub == nil {
		return MatchResult{}, false
	}
	return MatchResult{Version: candidate, Captures: sub[1:]}, true
}

// String returns the underlying expression.
func (m *Matcher) String() string { return m.re.String() }

// CaptureVersion derives the rankable version of a match. Only capturing
// segments contribute: each capture is prefixed with "-" and the result is
// tokenized.
func (p Pattern) CaptureVersion(captures []string) (version.Version, error) {
	if n := p.CaptureCount(); n != len(captures) {
		return version.Version{}, fmt.Errorf("pattern %q has %d captures, got %d", p.String(), n, len(captures))
	}
	var b strings.Builder
	for _, c := range captures {
		b.WriteByte('-')
		b.WriteString(c)
	}
	return version.Parse(b.String()), nil
}
