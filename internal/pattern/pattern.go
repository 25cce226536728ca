// Package pattern implements the template language used to describe how a
// dependency names its artifacts and versions relative to the platform
// version.
//
// A template is literal text with three kinds of placeholders:
//
//	${mcMinor}   contextual wildcard, substituted from the platform version
//	${name}      named wildcard, captured and addressable by name
//	*            anonymous wildcard, captured and used for ranking
//
// Whether ${name} is contextual is decided by name alone (see contextual).
package pattern

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax is returned when a template opens "${" without closing it.
	ErrSyntax = errors.New("pattern syntax error")
	// ErrInvalidUse is returned when a capturing segment appears where only
	// literals and contextual wildcards are allowed.
	ErrInvalidUse = errors.New("invalid pattern use")
)

// Kind identifies the type of a Segment.
type Kind int

const (
	Literal Kind = iota
	Contextual
	Named
	Wildcard
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Contextual:
		return "contextual_wildcard"
	case Named:
		return "named_wildcard"
	case Wildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Segment is one piece of a compiled pattern. Value holds the text of a
// Literal and the name of a Contextual or Named segment.
type Segment struct {
	Kind  Kind
	Value string
}

// Captures reports whether the segment becomes a capture group.
func (s Segment) Captures() bool {
	return s.Kind == Named || s.Kind == Wildcard
}

// Escaped reports whether the segment's text is matched literally.
func (s Segment) Escaped() bool {
	return s.Kind == Literal || s.Kind == Contextual
}

func (s Segment) String() string {
	switch s.Kind {
	case Wildcard:
		return "*"
	case Named, Contextual:
		return "${" + s.Value + "}"
	default:
		return s.Value
	}
}

// Pattern is a compiled template. Segment order is significant.
type Pattern []Segment

// Compile parses a template into segments.
func Compile(template string) (Pattern, error) {
	var p Pattern
	start := 0 // first byte of the pending literal
	for i := 0; i < len(template); {
		var seg Segment
		end := i
		switch template[i] {
		case '*':
			seg = Segment{Kind: Wildcard}
			i++
		case '$':
			if i+1 >= len(template) || template[i+1] != '{' {
				i++
				continue
			}
			closing := strings.IndexByte(template[i+2:], '}')
			if closing < 0 {
				return nil, fmt.Errorf("%w: no closing '}' for '${' at offset %d in %q", ErrSyntax, i, template)
			}
			name := template[i+2 : i+2+closing]
			seg = Segment{Kind: Named, Value: name}
			if IsContextual(name) {
				seg.Kind = Contextual
			}
			i += closing + 3
		default:
			i++
			continue
		}

		if end > start {
			p = append(p, Segment{Kind: Literal, Value: template[start:end]})
		}
		p = append(p, seg)
		start = i
	}
	if start < len(template) {
		p = append(p, Segment{Kind: Literal, Value: template[start:]})
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string) Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateArtifactID rejects patterns with capturing segments. Artifact ids
// must be computable from the platform version alone, before any listing is
// fetched.
func ValidateArtifactID(p Pattern) error {
	for _, s := range p {
		if s.Captures() {
			return fmt.Errorf("%w: artifact id %q may only contain literals and contextual wildcards, found %s", ErrInvalidUse, p.String(), s)
		}
	}
	return nil
}

// CaptureCount returns the number of capture groups the pattern produces.
func (p Pattern) CaptureCount() int {
	n := 0
	for _, s := range p {
		if s.Captures() {
			n++
		}
	}
	return n
}

// CaptureIndex returns the capture position of the named wildcard called
// name, or -1.
func (p Pattern) CaptureIndex(name string) int {
	n := 0
	for _, s := range p {
		if !s.Captures() {
			continue
		}
		if s.Kind == Named && s.Value == name {
			return n
		}
		n++
	}
	return -1
}

// Names returns the names of the named wildcards in declaration order.
func (p Pattern) Names() []string {
	var names []string
	for _, s := range p {
		if s.Kind == Named {
			names = append(names, s.Value)
		}
	}
	return names
}

// String renders the pattern back into template syntax.
func (p Pattern) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}
