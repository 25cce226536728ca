// Package version models the two kinds of versions modsync deals with: the
// platform version a build targets (see Platform) and the loosely structured
// version strings published by dependencies (see Version).
//
// Dependency versions are ordered by splitting them into numeric and
// alphabetic runs, in the spirit of Gradle's version ordering:
// https://docs.gradle.org/current/userguide/single_versions.html#version_ordering
package version

import (
	"strconv"
	"strings"
)

// specials lists qualifiers with a fixed relative rank, lowest first.
// "dev" must stay at index 0: it ranks below every other token.
var specials = []string{"dev", "rc", "snapshot", "final", "ga", "release", "sp"}

// Token is one numeric or alphabetic run of a version string.
type Token struct {
	numeric bool
	text    string // digits without leading zeros for numeric tokens
}

// Number returns a numeric token.
func Number(n uint64) Token {
	return Token{numeric: true, text: strconv.FormatUint(n, 10)}
}

// Text returns an alphabetic token.
func Text(s string) Token {
	return Token{text: s}
}

// IsNumber reports whether t is a numeric run.
func (t Token) IsNumber() bool { return t.numeric }

func (t Token) String() string { return t.text }

// Version is a version string decomposed into its tokens.
type Version struct {
	raw    string
	tokens []Token
}

// Parse splits s into maximal runs of digits and ASCII letters. Every other
// character is a separator and is dropped, so "2.1.2" and "2-1-2" parse to
// the same tokens.
func Parse(s string) Version {
	s = strings.TrimSpace(s)
	v := Version{raw: s}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			v.tokens = append(v.tokens, numberToken(s[i:j]))
			i = j
		case isLetter(c):
			j := i
			for j < len(s) && isLetter(s[j]) {
				j++
			}
			v.tokens = append(v.tokens, Text(s[i:j]))
			i = j
		default:
			i++
		}
	}
	return v
}

func numberToken(digits string) Token {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return Token{numeric: true, text: digits}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// Tokens returns a copy of the parsed tokens.
func (v Version) Tokens() []Token {
	out := make([]Token, len(v.tokens))
	copy(out, v.tokens)
	return out
}

func (v Version) String() string { return v.raw }

// Compare returns a negative number when v < o, zero when equal and a
// positive number when v > o.
func (v Version) Compare(o Version) int {
	return Compare(v, o)
}

// Compare orders two versions token by token. At the first position where
// they differ:
//
//   - two numbers compare numerically;
//   - a number ranks above text and above a missing token;
//   - text ranks below a missing token ("1.0-alpha" < "1.0");
//   - two texts compare by qualifier rank, see compareText.
func Compare(a, b Version) int {
	for i := 0; i < len(a.tokens) || i < len(b.tokens); i++ {
		x, hasX := at(a.tokens, i)
		y, hasY := at(b.tokens, i)

		var cmp int
		switch {
		case hasX && x.numeric && hasY && y.numeric:
			cmp = compareNumbers(x.text, y.text)
		case hasX && x.numeric:
			cmp = 1
		case hasY && y.numeric:
			cmp = -1
		case hasX && hasY:
			cmp = compareText(x.text, y.text)
		case hasX:
			cmp = -1
		default:
			cmp = 1
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

func at(tokens []Token, i int) (Token, bool) {
	if i < len(tokens) {
		return tokens[i], true
	}
	return Token{}, false
}

// compareNumbers compares normalized digit strings of arbitrary length.
func compareNumbers(x, y string) int {
	if len(x) != len(y) {
		return len(x) - len(y)
	}
	return strings.Compare(x, y)
}

// compareText implements the qualifier table. Specials are matched
// case-insensitively and ordered by their position in specials. A special
// other than "dev" outranks an ordinary word; "dev" ranks below it. Two
// ordinary words compare case-sensitively by byte.
func compareText(x, y string) int {
	ix := specialRank(x)
	iy := specialRank(y)
	switch {
	case ix >= 0 && iy >= 0:
		return ix - iy
	case ix >= 0:
		if ix == 0 {
			return -1
		}
		return 1
	case iy >= 0:
		if iy == 0 {
			return 1
		}
		return -1
	default:
		return strings.Compare(x, y)
	}
}

func specialRank(s string) int {
	lower := strings.ToLower(s)
	for i, sp := range specials {
		if sp == lower {
			return i
		}
	}
	return -1
}
