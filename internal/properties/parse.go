package properties

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

type tokenKind int

const (
	tokNormal tokenKind = iota
	tokWhitespace
	tokEscaped
	tokContinuation
)

type token struct {
	kind  tokenKind
	value string
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '\r' || c == '\n'
}

// tokenizeLine splits one physical line into runs of whitespace and
// non-whitespace text, resolving escapes. Leading whitespace is dropped and
// a trailing lone backslash becomes a continuation token.
func tokenizeLine(line string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(line); {
		if line[i] == '\\' {
			i++
			if i == len(line) {
				tokens = append(tokens, token{kind: tokContinuation, value: `\`})
				break
			}
			if line[i] == 'u' {
				r, n, err := decodeUnicode(line[i+1:])
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, token{kind: tokEscaped, value: string(r)})
				i += 1 + n
				continue
			}
			r, size := utf8.DecodeRuneInString(line[i:])
			switch r {
			case 'r':
				r = '\r'
			case 'n':
				r = '\n'
			case 't':
				r = '\t'
			case 'f':
				r = '\f'
			}
			tokens = append(tokens, token{kind: tokEscaped, value: string(r)})
			i += size
			continue
		}

		start := i
		space := isSpace(line[i])
		for i++; i < len(line) && isSpace(line[i]) == space && line[i] != '\\'; i++ {
		}
		if space && len(tokens) == 0 {
			continue
		}
		kind := tokNormal
		if space {
			kind = tokWhitespace
		}
		tokens = append(tokens, token{kind: kind, value: line[start:i]})
	}
	return tokens, nil
}

// decodeUnicode reads the four hex digits following `\u`. A high surrogate
// immediately followed by an escaped low surrogate decodes as one rune.
// It returns the number of bytes consumed.
func decodeUnicode(s string) (rune, int, error) {
	hi, err := hex4(s)
	if err != nil {
		return 0, 0, err
	}
	if utf16.IsSurrogate(rune(hi)) && len(s) >= 10 && s[4] == '\\' && s[5] == 'u' {
		if lo, err := hex4(s[6:]); err == nil {
			if r := utf16.DecodeRune(rune(hi), rune(lo)); r != utf8.RuneError {
				return r, 10, nil
			}
		}
	}
	return rune(hi), 4, nil
}

func hex4(s string) (uint16, error) {
	if len(s) > 4 {
		s = s[:4]
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if len(s) != 4 || err != nil {
		return 0, fmt.Errorf(`malformed \uxxxx encoding: \u%s`, s)
	}
	return uint16(v), nil
}

// separatorIndex returns the position of the first unescaped key/value
// separator in a normal token, or -1.
func separatorIndex(t token) int {
	if t.kind != tokNormal {
		return -1
	}
	return strings.IndexAny(t.value, "=:")
}

func join(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.value)
	}
	return b.String()
}

// parseLogicalLine splits a logical line, stripped of continuations and
// leading whitespace, into its key and value. The key ends at the first
// unescaped whitespace, '=' or ':'. One separator may follow whitespace
// after the key; whitespace before the value is skipped.
func parseLogicalLine(tokens []token) (key, value string, ok bool) {
	if len(tokens) == 0 {
		return "", "", false
	}

	i, sep := 0, -1
	for ; i < len(tokens); i++ {
		if tokens[i].kind == tokWhitespace {
			break
		}
		if sep = separatorIndex(tokens[i]); sep >= 0 {
			break
		}
	}
	key = join(tokens[:i])

	if sep >= 0 {
		key += tokens[i].value[:sep]
	} else {
		for i++; i < len(tokens) && tokens[i].kind == tokWhitespace; i++ {
		}
		if i < len(tokens) && separatorIndex(tokens[i]) == 0 {
			sep = 0
		}
	}

	if sep >= 0 {
		t := tokens[i]
		if sep < len(t.value)-1 {
			value = t.value[sep+1:]
			i++
		} else {
			for i++; i < len(tokens) && tokens[i].kind == tokWhitespace; i++ {
			}
		}
	}
	if i < len(tokens) {
		value += join(tokens[i:])
	}
	return key, value, true
}

func isComment(tokens []token) bool {
	return tokens[0].kind == tokNormal &&
		(strings.HasPrefix(tokens[0].value, "#") || strings.HasPrefix(tokens[0].value, "!"))
}

func lastIsContinuation(tokens []token) bool {
	return len(tokens) > 0 && tokens[len(tokens)-1].kind == tokContinuation
}

func escape(s string, isKey bool) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == ' ':
			if isKey || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(' ')
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\f':
			b.WriteString(`\f`)
		case isKey && (r == '=' || r == ':'):
			b.WriteByte('\\')
			b.WriteRune(r)
		case isKey && i == 0 && (r == '#' || r == '!'):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r > 0x7e || r < 0x20:
			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(&b, `\u%04x`, u)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
