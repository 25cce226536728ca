// Package properties reads and edits Java .properties files (such as
// gradle.properties) without disturbing the parts it does not change.
//
// Parsing follows java.util.Properties.load: '#' and '!' comments, '=' ':'
// or whitespace separators, backslash escapes including \uXXXX, and line
// continuations. Comments, blank lines and the exact text of every entry
// that is not Set are written back verbatim. Entries that are Set are
// rewritten as key=value on one line; new keys are appended.
package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type entry struct {
	// raw is the entry's physical lines as read, joined by "\n".
	raw string
	// key is set for the last occurrence of a key; shadowed duplicates,
	// comments and blank lines are kept as raw text only.
	key   string
	keyed bool
	dirty bool
}

// File is a parsed properties file. The zero value is an empty file.
type File struct {
	entries []*entry
	values  map[string]string
	index   map[string]*entry
	crlf    bool
}

// Parse reads properties from input.
func Parse(input string) (*File, error) {
	f := &File{
		values: make(map[string]string),
		index:  make(map[string]*entry),
		crlf:   strings.Contains(input, "\r\n"),
	}

	lines := strings.Split(input, "\n")
	for i := 0; i < len(lines); i++ {
		tokens, err := tokenizeLine(strings.TrimSuffix(lines[i], "\r"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if len(tokens) == 0 || isComment(tokens) {
			f.entries = append(f.entries, &entry{raw: lines[i]})
			continue
		}

		start := i
		logical := withoutContinuations(nil, tokens)
		for lastIsContinuation(tokens) && i < len(lines)-1 {
			i++
			if tokens, err = tokenizeLine(strings.TrimSuffix(lines[i], "\r")); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			logical = withoutContinuations(logical, tokens)
		}
		raw := strings.Join(lines[start:i+1], "\n")

		key, value, ok := parseLogicalLine(logical)
		// java.util.Properties yields an empty key when the input ends in
		// a continuation that joins nothing.
		if !ok && i >= len(lines)-1 && endsInContinuation(input) {
			key, value, ok = "", "", true
		}
		if !ok {
			f.entries = append(f.entries, &entry{raw: raw})
			continue
		}

		if prev, dup := f.index[key]; dup {
			prev.keyed = false
		}
		e := &entry{raw: raw, key: key, keyed: true}
		f.entries = append(f.entries, e)
		f.index[key] = e
		f.values[key] = value
	}
	return f, nil
}

func withoutContinuations(dst, tokens []token) []token {
	for _, t := range tokens {
		if t.kind != tokContinuation {
			dst = append(dst, t)
		}
	}
	return dst
}

func endsInContinuation(input string) bool {
	return strings.HasSuffix(input, `\`) ||
		strings.HasSuffix(input, "\\\n") ||
		strings.HasSuffix(input, "\\\r")
}

// Load reads the properties file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading properties: %w", err)
	}
	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Get returns the value of key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Set assigns value to key. Setting a key to its current value leaves its
// line untouched.
func (f *File) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
		f.index = make(map[string]*entry)
	}
	if cur, ok := f.values[key]; ok && cur == value {
		return
	}
	f.values[key] = value

	if e, ok := f.index[key]; ok {
		e.dirty = true
		return
	}

	e := &entry{key: key, keyed: true, dirty: true}
	f.index[key] = e
	// Keep a trailing newline at the end of the file.
	if n := len(f.entries); n > 0 && !f.entries[n-1].keyed && f.entries[n-1].raw == "" {
		f.entries = append(f.entries[:n-1], e, f.entries[n-1])
		return
	}
	f.entries = append(f.entries, e)
}

// Keys returns the keys in file order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for _, e := range f.entries {
		if e.keyed {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// String renders the file.
func (f *File) String() string {
	lines := make([]string, len(f.entries))
	for i, e := range f.entries {
		if !e.keyed || !e.dirty {
			lines[i] = e.raw
			continue
		}
		lines[i] = escape(e.key, true) + "=" + escape(f.values[e.key], false)
		if f.crlf {
			lines[i] += "\r"
		}
	}
	return strings.Join(lines, "\n")
}

// Save writes the file to path atomically, keeping the mode of an existing
// file.
func (f *File) Save(path string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing properties: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(f.String()); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing properties: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing properties: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing properties: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming properties: %w", err)
	}
	return nil
}
