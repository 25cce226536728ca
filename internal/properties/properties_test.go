package properties

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) *File {
	t.Helper()
	f, err := Parse(input)
	require.NoError(t, err)
	return f
}

func assertValues(t *testing.T, f *File, want map[string]string) {
	t.Helper()
	for k, v := range want {
		got, ok := f.Get(k)
		if assert.True(t, ok, "key %q missing", k) {
			assert.Equal(t, v, got, "key %q", k)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "separators",
			input: "\n# comments\n       \n\n\na = 1\n\n# comments\nb=2\n\nc = 3\nd: 4\ne\t5",
			want:  map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"},
		},
		{
			name: "continuations",
			input: "\n    \\\na   \\\n    = 1\nb= \\\n    2\n\nc \\\n    = \\\n    3\n" +
				"d\\\n    : \\\n    4\ne\t\\\n    \\\n    5",
			want: map[string]string{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"},
		},
		{
			name: "escapes",
			input: "\na\\=1=1\nb\\:\\=2=2\\u1234\nc\\\t\\t\\f\\r\\n \\\n    3\t4\n" +
				`d\\\\:\\\\4` + "\ne\\ \\\n    5 \\\n    5\n",
			want: map[string]string{
				"a=1":         "1",
				"b:=2":        "2\u1234",
				"c\t\t\f\r\n": "3\t4",
				`d\\`:         `\\4`,
				"e 5":         "5",
			},
		},
		{
			name:  "key only",
			input: "\na\nb\\:\\=\\\n    \\\n\nc\t\t\\\n    \n\t\td\n    e  \\\n\n",
			want:  map[string]string{"a": "", "b:=": "", "c": "", "d": "", "e": ""},
		},
		{
			name:  "first separator wins",
			input: "url:https://maven.example.com\nk v=w",
			want:  map[string]string{"url": "https://maven.example.com", "k": "v=w"},
		},
		{
			name:  "surrogate pair",
			input: `emoji=\ud83d\ude00`,
			want:  map[string]string{"emoji": "\U0001F600"},
		},
		{
			name:  "crlf",
			input: "a=1\r\nb = 2 \\\r\n  3\r\n",
			want:  map[string]string{"a": "1", "b": "2 3"},
		},
		{
			name:  "duplicate keeps last",
			input: "a=1\na=2",
			want:  map[string]string{"a": "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValues(t, mustParse(t, tt.input), tt.want)
		})
	}
}

func TestParseTrailingContinuation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"   \\\n   \\\n", true},
		{"   \\\n   \\", true},
		{"   \\\n   \\\r\n", false},
		{"   \\\n   \\\n ", false},
	}
	for _, tt := range tests {
		_, ok := mustParse(t, tt.input).Get("")
		assert.Equal(t, tt.want, ok, "%q", tt.input)
	}
}

func TestParseMalformedUnicode(t *testing.T) {
	for _, input := range []string{`a=\u12`, `a=\u12G4`, `a=\u`} {
		_, err := Parse(input)
		require.Error(t, err, input)
		assert.Contains(t, err.Error(), "malformed")
	}
}

func TestStringPreservesUntouched(t *testing.T) {
	input := "\n# some comment\na = 1\n  ! other comments\nb = 3\nc = hello \\\n    world\nb = 5\n    \\\n    \\\n  \n= 0"
	f := mustParse(t, input)

	assert.Equal(t, input, f.String())
	assert.Equal(t, []string{"a", "c", "b", ""}, f.Keys())

	f.Set("a", "1")
	assert.Equal(t, input, f.String(), "setting an unchanged value must not rewrite the line")
}

func TestSetRewritesOnlyItsEntry(t *testing.T) {
	input := "# gradle\nminecraft_version = 1.20.1\nfabric_version=0.83.0+1.20 \\\n  \n\nloader_version:0.14.21\n"
	f := mustParse(t, input)

	f.Set("minecraft_version", "1.20.2")
	f.Set("fabric_version", "0.84.0+1.20")

	assert.Equal(t,
		"# gradle\nminecraft_version=1.20.2\nfabric_version=0.84.0+1.20\n\nloader_version:0.14.21\n",
		f.String())
}

func TestSetAppendsNewKeys(t *testing.T) {
	f := mustParse(t, "a=1\n")
	f.Set("b", "2")
	f.Set("c", "3")
	assert.Equal(t, "a=1\nb=2\nc=3\n", f.String())
	assert.Equal(t, []string{"a", "b", "c"}, f.Keys())

	f = mustParse(t, "a=1")
	f.Set("b", "2")
	assert.Equal(t, "a=1\nb=2", f.String())

	var empty File
	empty.Set("k", "v")
	assert.Equal(t, "k=v", empty.String())
}

func TestSetCRLF(t *testing.T) {
	f := mustParse(t, "a=1\r\nb=2\r\n")
	f.Set("a", "9")
	f.Set("c", "3")
	assert.Equal(t, "a=9\r\nb=2\r\nc=3\r\n", f.String())
}

func TestSetShadowedDuplicate(t *testing.T) {
	f := mustParse(t, "a=1\na=2\n")
	f.Set("a", "3")
	assert.Equal(t, "a=1\na=3\n", f.String())

	again := mustParse(t, f.String())
	v, _ := again.Get("a")
	assert.Equal(t, "3", v)
}

func TestEscapeRoundTrip(t *testing.T) {
	f := &File{}
	values := map[string]string{
		"a=b:c d":   " leading space",
		"#comment":  "#not a comment",
		"tabs\t":    "\t\t\u65b0\u5e74\u5feb\u4e50\f\f\r\n",
		`back\slash`: `C:\path\to`,
		"emoji":     "\U0001F600",
		"":          "empty key",
	}
	for k, v := range values {
		f.Set(k, v)
	}

	again := mustParse(t, f.String())
	assertValues(t, again, values)
	assert.Len(t, again.Keys(), len(values))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\=b\:c\ d`, escape("a=b:c d", true))
	assert.Equal(t, `\#x`, escape("#x", true))
	assert.Equal(t, `#x=y`, escape("#x=y", false))
	assert.Equal(t, `\ a b`, escape(" a b", false))
	assert.Equal(t, `\u00e9\ud83d\ude00`, escape("é\U0001F600", false))
	assert.Equal(t, `\\`, escape(`\`, false))
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradle.properties")
	require.NoError(t, os.WriteFile(path, []byte("# mod\nmod_version=1.0.0\n"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	f.Set("mod_version", "1.1.0")
	require.NoError(t, f.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mod\nmod_version=1.1.0\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")

	_, err = Load(filepath.Join(dir, "missing.properties"))
	assert.Error(t, err)
}
