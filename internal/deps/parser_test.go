package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/modsync/internal/pattern"
)

func TestParseDeclarations(t *testing.T) {
	input := `
- repository: https://maven.fabricmc.net
  groupId: net.fabricmc
  artifactId: fabric-loader
  version: "*"
  properties:
    loader_version:
      source: version

- repository: https://maven.fabricmc.net
  groupId: net.fabricmc.fabric-api
  artifactId: fabric-api
  version: "${fabric_version}+${mcVersion}"
  properties:
    fabric_version:
      source: wildcard
    fabric_minecraft_version:
      source: wildcard
      name: mcVersion

- repository: https://masa.dy.fi/maven
  groupId: fi.dy.masa.malilib
  artifactId: malilib-fabric-${mcVersion}
  version: "${malilib_version}"
  properties:
    malilib_minecraft_version:
      source: wildcard
      name: mcVersion
    malilib_version:
      source: wildcard
    malilib_artifact:
      source: artifactId
`
	decls, err := ParseDeclarations([]byte(input))
	require.NoError(t, err)
	require.Len(t, decls, 3)

	loader := decls[0]
	assert.Equal(t, "https://maven.fabricmc.net", loader.Repository)
	assert.Equal(t, "net.fabricmc", loader.GroupID)
	assert.Equal(t, pattern.Pattern{{Kind: pattern.Literal, Value: "fabric-loader"}}, loader.ArtifactID)
	assert.Equal(t, pattern.Pattern{{Kind: pattern.Wildcard}}, loader.Version)
	assert.Equal(t, []Property{{Name: "loader_version", Source: SourceVersion, Wildcard: "loader_version"}}, loader.Properties)

	api := decls[1]
	assert.Equal(t, pattern.Pattern{
		{Kind: pattern.Named, Value: "fabric_version"},
		{Kind: pattern.Literal, Value: "+"},
		{Kind: pattern.Contextual, Value: "mcVersion"},
	}, api.Version)
	assert.Equal(t, []Property{
		{Name: "fabric_minecraft_version", Source: SourceWildcard, Wildcard: "mcVersion"},
		{Name: "fabric_version", Source: SourceWildcard, Wildcard: "fabric_version"},
	}, api.Properties)

	malilib := decls[2]
	assert.Equal(t, pattern.Pattern{
		{Kind: pattern.Literal, Value: "malilib-fabric-"},
		{Kind: pattern.Contextual, Value: "mcVersion"},
	}, malilib.ArtifactID)
	assert.Equal(t, "fi.dy.masa.malilib:malilib-fabric-${mcVersion}", malilib.Coordinates())
	assert.Len(t, malilib.Properties, 3)
}

func TestParseDeclarationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		is      error
	}{
		{
			name:    "not a sequence",
			input:   "repository: x",
			wantErr: "must be a sequence",
		},
		{
			name:    "empty document",
			input:   "",
			wantErr: "must be a sequence",
		},
		{
			name: "missing group",
			input: `
- repository: r
  artifactId: a
  version: "*"
  properties: {}`,
			wantErr: "dependencies[0]: groupId is required",
		},
		{
			name: "non-string version",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: 1.0
  properties: {}`,
			wantErr: "version must be a string",
		},
		{
			name: "missing properties",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "*"`,
			wantErr: "properties is required",
		},
		{
			name: "unknown field",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "*"
  variables: []
  properties: {}`,
			wantErr: `unknown field "variables"`,
		},
		{
			name: "wildcard in artifact id",
			input: `
- repository: r
  groupId: g
  artifactId: "a-*"
  version: "*"
  properties: {}`,
			is: pattern.ErrInvalidUse,
		},
		{
			name: "named wildcard in artifact id",
			input: `
- repository: r
  groupId: g
  artifactId: "a-${loader}"
  version: "*"
  properties: {}`,
			is: pattern.ErrInvalidUse,
		},
		{
			name: "unclosed placeholder",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "${x"
  properties: {}`,
			is: pattern.ErrSyntax,
		},
		{
			name: "unknown source",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "*"
  properties:
    p:
      source: semver`,
			wantErr: `unknown source "semver"`,
		},
		{
			name: "unresolved wildcard",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "${v}"
  properties:
    p:
      source: wildcard
      name: w`,
			is:      ErrUnresolvedProperty,
			wantErr: `(named: ["v"])`,
		},
		{
			name: "unresolved default wildcard name",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "*"
  properties:
    loader_version:
      source: wildcard`,
			is: ErrUnresolvedProperty,
		},
		{
			name: "error carries index",
			input: `
- repository: r
  groupId: g
  artifactId: a
  version: "*"
  properties: {}
- repository: r
  groupId: [g]
  artifactId: a
  version: "*"
  properties: {}`,
			wantErr: "dependencies[1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDeclarations([]byte(tt.input))
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestLoadDeclarations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modding-dependencies.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
- repository: https://maven.neoforged.net/releases
  groupId: net.neoforged
  artifactId: neoforge
  version: "${mcMinor}.${mcPatch}.*"
  properties:
    neo_version:
      source: version
`), 0o644))

	decls, err := LoadDeclarations(path)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "net.neoforged", decls[0].GroupID)

	_, err = LoadDeclarations(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
