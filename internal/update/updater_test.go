package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/modsync/internal/deps"
	"github.com/majorcontext/modsync/internal/deps/versions"
	"github.com/majorcontext/modsync/internal/history"
	"github.com/majorcontext/modsync/internal/properties"
	"github.com/majorcontext/modsync/internal/version"
)

type fakeLister struct {
	mu       sync.Mutex
	listings map[string][]string
	calls    int
}

func (f *fakeLister) Versions(_ context.Context, _, _, artifactID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	v, ok := f.listings[artifactID]
	if !ok {
		return nil, errors.New("status 404")
	}
	return v, nil
}

type fakeCatalog struct {
	patches versions.Patches
	err     error
}

func (c *fakeCatalog) LatestPatches(context.Context, int) (versions.Patches, error) {
	return c.patches, c.err
}

type fakeRecorder struct {
	runID   string
	changes []history.Change
}

func (r *fakeRecorder) Record(runID string, changes []history.Change) error {
	r.runID = runID
	r.changes = append(r.changes, changes...)
	return nil
}

const testDeclarations = `
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
`

const testProperties = `# Done to increase the memory available to gradle.
org.gradle.jvmargs=-Xmx1G

# Fabric Properties
minecraft_version=1.20.1
loader_version=0.14.21

# Dependencies
fabric_version=0.83.0+1.20.1
`

type fixture struct {
	propsPath string
	declsPath string
	lister    *fakeLister
	catalog   *fakeCatalog
	recorder  *fakeRecorder
	updater   *Updater
}

func newFixture(t *testing.T, props, decls string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		propsPath: filepath.Join(dir, "gradle.properties"),
		declsPath: filepath.Join(dir, "modding-dependencies.yml"),
		lister: &fakeLister{listings: map[string][]string{
			"fabric-loader": {"0.14.21", "0.14.22", "0.15.0-beta.1"},
			"fabric-api":    {"0.83.0+1.20.1", "0.84.0+1.20.1", "0.90.0+1.20.2"},
		}},
		catalog:  &fakeCatalog{patches: versions.Patches{20: 2, 19: 4}},
		recorder: &fakeRecorder{},
	}
	require.NoError(t, os.WriteFile(f.propsPath, []byte(props), 0o644))
	require.NoError(t, os.WriteFile(f.declsPath, []byte(decls), 0o644))
	f.updater = &Updater{
		Resolver: &deps.Resolver{Lister: f.lister},
		Catalog:  f.catalog,
		History:  f.recorder,
	}
	return f
}

func (f *fixture) options() Options {
	return Options{PropertiesPath: f.propsPath, DeclarationsPath: f.declsPath, Parallelism: 2, RunID: "run_test"}
}

func (f *fixture) read(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.propsPath)
	require.NoError(t, err)
	return string(data)
}

func TestRunUpdatesDependencies(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)

	report, err := f.updater.Run(context.Background(), f.options())
	require.NoError(t, err)

	assert.True(t, report.AnyUpdate())
	assert.True(t, report.Written)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 2, report.Total)
	assert.False(t, report.Platform.Checked)
	assert.Equal(t, []PropertyChange{
		{Name: "loader_version", Old: "0.14.21", New: "0.15.0-beta.1", Coordinates: "net.fabricmc:fabric-loader"},
		{Name: "fabric_version", Old: "0.83.0+1.20.1", New: "0.84.0", Coordinates: "net.fabricmc.fabric-api:fabric-api"},
	}, report.Changes)

	assert.Equal(t, `# Done to increase the memory available to gradle.
org.gradle.jvmargs=-Xmx1G

# Fabric Properties
minecraft_version=1.20.1
loader_version=0.15.0-beta.1

# Dependencies
fabric_version=0.84.0
`, f.read(t))

	assert.Equal(t, "run_test", f.recorder.runID)
	require.Len(t, f.recorder.changes, 2)
	assert.Equal(t, "loader_version", f.recorder.changes[0].Property)
}

func TestRunRaisesPlatformPatch(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)
	opts := f.options()
	opts.UpdatePlatformPatch = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.True(t, report.Platform.Checked)
	assert.True(t, report.Platform.Moved())
	assert.Equal(t, version.Platform{Major: 1, Minor: 20, Patch: 2}, report.Platform.To)

	props := f.read(t)
	assert.Contains(t, props, "minecraft_version=1.20.2\n")
	assert.Contains(t, props, "fabric_version=0.90.0\n")

	require.NotEmpty(t, f.recorder.changes)
	assert.Equal(t, history.Change{File: f.propsPath, Property: "minecraft_version", Old: "1.20.1", New: "1.20.2"}, f.recorder.changes[0])
}

func TestRunOnlyWithPlatform(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)
	f.catalog.patches = versions.Patches{20: 1}
	opts := f.options()
	opts.UpdatePlatformPatch = true
	opts.OnlyWithPlatform = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.False(t, report.AnyUpdate())
	assert.False(t, report.Written)
	assert.Zero(t, report.Total)
	assert.Zero(t, f.lister.calls, "no dependency may be queried")
	assert.Equal(t, testProperties, f.read(t))
}

func TestRunPlatformMinorUnknown(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)
	f.catalog.patches = versions.Patches{19: 4}
	opts := f.options()
	opts.UpdatePlatformPatch = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, report.Platform.Moved())
}

func TestRunCatalogFailure(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)
	f.catalog.err = errors.New("manifest unavailable")
	opts := f.options()
	opts.UpdatePlatformPatch = true

	_, err := f.updater.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest unavailable")
	assert.Equal(t, testProperties, f.read(t))
}

func TestRunDryRun(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations)
	opts := f.options()
	opts.DryRun = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, report.AnyUpdate())
	assert.False(t, report.Written)
	assert.Equal(t, testProperties, f.read(t))
	assert.Empty(t, f.recorder.changes)
}

func TestRunNoChanges(t *testing.T) {
	props := "minecraft_version=1.20.1\nloader_version=0.15.0-beta.1\nfabric_version=0.84.0\n"
	f := newFixture(t, props, testDeclarations)

	report, err := f.updater.Run(context.Background(), f.options())
	require.NoError(t, err)
	assert.False(t, report.AnyUpdate())
	assert.Equal(t, 2, report.Total)
	assert.False(t, report.Written)
	assert.Empty(t, f.recorder.changes)
}

const failingDeclaration = `
- repository: https://maven.example.com
  groupId: com.example
  artifactId: missing
  version: "*"
  properties:
    missing_version:
      source: version
`

func TestRunFailureAbortsWithoutTolerable(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations+failingDeclaration)

	_, err := f.updater.Run(context.Background(), f.options())
	require.Error(t, err)
	assert.ErrorIs(t, err, deps.ErrNoMatch)
	assert.Contains(t, err.Error(), "dependencies[2]")
	assert.Equal(t, testProperties, f.read(t), "nothing is written on failure")
}

func TestRunTolerableSkipsFailures(t *testing.T) {
	f := newFixture(t, testProperties, testDeclarations+failingDeclaration)
	opts := f.options()
	opts.Tolerable = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 2, report.Skipped[0].Index)
	assert.Equal(t, "com.example:missing", report.Skipped[0].Coordinates)
	assert.Equal(t, 2, report.Updated)
	assert.NotContains(t, f.read(t), "missing_version")
}

func TestRunMissingPlatformKey(t *testing.T) {
	f := newFixture(t, "loader_version=1\n", testDeclarations)

	_, err := f.updater.Run(context.Background(), f.options())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minecraft_version is not set")
}

func TestPlatformFrom(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    version.Platform
		wantErr string
	}{
		{name: "plain", input: "minecraft_version=1.20.1\n", want: version.Platform{Major: 1, Minor: 20, Patch: 1}},
		{name: "trailing space", input: "minecraft_version=1.20.1 \n", want: version.Platform{Major: 1, Minor: 20, Patch: 1}},
		{name: "trailing tab", input: "minecraft_version = 1.20\t\n", want: version.Platform{Major: 1, Minor: 20}},
		{name: "missing", input: "loader_version=1\n", wantErr: "minecraft_version is not set"},
		{name: "invalid", input: "minecraft_version=23w31a\n", wantErr: "invalid platform version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, err := properties.Parse(tt.input)
			require.NoError(t, err)

			got, err := PlatformFrom(props, DefaultPlatformKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunPlatformWithTrailingWhitespace(t *testing.T) {
	f := newFixture(t, "minecraft_version=1.20.1 \nloader_version=0.14.21\n", testDeclarations)
	opts := f.options()
	opts.UpdatePlatformPatch = true

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, version.Platform{Major: 1, Minor: 20, Patch: 1}, report.Platform.From)
	assert.Contains(t, f.read(t), "minecraft_version=1.20.2\n")
}

func TestRunCustomPlatformKey(t *testing.T) {
	f := newFixture(t, "mc=1.20.1\n", testDeclarations)
	opts := f.options()
	opts.PlatformKey = "mc"

	report, err := f.updater.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "mc", report.Platform.Key)
	assert.Contains(t, f.read(t), "loader_version=0.15.0-beta.1")
}

func TestRunInvalidDeclarations(t *testing.T) {
	f := newFixture(t, testProperties, "- repository: r\n")
	_, err := f.updater.Run(context.Background(), f.options())
	require.Error(t, err)
	assert.Zero(t, f.lister.calls)
}

func TestResolvePreservesOrder(t *testing.T) {
	listings := map[string][]string{}
	var yaml string
	for i := 0; i < 8; i++ {
		artifact := fmt.Sprintf("mod%d", i)
		listings[artifact] = []string{fmt.Sprintf("%d.0", i)}
		yaml += fmt.Sprintf("- {repository: r, groupId: g, artifactId: %s, version: \"*\", properties: {p%d: {source: version}}}\n", artifact, i)
	}
	decls, err := deps.ParseDeclarations([]byte(yaml))
	require.NoError(t, err)

	u := &Updater{Resolver: &deps.Resolver{Lister: &fakeLister{listings: listings}}}
	outcomes, err := u.Resolve(context.Background(), decls, version.Platform{Major: 1, Minor: 20}, false, 3)
	require.NoError(t, err)
	require.Len(t, outcomes, 8)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, fmt.Sprintf("%d.0", i), o.Resolution.Version())
	}
}
