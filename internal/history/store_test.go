package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_RecordAndRecent(t *testing.T) {
	s, _ := openTestStore(t)

	first := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record("run_000000000001", []Change{
		{Time: first, File: "gradle.properties", Property: "minecraft_version", Old: "1.20.1", New: "1.20.2"},
		{Time: first, File: "gradle.properties", Property: "fabric_version", Old: "0.83.0+1.20.1", New: "0.84.0+1.20.2", Coordinates: "net.fabricmc.fabric-api:fabric-api"},
	}))
	require.NoError(t, s.Record("run_000000000002", []Change{
		{File: "gradle.properties", Property: "loader_version", Old: "0.14.21", New: "0.14.22", Coordinates: "net.fabricmc:fabric-loader"},
	}))

	all, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "run_000000000002", all[0].RunID)
	assert.Equal(t, "loader_version", all[0].Property)
	assert.WithinDuration(t, time.Now(), all[0].Time, time.Minute)

	assert.Equal(t, "fabric_version", all[1].Property)
	assert.Equal(t, "0.84.0+1.20.2", all[1].New)
	assert.Equal(t, "net.fabricmc.fabric-api:fabric-api", all[1].Coordinates)
	assert.True(t, first.Equal(all[1].Time))

	assert.Equal(t, "minecraft_version", all[2].Property)
	assert.Empty(t, all[2].Coordinates)

	limited, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "loader_version", limited[0].Property)
}

func TestStore_RecordNothing(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Record("run_x", nil))

	all, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_Reopen(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Record("run_x", []Change{{File: "f", Property: "p", Old: "1", New: "2"}}))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	all, err := again.Recent(10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p", all[0].Property)
}
