package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

func testRecord(guild, name string) season.Record {
	owner := "alice"
	return season.Record{
		Guild:         guild,
		Name:          name,
		ParentChannel: "cat-1",
		Role:          "role-1",
		Channels:      season.ChannelsRecord{Signups: "sig-1", Map: "map-1"},
		Map: [][]gridmap.TileRecord{
			{{Biome: "forest"}, {Biome: "water", Capital: &owner}},
			{{Biome: "desert"}, {Biome: "mountain"}},
		},
	}
}

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seasons.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return store, path
}

func TestFileStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestFileStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "seasons.json")
	_, err := NewFileStore(path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileStoreLoadMissingFileIsEmpty(t *testing.T) {
	store, _ := newTestFileStore(t)

	recs, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)

	saved := []season.Record{
		testRecord("guild-2", "Winter"),
		testRecord("guild-1", "Fall"),
	}
	require.NoError(t, store.Save(ctx, saved))

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Load orders by "guild:name" key.
	assert.Equal(t, "guild-1", recs[0].Guild)
	assert.Equal(t, "Fall", recs[0].Name)
	assert.Equal(t, "guild-2", recs[1].Guild)
	assert.Equal(t, saved[1].Map, recs[0].Map)

	owner, ok := capitalOf(recs[0], 0, 1)
	require.True(t, ok)
	assert.Equal(t, "alice", owner)
}

func capitalOf(rec season.Record, x, y int) (string, bool) {
	owner := rec.Map[x][y].Capital
	if owner == nil {
		return "", false
	}
	return *owner, true
}

func TestFileStoreSaveReplacesContents(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)

	require.NoError(t, store.Save(ctx, []season.Record{
		testRecord("guild-1", "Fall"),
		testRecord("guild-1", "Winter"),
	}))
	require.NoError(t, store.Save(ctx, []season.Record{
		testRecord("guild-1", "Spring"),
	}))

	recs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Spring", recs[0].Name)
}

func TestFileStoreDocumentShape(t *testing.T) {
	ctx := context.Background()
	store, path := newTestFileStore(t)
	require.NoError(t, store.Save(ctx, []season.Record{testRecord("guild-1", "Fall")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "guild-1:Fall")
}

func TestFileStoreLoadRejectsMalformedFile(t *testing.T) {
	store, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestFileStoreFailedSaveKeepsPreviousSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store, path := newTestFileStore(t)

	require.NoError(t, store.Save(ctx, []season.Record{testRecord("guild-1", "Fall")}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	cancel()
	require.Error(t, store.Save(ctx, []season.Record{testRecord("guild-1", "Winter")}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
