package gridmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/random"
)

func TestSnapshotRoundTrip(t *testing.T) {
	reg := biome.DefaultRegistry()
	m, err := Generate(6, 9, 2, reg, random.NewSeededSource(11))
	require.NoError(t, err)
	require.True(t, m.AssignCapital("alice", 1, 1))
	require.True(t, m.AssignCapital("bob", 5, 8))

	restored, err := FromSnapshot(m.Snapshot(), 2, reg)
	require.NoError(t, err)

	assert.Equal(t, m.SizeX(), restored.SizeX())
	assert.Equal(t, m.SizeY(), restored.SizeY())
	assert.Equal(t, m.Render(), restored.Render())

	owner, ok := restored.CapitalAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, PlayerID("alice"), owner)
	owner, ok = restored.CapitalAt(5, 8)
	require.True(t, ok)
	assert.Equal(t, PlayerID("bob"), owner)
	assert.Equal(t, 2, restored.CapitalCount())
}

func TestSnapshotSharesNoMemory(t *testing.T) {
	m := newTestMap(t, 4, 4)
	snap := m.Snapshot()
	snap[0][0].Biome = "vandalized"

	again := m.Snapshot()
	assert.NotEqual(t, "vandalized", again[0][0].Biome)
}

func TestTileRecordJSONShape(t *testing.T) {
	owner := "alice"
	data, err := json.Marshal(TileRecord{Biome: "forest", Capital: &owner})
	require.NoError(t, err)
	assert.JSONEq(t, `{"biome":"forest","capital":"alice"}`, string(data))

	data, err = json.Marshal(TileRecord{Biome: "desert"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"biome":"desert","capital":null}`, string(data))
}

func TestFromSnapshotRejectsBadInput(t *testing.T) {
	reg := biome.DefaultRegistry()

	_, err := FromSnapshot(nil, 2, reg)
	assert.Error(t, err)

	ragged := [][]TileRecord{
		{{Biome: "forest"}, {Biome: "desert"}},
		{{Biome: "forest"}},
	}
	_, err = FromSnapshot(ragged, 2, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rectangular")

	unknown := [][]TileRecord{{{Biome: "swamp"}}}
	_, err = FromSnapshot(unknown, 2, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown biome")
}

func TestPropertySnapshotRoundTrip(t *testing.T) {
	reg := biome.DefaultRegistry()
	rapid.Check(t, func(t *rapid.T) {
		sizeX := rapid.IntRange(1, 15).Draw(t, "sizeX")
		sizeY := rapid.IntRange(1, 15).Draw(t, "sizeY")
		seed := rapid.Uint64().Draw(t, "seed")

		m, err := Generate(sizeX, sizeY, 2, reg, random.NewSeededSource(seed))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		// Serialize through JSON the way the durable record does.
		data, err := json.Marshal(m.Snapshot())
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var snap [][]TileRecord
		if err := json.Unmarshal(data, &snap); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		restored, err := FromSnapshot(snap, 2, reg)
		if err != nil {
			t.Fatalf("from snapshot: %v", err)
		}
		if restored.Render() != m.Render() {
			t.Fatalf("round trip changed map contents")
		}
	})
}
