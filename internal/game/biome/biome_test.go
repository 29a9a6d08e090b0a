package biome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NotNil(t, r)
	assert.Equal(t, 4, r.Len())

	forest, ok := r.Get(Forest)
	require.True(t, ok)
	assert.Equal(t, ":green_square:", forest.Glyph)

	_, ok = r.Get("swamp")
	assert.False(t, ok)
}

func TestKeysAreSortedAndCopied(t *testing.T) {
	r := DefaultRegistry()
	keys := r.Keys()
	assert.Equal(t, []string{"desert", "forest", "mountain", "water"}, keys)

	keys[0] = "mutated"
	assert.Equal(t, []string{"desert", "forest", "mountain", "water"}, r.Keys())
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Biome{
		{ID: "forest", Name: "Forest", Glyph: ":green_square:"},
		{ID: "forest", Name: "Other Forest", Glyph: ":evergreen_tree:"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate biome ID")
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	_, err = NewRegistry([]Biome{{ID: "", Glyph: ":x:"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Biome{{ID: "forest", Glyph: ""}})
	assert.Error(t, err)
}

func TestLoadRegistryFromBytes(t *testing.T) {
	data := []byte(`
biomes:
  - id: forest
    name: Forest
    glyph: ":green_square:"
  - id: tundra
    glyph: ":white_large_square:"
`)
	r, err := LoadRegistryFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	tundra, ok := r.Get("tundra")
	require.True(t, ok)
	// Name falls back to the ID when omitted.
	assert.Equal(t, "tundra", tundra.Name)
}

func TestLoadRegistryFromBytesRejectsBadSchema(t *testing.T) {
	_, err := LoadRegistryFromBytes([]byte("biomes: [{id: forest}]"))
	require.Error(t, err)

	_, err = LoadRegistryFromBytes([]byte("{{not yaml"))
	require.Error(t, err)
}
