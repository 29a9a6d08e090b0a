// Package biome defines the registry of map biomes. Biomes are referenced
// by stable key so rendering never hard-codes display glyphs.
package biome

import (
	"fmt"
	"sort"
)

// ID is the stable key of a biome.
type ID string

// Built-in biome IDs.
const (
	Forest   ID = "forest"
	Desert   ID = "desert"
	Water    ID = "water"
	Mountain ID = "mountain"
)

// Biome describes one terrain type a map tile can take.
type Biome struct {
	// ID uniquely identifies the biome.
	ID ID
	// Name is the human-readable biome name.
	Name string
	// Glyph is the emoji shortcode rendered for a tile of this biome.
	Glyph string
}

// Registry is an immutable keyed collection of biomes.
type Registry struct {
	biomes map[ID]Biome
	keys   []string // sorted, for deterministic selection
}

// NewRegistry creates a Registry from the given biomes.
//
// Precondition: every biome must have a non-empty ID and Glyph; IDs must be unique.
// Postcondition: Returns a Registry or an error naming the first violation.
func NewRegistry(biomes []Biome) (*Registry, error) {
	if len(biomes) == 0 {
		return nil, fmt.Errorf("registry requires at least one biome")
	}

	r := &Registry{
		biomes: make(map[ID]Biome, len(biomes)),
		keys:   make([]string, 0, len(biomes)),
	}
	for _, b := range biomes {
		if b.ID == "" {
			return nil, fmt.Errorf("biome with empty ID")
		}
		if b.Glyph == "" {
			return nil, fmt.Errorf("biome %q has no glyph", b.ID)
		}
		if _, exists := r.biomes[b.ID]; exists {
			return nil, fmt.Errorf("duplicate biome ID: %q", b.ID)
		}
		r.biomes[b.ID] = b
		r.keys = append(r.keys, string(b.ID))
	}
	sort.Strings(r.keys)

	return r, nil
}

// DefaultRegistry creates a Registry with the built-in biomes.
func DefaultRegistry() *Registry {
	r, err := NewRegistry([]Biome{
		{ID: Forest, Name: "Forest", Glyph: ":green_square:"},
		{ID: Desert, Name: "Desert", Glyph: ":yellow_square:"},
		{ID: Water, Name: "Water", Glyph: ":blue_square:"},
		{ID: Mountain, Name: "Mountain", Glyph: ":brown_square:"},
	})
	if err != nil {
		panic(fmt.Sprintf("building default biome registry: %v", err))
	}
	return r
}

// Get looks up a biome by ID.
//
// Postcondition: Returns (biome, true) if found, or (zero, false).
func (r *Registry) Get(id ID) (Biome, bool) {
	b, ok := r.biomes[id]
	return b, ok
}

// Keys returns the biome IDs in sorted order.
//
// Postcondition: Returns a copy; mutating it does not affect the registry.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of registered biomes.
func (r *Registry) Len() int {
	return len(r.biomes)
}
