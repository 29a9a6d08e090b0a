// Package gridmap implements the season map: a rectangular grid of biome
// tiles with spacing-constrained capital placement.
package gridmap

import (
	"fmt"
	"strings"
	"sync"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/random"
)

// PlayerID identifies the owner of a capital tile.
type PlayerID string

// Tile is one cell of the map grid.
//
// Invariant: Biome never changes after generation. Capital transitions from
// nil to a value at most once and never reverts within a season.
type Tile struct {
	Biome   biome.ID
	Capital *PlayerID
}

// Map is a rectangular grid of tiles. Dimensions are fixed at generation
// time. All methods are safe for concurrent use.
//
// Invariant: every row has equal length; sizeX, sizeY >= 1.
type Map struct {
	mu      sync.RWMutex
	tiles   [][]Tile // tiles[x][y]
	biomes  *biome.Registry
	spacing int // Chebyshev exclusion distance between capitals
}

// Generate produces a new Map with independently drawn biomes and no
// capitals. Dimensions are floored to integers by the caller's parser;
// here they must already be integral.
//
// Precondition: reg and src must be non-nil; spacing must be >= 0.
// Postcondition: Returns a Map with exactly sizeX rows of sizeY tiles,
// or an error on non-positive dimensions.
func Generate(sizeX, sizeY, spacing int, reg *biome.Registry, src random.Source) (*Map, error) {
	if sizeX < 1 || sizeY < 1 {
		return nil, fmt.Errorf("map dimensions must be positive, got %dx%d", sizeX, sizeY)
	}

	keys := reg.Keys()
	tiles := make([][]Tile, sizeX)
	for x := range tiles {
		row := make([]Tile, sizeY)
		for y := range row {
			row[y] = Tile{Biome: biome.ID(random.PickKey(src, keys))}
		}
		tiles[x] = row
	}

	return &Map{tiles: tiles, biomes: reg, spacing: spacing}, nil
}

// SizeX returns the number of rows.
func (m *Map) SizeX() int {
	return len(m.tiles)
}

// SizeY returns the number of tiles per row.
func (m *Map) SizeY() int {
	return len(m.tiles[0])
}

// Spacing returns the Chebyshev exclusion distance between capitals.
func (m *Map) Spacing() int {
	return m.spacing
}

// Render produces the text form of the map: one line per row, each tile as
// its biome's glyph in sequence. Deterministic given the tile contents.
// Splitting the output to fit transport limits is the delivery layer's job.
func (m *Map) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	for x, row := range m.tiles {
		if x > 0 {
			sb.WriteByte('\n')
		}
		for _, tile := range row {
			b, ok := m.biomes.Get(tile.Biome)
			if !ok {
				// Unreachable for maps built through Generate/FromSnapshot.
				sb.WriteString(":question:")
				continue
			}
			sb.WriteString(b.Glyph)
		}
	}
	return sb.String()
}

// AssignCapital attempts to place player's capital at (x, y).
//
// The placement fails, mutating nothing, when (x, y) is out of bounds or
// any tile within the Chebyshev exclusion distance (inclusive, clipped to
// map bounds) already has an owner. A tile at exactly the exclusion
// distance counts as conflicting.
//
// Postcondition: Returns true and sets the tile's owner, or returns false
// with the map unchanged. An owner, once set, is never overwritten.
func (m *Map) AssignCapital(player PlayerID, x, y int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if x < 0 || x >= len(m.tiles) || y < 0 || y >= len(m.tiles[0]) {
		return false
	}

	lowX := max(x-m.spacing, 0)
	hiX := min(x+m.spacing+1, len(m.tiles))
	lowY := max(y-m.spacing, 0)
	hiY := min(y+m.spacing+1, len(m.tiles[0]))

	for cx := lowX; cx < hiX; cx++ {
		for cy := lowY; cy < hiY; cy++ {
			if m.tiles[cx][cy].Capital != nil {
				return false
			}
		}
	}

	owner := player
	m.tiles[x][y].Capital = &owner
	return true
}

// CapitalAt returns the owner of the tile at (x, y).
//
// Postcondition: Returns (owner, true) if the tile has a capital, or
// ("", false) when it has none or the coordinates are out of bounds.
func (m *Map) CapitalAt(x, y int) (PlayerID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if x < 0 || x >= len(m.tiles) || y < 0 || y >= len(m.tiles[0]) {
		return "", false
	}
	if m.tiles[x][y].Capital == nil {
		return "", false
	}
	return *m.tiles[x][y].Capital, true
}

// CapitalCount returns the number of placed capitals.
func (m *Map) CapitalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, row := range m.tiles {
		for _, tile := range row {
			if tile.Capital != nil {
				count++
			}
		}
	}
	return count
}
