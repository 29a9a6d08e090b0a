package gridmap

import (
	"fmt"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
)

// TileRecord is the JSON-friendly durable form of one tile.
type TileRecord struct {
	Biome   string  `json:"biome"`
	Capital *string `json:"capital"`
}

// Snapshot returns the durable form of the map's tiles.
//
// Postcondition: The returned slice shares no memory with the map; the
// caller may serialize or mutate it freely.
func (m *Map) Snapshot() [][]TileRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make([][]TileRecord, len(m.tiles))
	for x, row := range m.tiles {
		recs := make([]TileRecord, len(row))
		for y, tile := range row {
			rec := TileRecord{Biome: string(tile.Biome)}
			if tile.Capital != nil {
				owner := string(*tile.Capital)
				rec.Capital = &owner
			}
			recs[y] = rec
		}
		snap[x] = recs
	}
	return snap
}

// FromSnapshot reconstructs a Map from its durable form.
//
// Precondition: reg must be non-nil; spacing must be >= 0.
// Postcondition: Returns a Map equivalent to the one Snapshot was taken
// from, or an error if the snapshot is empty, ragged, or references an
// unknown biome.
func FromSnapshot(snap [][]TileRecord, spacing int, reg *biome.Registry) (*Map, error) {
	if len(snap) == 0 || len(snap[0]) == 0 {
		return nil, fmt.Errorf("snapshot has no tiles")
	}

	width := len(snap[0])
	tiles := make([][]Tile, len(snap))
	for x, recs := range snap {
		if len(recs) != width {
			return nil, fmt.Errorf("snapshot is not rectangular: row %d has %d tiles, want %d", x, len(recs), width)
		}
		row := make([]Tile, len(recs))
		for y, rec := range recs {
			id := biome.ID(rec.Biome)
			if _, ok := reg.Get(id); !ok {
				return nil, fmt.Errorf("tile (%d, %d) references unknown biome %q", x, y, rec.Biome)
			}
			tile := Tile{Biome: id}
			if rec.Capital != nil {
				owner := PlayerID(*rec.Capital)
				tile.Capital = &owner
			}
			row[y] = tile
		}
		tiles[x] = row
	}

	return &Map{tiles: tiles, biomes: reg, spacing: spacing}, nil
}
