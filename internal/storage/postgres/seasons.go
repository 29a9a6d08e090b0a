package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// SeasonStore persists season records in the seasons table, with the map
// grid stored as JSONB. It implements the storage.Store interface.
type SeasonStore struct {
	pool *Pool
}

// NewSeasonStore creates a SeasonStore backed by the given pool. The
// store takes ownership of the pool; Close closes it.
//
// Precondition: pool must be a valid, open connection pool.
func NewSeasonStore(pool *Pool) *SeasonStore {
	return &SeasonStore{pool: pool}
}

// Load reads every stored record, ordered by guild then name.
//
// Postcondition: Returns the stored records, an empty slice when the
// table is empty, or a non-nil error.
func (s *SeasonStore) Load(ctx context.Context) ([]season.Record, error) {
	rows, err := s.pool.DB().Query(ctx,
		`SELECT guild, name, parent_channel, role_id, signups_channel, map_channel, map
		 FROM seasons
		 ORDER BY guild, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	recs := []season.Record{}
	for rows.Next() {
		var rec season.Record
		var mapJSON []byte
		err := rows.Scan(
			&rec.Guild, &rec.Name, &rec.ParentChannel, &rec.Role,
			&rec.Channels.Signups, &rec.Channels.Map, &mapJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning season row: %w", err)
		}
		var grid [][]gridmap.TileRecord
		if err := json.Unmarshal(mapJSON, &grid); err != nil {
			return nil, fmt.Errorf("parsing map of season %q: %w", rec.Name, err)
		}
		rec.Map = grid
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading season rows: %w", err)
	}
	return recs, nil
}

// Save replaces the stored records with recs inside one transaction.
//
// Postcondition: Either the table holds exactly recs, or the previous
// contents are untouched and a non-nil error is returned.
func (s *SeasonStore) Save(ctx context.Context, recs []season.Record) error {
	tx, err := s.pool.DB().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM seasons`); err != nil {
		return fmt.Errorf("clearing seasons: %w", err)
	}

	for _, rec := range recs {
		mapJSON, err := json.Marshal(rec.Map)
		if err != nil {
			return fmt.Errorf("encoding map of season %q: %w", rec.Name, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO seasons (guild, name, parent_channel, role_id, signups_channel, map_channel, map)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.Guild, rec.Name, rec.ParentChannel, rec.Role,
			rec.Channels.Signups, rec.Channels.Map, mapJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting season %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
//
// Postcondition: The store is no longer usable after calling Close.
func (s *SeasonStore) Close() error {
	s.pool.Close()
	return nil
}
