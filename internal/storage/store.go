// Package storage provides durable persistence for season records, with
// file-backed and PostgreSQL-backed implementations.
package storage

import (
	"context"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// Store persists the full set of season records. Save replaces the stored
// set wholesale; partial updates are not supported.
type Store interface {
	// Load returns every stored record. A store with nothing saved yet
	// returns an empty slice, not an error.
	Load(ctx context.Context) ([]season.Record, error)

	// Save replaces the stored records with recs.
	Save(ctx context.Context, recs []season.Record) error

	// Close releases any resources held by the store.
	Close() error
}
