package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// FileStore persists season records as a single JSON document on disk,
// keyed "guild:name". Writes go through a temporary file and a rename so
// a crash mid-save never corrupts the previous snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. The parent directory
// is created if it does not exist; the file itself is created on the
// first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads every stored record.
//
// Postcondition: Returns the stored records ordered by key, an empty
// slice when the file does not exist yet, or an error when the file is
// unreadable or malformed.
func (f *FileStore) Load(ctx context.Context) ([]season.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []season.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var keyed map[string]season.Record
	if err := json.Unmarshal(data, &keyed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	recs := make([]season.Record, 0, len(keys))
	for _, k := range keys {
		recs = append(recs, keyed[k])
	}
	return recs, nil
}

// Save replaces the stored records with recs.
//
// Postcondition: Either the file holds exactly recs, or the previous
// contents are untouched and a non-nil error is returned.
func (f *FileStore) Save(ctx context.Context, recs []season.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keyed := make(map[string]season.Record, len(recs))
	for _, rec := range recs {
		keyed[fmt.Sprintf("%s:%s", rec.Guild, rec.Name)] = rec
	}

	data, err := json.MarshalIndent(keyed, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding season records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (f *FileStore) Close() error {
	return nil
}
