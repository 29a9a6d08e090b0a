package season

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
)

// Key identifies a season within the registry.
type Key struct {
	Guild chat.GuildID
	Name  string
}

// Loader supplies season records from durable storage.
type Loader interface {
	Load(ctx context.Context) ([]Record, error)
}

// Saver persists season records to durable storage.
type Saver interface {
	Save(ctx context.Context, recs []Record) error
}

// LoadOptions configures how records become live seasons during a load.
type LoadOptions struct {
	// Spacing is the capital exclusion distance applied to loaded maps.
	Spacing int
	// Biomes is the registry loaded maps validate against.
	Biomes *biome.Registry
	// Adapter, when non-nil, is used to re-resolve resource handles.
	Adapter chat.Adapter
}

// Registry is the durable keyed collection of seasons. It exclusively
// owns all Season instances; handlers hold them only transiently.
//
// Reads and writes are serialized behind a reload barrier: any operation
// issued while a load is in flight waits until the load completes, so no
// caller ever observes a half-reloaded registry.
type Registry struct {
	mu      sync.Mutex
	gate    chan struct{} // closed when the registry is consistent
	seasons map[Key]*Season
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	gate := make(chan struct{})
	close(gate)
	return &Registry{
		gate:    gate,
		seasons: make(map[Key]*Season),
		logger:  logger,
	}
}

// barrier waits until no load is in flight.
func (r *Registry) barrier(ctx context.Context) error {
	r.mu.Lock()
	gate := r.gate
	r.mu.Unlock()

	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the season under (guild, name).
//
// Postcondition: Returns (season, true), (nil, false) when absent, or an
// error only when ctx is cancelled while a load is in flight.
func (r *Registry) Get(ctx context.Context, guild chat.GuildID, name string) (*Season, bool, error) {
	if err := r.barrier(ctx); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.seasons[Key{Guild: guild, Name: name}]
	return s, ok, nil
}

// All returns every registered season, ordered by guild then name.
func (r *Registry) All(ctx context.Context) ([]*Season, error) {
	if err := r.barrier(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seasons := make([]*Season, 0, len(r.seasons))
	for _, s := range r.seasons {
		seasons = append(seasons, s)
	}
	sort.Slice(seasons, func(i, j int) bool {
		if seasons[i].Guild() != seasons[j].Guild() {
			return seasons[i].Guild() < seasons[j].Guild()
		}
		return seasons[i].Name() < seasons[j].Name()
	})
	return seasons, nil
}

// ByGuild returns every registered season of one guild, ordered by name.
func (r *Registry) ByGuild(ctx context.Context, guild chat.GuildID) ([]*Season, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var seasons []*Season
	for _, s := range all {
		if s.Guild() == guild {
			seasons = append(seasons, s)
		}
	}
	return seasons, nil
}

// Add registers a season under its (guild, name) key, replacing any
// season already there.
func (r *Registry) Add(ctx context.Context, s *Season) error {
	if err := r.barrier(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons[Key{Guild: s.Guild(), Name: s.Name()}] = s
	return nil
}

// Remove unregisters and returns the season under (guild, name).
//
// Postcondition: Returns (season, true) if one was removed, or
// (nil, false).
func (r *Registry) Remove(ctx context.Context, guild chat.GuildID, name string) (*Season, bool, error) {
	if err := r.barrier(ctx); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key{Guild: guild, Name: name}
	s, ok := r.seasons[key]
	if ok {
		delete(r.seasons, key)
	}
	return s, ok, nil
}

// Len returns the number of registered seasons.
func (r *Registry) Len(ctx context.Context) (int, error) {
	if err := r.barrier(ctx); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seasons), nil
}

// Load replaces the registry's contents with the records held in durable
// storage. While the load is in flight every other registry operation
// waits behind the barrier.
//
// A failed load leaves the previous contents fully intact and reopens the
// barrier; the operator is expected to retry explicitly. Records whose
// handles no longer resolve still load, degraded (see ResolveHandles).
//
// Postcondition: Either the registry holds exactly the stored seasons, or
// it is unchanged and a non-nil error is returned.
func (r *Registry) Load(ctx context.Context, src Loader, opts LoadOptions) error {
	r.mu.Lock()
	select {
	case <-r.gate:
	default:
		r.mu.Unlock()
		return fmt.Errorf("a load is already in flight")
	}
	gate := make(chan struct{})
	r.gate = gate
	r.mu.Unlock()

	// Reopen the barrier on every exit path; on failure the old contents
	// are still behind it.
	defer close(gate)

	recs, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading season records: %w", err)
	}

	next := make(map[Key]*Season, len(recs))
	for _, rec := range recs {
		s, err := FromRecord(rec, opts.Spacing, opts.Biomes)
		if err != nil {
			return fmt.Errorf("restoring season %q of guild %q: %w", rec.Name, rec.Guild, err)
		}
		if opts.Adapter != nil {
			s.ResolveHandles(ctx, opts.Adapter, r.logger)
		}
		next[rec.Key()] = s
	}

	r.mu.Lock()
	r.seasons = next
	r.mu.Unlock()

	r.logger.Info("season registry loaded", zap.Int("seasons", len(next)))
	return nil
}

// Save snapshots every season to durable storage.
func (r *Registry) Save(ctx context.Context, dst Saver) error {
	seasons, err := r.All(ctx)
	if err != nil {
		return err
	}

	recs := make([]Record, 0, len(seasons))
	for _, s := range seasons {
		recs = append(recs, s.Record())
	}
	if err := dst.Save(ctx, recs); err != nil {
		return fmt.Errorf("saving %d season(s): %w", len(recs), err)
	}
	return nil
}
