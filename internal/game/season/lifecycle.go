package season

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/gridmap"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/random"
)

// rollbackTimeout bounds compensating deletions after a failed creation.
const rollbackTimeout = 30 * time.Second

// CreateConfig supplies the parameters for season creation.
type CreateConfig struct {
	// SizeX and SizeY are the map dimensions.
	SizeX, SizeY int
	// Spacing is the Chebyshev exclusion distance between capitals.
	Spacing int
	// Biomes is the biome registry maps draw from.
	Biomes *biome.Registry
	// Rand is the randomness source for map generation.
	Rand random.Source
	// MaxMessageLength bounds each chunk of the posted map render.
	MaxMessageLength int
}

// Create provisions the season's resources and generates its map.
//
// The category channel is created first (the other channels parent to
// it); the map channel, signups channel, role, and map generation then
// run concurrently. The season becomes Active only after every
// sub-resource succeeded and the map render was posted to the map
// channel. On any sub-resource failure all resources created so far are
// deleted best-effort and the season ends Deleted; the returned error
// wraps chat.ErrPermission when the platform denied a creation.
//
// Precondition: the season must be Uninitialized; adapter, logger, and
// the config's Biomes/Rand must be non-nil.
func (s *Season) Create(ctx context.Context, adapter chat.Adapter, cfg CreateConfig, logger *zap.Logger) error {
	if err := s.transition(StateUninitialized, StateCreating); err != nil {
		return err
	}
	log := s.logger(logger)

	category, err := adapter.CreateCategory(ctx, s.guild, s.name)
	if err != nil {
		s.setState(StateDeleted)
		return fmt.Errorf("creating category channel: %w", err)
	}
	s.mu.Lock()
	s.res.Category = ChannelHandle{ID: category, Resolved: true}
	s.mu.Unlock()

	var (
		mapChannel    chat.ChannelID
		signupChannel chat.ChannelID
		role          chat.RoleID
		gameMap       *gridmap.Map
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := adapter.CreateTextChannel(gctx, s.guild, "map", category)
		if err != nil {
			return fmt.Errorf("creating map channel: %w", err)
		}
		mapChannel = id
		return nil
	})
	g.Go(func() error {
		id, err := adapter.CreateTextChannel(gctx, s.guild, "signups", category)
		if err != nil {
			return fmt.Errorf("creating signups channel: %w", err)
		}
		signupChannel = id
		return nil
	})
	g.Go(func() error {
		id, err := adapter.CreateRole(gctx, s.guild, "Season "+s.name)
		if err != nil {
			return fmt.Errorf("creating season role: %w", err)
		}
		role = id
		return nil
	})
	g.Go(func() error {
		m, err := gridmap.Generate(cfg.SizeX, cfg.SizeY, cfg.Spacing, cfg.Biomes, cfg.Rand)
		if err != nil {
			return fmt.Errorf("generating map: %w", err)
		}
		gameMap = m
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn("season creation failed, rolling back",
			zap.Error(err),
			zap.Bool("permission", errors.Is(err, chat.ErrPermission)),
		)
		s.mu.Lock()
		s.res.MapChannel = ChannelHandle{ID: mapChannel, Resolved: mapChannel != ""}
		s.res.SignupsChannel = ChannelHandle{ID: signupChannel, Resolved: signupChannel != ""}
		s.res.Role = RoleHandle{ID: role, Resolved: role != ""}
		s.mu.Unlock()
		s.rollback(ctx, adapter, log)
		return fmt.Errorf("season %q creation: %w", s.name, err)
	}

	s.mu.Lock()
	s.res.MapChannel = ChannelHandle{ID: mapChannel, Resolved: true}
	s.res.SignupsChannel = ChannelHandle{ID: signupChannel, Resolved: true}
	s.res.Role = RoleHandle{ID: role, Resolved: true}
	s.gameMap = gameMap
	s.mu.Unlock()

	// Post the rendered map before going Active. A posting failure is
	// logged but does not abort the season; the map can be viewed on
	// demand.
	err = chat.SendChunked(ctx, func(ctx context.Context, chunk string) error {
		return adapter.Reply(ctx, mapChannel, chunk)
	}, gameMap.Render(), cfg.MaxMessageLength, log)
	if err != nil {
		log.Error("unable to fully post season map", zap.Error(err))
		if sendErr := adapter.Reply(ctx, mapChannel, "[ Error in sending map ]"); sendErr != nil {
			log.Error("map failure notice delivery failed", zap.Error(sendErr))
		}
	}

	if err := s.transition(StateCreating, StateActive); err != nil {
		return err
	}
	log.Info("season created",
		zap.Int("size_x", gameMap.SizeX()),
		zap.Int("size_y", gameMap.SizeY()),
	)
	return nil
}

// rollback deletes every sub-resource created so far. Each deletion's own
// failure is logged, never escalated. Runs detached from the caller's
// cancellation so a failed group does not strand resources.
func (s *Season) rollback(ctx context.Context, adapter chat.Adapter, log *zap.Logger) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	s.deleteResources(cleanupCtx, adapter, log)
	s.setState(StateDeleted)
}

// Teardown deletes all of the season's sub-resources concurrently and
// waits for every deletion to settle. Individual failures are logged and
// swallowed; a partial teardown is fixed by a manual follow-up rather
// than an automatic retry.
//
// Precondition: the season must be Active.
// Postcondition: the season is Deleted.
func (s *Season) Teardown(ctx context.Context, adapter chat.Adapter, logger *zap.Logger) error {
	if err := s.transition(StateActive, StateDeleting); err != nil {
		return err
	}
	s.deleteResources(ctx, adapter, s.logger(logger))
	s.setState(StateDeleted)
	return nil
}

func (s *Season) deleteResources(ctx context.Context, adapter chat.Adapter, log *zap.Logger) {
	s.mu.Lock()
	res := s.res
	s.mu.Unlock()

	var wg sync.WaitGroup
	deleteChannel := func(kind string, h ChannelHandle) {
		if h.ID == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := adapter.DeleteChannel(ctx, s.guild, h.ID); err != nil {
				log.Warn("channel deletion failed",
					zap.String("kind", kind),
					zap.String("channel", string(h.ID)),
					zap.Error(err),
				)
			}
		}()
	}

	deleteChannel("map", res.MapChannel)
	deleteChannel("signups", res.SignupsChannel)
	deleteChannel("category", res.Category)

	if res.Role.ID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := adapter.DeleteRole(ctx, s.guild, res.Role.ID); err != nil {
				log.Warn("role deletion failed",
					zap.String("role", string(res.Role.ID)),
					zap.Error(err),
				)
			}
		}()
	}

	wg.Wait()
}
