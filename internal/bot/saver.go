package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
)

// finalSaveTimeout bounds the shutdown flush.
const finalSaveTimeout = 15 * time.Second

// Saver periodically flushes the season registry to storage. It
// implements server.Service; Stop performs one final awaited save.
type Saver struct {
	registry *season.Registry
	store    season.Saver
	interval time.Duration
	logger   *zap.Logger

	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

// NewSaver creates a Saver flushing every interval.
//
// Precondition: registry, store, and logger must be non-nil; interval
// must be positive.
func NewSaver(registry *season.Registry, store season.Saver, interval time.Duration, logger *zap.Logger) *Saver {
	return &Saver{
		registry: registry,
		store:    store,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start runs the periodic save loop until Stop is called.
//
// Postcondition: Returns nil after the final save has been attempted.
func (s *Saver) Start() error {
	defer close(s.finished)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.save(context.Background(), "periodic")
		case <-s.done:
			ctx, cancel := context.WithTimeout(context.Background(), finalSaveTimeout)
			s.save(ctx, "final")
			cancel()
			return nil
		}
	}
}

// Stop ends the loop and blocks until the final save has finished.
func (s *Saver) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.finished
}

func (s *Saver) save(ctx context.Context, reason string) {
	start := time.Now()
	if err := s.registry.Save(ctx, s.store); err != nil {
		s.logger.Error("season save failed",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("seasons saved",
		zap.String("reason", reason),
		zap.Duration("elapsed", time.Since(start)),
	)
}
