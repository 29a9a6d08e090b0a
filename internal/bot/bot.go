// Package bot assembles the command tables, signup channels, and event
// loop into the running application.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/config"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/command"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/random"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/storage"
)

// Stopper schedules process shutdown. Satisfied by server.Lifecycle.
type Stopper interface {
	RequestStop(delay time.Duration)
}

// Options carries the bot's dependencies.
type Options struct {
	Adapter  chat.Adapter
	Registry *season.Registry
	Store    storage.Store
	Config   config.Config
	Stopper  Stopper
	Biomes   *biome.Registry
	Rand     random.Source
	Logger   *zap.Logger
}

// Bot consumes chat events and routes them through the dispatcher and
// the signup channels. It implements server.Service.
type Bot struct {
	adapter    chat.Adapter
	dispatcher *command.Dispatcher
	registry   *season.Registry
	store      storage.Store
	cfg        config.Config
	stopper    Stopper
	biomes     *biome.Registry
	rand       random.Source
	logger     *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New assembles a Bot from its dependencies.
//
// Precondition: every Options field must be non-nil; Config must have
// passed config validation.
func New(opts Options) (*Bot, error) {
	if opts.Adapter == nil || opts.Registry == nil || opts.Store == nil ||
		opts.Stopper == nil || opts.Biomes == nil || opts.Rand == nil || opts.Logger == nil {
		return nil, fmt.Errorf("bot options incomplete")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		adapter:  opts.Adapter,
		registry: opts.Registry,
		store:    opts.Store,
		cfg:      opts.Config,
		stopper:  opts.Stopper,
		biomes:   opts.Biomes,
		rand:     opts.Rand,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	b.dispatcher = command.NewDispatcher(
		opts.Adapter,
		b.buildTables(),
		opts.Config.Chat.MaxMessageLength,
		opts.Logger,
	)
	return b, nil
}

// Start consumes the adapter's event stream until Stop is called or the
// stream closes.
//
// Postcondition: Returns nil on orderly shutdown.
func (b *Bot) Start() error {
	b.logger.Info("bot active")
	for {
		select {
		case msg, ok := <-b.adapter.Events():
			if !ok {
				b.logger.Info("event stream closed")
				return nil
			}
			b.handle(b.ctx, msg)
		case <-b.ctx.Done():
			return nil
		}
	}
}

// Stop ends the event loop and closes the adapter.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.cancel()
		b.adapter.Close()
	})
}

// handle routes one message. A panicking handler is recovered and logged;
// one bad command must not take the process down.
func (b *Bot) handle(ctx context.Context, msg chat.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in message handler",
				zap.Any("panic", r),
				zap.String("sender", string(msg.Sender)),
				zap.String("guild", string(msg.Guild)),
				zap.String("channel", string(msg.Channel)),
			)
		}
	}()

	if b.dispatcher.Dispatch(ctx, msg) {
		return
	}

	// Not a denoted command: a message in an active season's signups
	// channel is an implicit signup.
	if s := b.signupSeason(ctx, msg); s != nil {
		b.dispatcher.RunImplicit(ctx, msg, b.signupHandler(s))
	}
}

// signupSeason returns the active season whose signups channel the
// message was sent to, or nil.
func (b *Bot) signupSeason(ctx context.Context, msg chat.Message) *season.Season {
	if msg.Guild == "" {
		return nil
	}
	seasons, err := b.registry.ByGuild(ctx, msg.Guild)
	if err != nil {
		b.logger.Warn("signup lookup failed", zap.Error(err))
		return nil
	}
	for _, s := range seasons {
		if s.State() == season.StateActive && s.Resources().SignupsChannel.ID == msg.Channel {
			return s
		}
	}
	return nil
}
