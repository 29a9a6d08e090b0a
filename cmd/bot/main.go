// Package main provides the bot binary. It wires storage, the season
// registry, and the command dispatcher to a chat transport and runs the
// event loop under lifecycle management.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/bot"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/chat"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/config"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/biome"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/random"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/game/season"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/observability"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/server"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/storage"
	"github.com/MAO3J1m0Op/My-Cool-Unnamed-Game/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, diags, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	for _, diag := range diags {
		logger.Warn("config setting reset to default", zap.String("setting", diag))
	}

	// Biomes
	biomes := biome.DefaultRegistry()
	if cfg.Game.BiomesFile != "" {
		biomes, err = biome.LoadRegistryFromFile(cfg.Game.BiomesFile)
		if err != nil {
			logger.Fatal("loading biomes", zap.Error(err))
		}
		logger.Info("biomes loaded",
			zap.String("file", cfg.Game.BiomesFile),
			zap.Int("count", biomes.Len()),
		)
	}

	// Storage backend
	var store storage.Store
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewSeasonStore(pool)
	default:
		store, err = storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			logger.Fatal("opening season file", zap.Error(err))
		}
	}
	defer store.Close()

	// The console transport stands in until a platform client is wired
	// behind chat.Adapter. Every stdin line is a command from the
	// console operator.
	adapter := chat.NewConsoleAdapter(os.Stdin, os.Stdout)

	// Restore seasons
	registry := season.NewRegistry(logger)
	loadStart := time.Now()
	err = registry.Load(ctx, store, season.LoadOptions{
		Spacing: cfg.Game.CapitalSpacing,
		Biomes:  biomes,
		Adapter: adapter,
	})
	if err != nil {
		logger.Fatal("loading seasons", zap.Error(err))
	}
	count, err := registry.Len(ctx)
	if err != nil {
		logger.Fatal("counting seasons", zap.Error(err))
	}
	logger.Info("seasons restored",
		zap.Int("count", count),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.OnInterrupt(func() {
		fmt.Println("Use the stop command to exit.")
	})

	b, err := bot.New(bot.Options{
		Adapter:  adapter,
		Registry: registry,
		Store:    store,
		Config:   cfg,
		Stopper:  lifecycle,
		Biomes:   biomes,
		Rand:     random.NewMathSource(),
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("assembling bot", zap.Error(err))
	}

	saver := bot.NewSaver(registry, store, cfg.Bot.SaveInterval, logger)

	lifecycle.Add("bot", b)
	lifecycle.Add("saver", saver)

	logger.Info("bot starting",
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}
