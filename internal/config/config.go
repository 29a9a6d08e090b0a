// Package config provides Viper-based configuration loading for the bot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DenoterConfig holds the command prefixes for each privilege tier.
type DenoterConfig struct {
	// Sudo prefixes commands only the super user may run.
	Sudo string `mapstructure:"sudo"`
	// Admin prefixes commands restricted to guild administrators.
	Admin string `mapstructure:"admin"`
	// Open prefixes commands any member may run.
	Open string `mapstructure:"open"`
}

// BotConfig holds top-level bot settings.
type BotConfig struct {
	// Token authenticates the bot with the chat platform.
	Token string `mapstructure:"token"`
	// SuperUser is the platform user ID allowed to run sudo commands.
	SuperUser string `mapstructure:"super_user"`
	// CloseDelay is how long a stop request waits before shutdown.
	CloseDelay time.Duration `mapstructure:"close_delay"`
	// SaveInterval is the period between automatic state saves.
	SaveInterval time.Duration `mapstructure:"save_interval"`
	Denoters     DenoterConfig `mapstructure:"denoters"`
}

// ChatConfig holds message transport settings.
type ChatConfig struct {
	// MaxMessageLength is the platform's message size ceiling.
	MaxMessageLength int `mapstructure:"max_message_length"`
}

// GameConfig holds map generation settings.
type GameConfig struct {
	SizeX int `mapstructure:"size_x"`
	SizeY int `mapstructure:"size_y"`
	// CapitalSpacing is the exclusion distance between player capitals.
	CapitalSpacing int `mapstructure:"capital_spacing"`
	// BiomesFile optionally points at a YAML biome definition file.
	// Empty means the built-in biome set.
	BiomesFile string `mapstructure:"biomes_file"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend is "file" or "postgres".
	Backend string `mapstructure:"backend"`
	// Path is the season file location for the file backend.
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Game     GameConfig     `mapstructure:"game"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Normalize resets each out-of-range setting to its default and returns
// one diagnostic per reset. Settings the bot cannot guess at (token,
// super user) are left alone; Validate rejects those.
//
// Postcondition: The config passes Validate's range checks; every change
// made is named in the returned diagnostics.
func (c *Config) Normalize() []string {
	var diags []string
	reset := func(key, got, def string) {
		diags = append(diags, fmt.Sprintf("%s: invalid value %s, using default %s", key, got, def))
	}

	if c.Bot.CloseDelay < 0 {
		reset("bot.close_delay", c.Bot.CloseDelay.String(), defaultCloseDelay.String())
		c.Bot.CloseDelay = defaultCloseDelay
	}
	if c.Bot.SaveInterval <= 0 {
		reset("bot.save_interval", c.Bot.SaveInterval.String(), defaultSaveInterval.String())
		c.Bot.SaveInterval = defaultSaveInterval
	}

	d := &c.Bot.Denoters
	if d.Sudo == "" || d.Admin == "" || d.Open == "" ||
		d.Sudo == d.Admin || d.Sudo == d.Open || d.Admin == d.Open {
		reset("bot.denoters",
			fmt.Sprintf("{sudo:%q admin:%q open:%q}", d.Sudo, d.Admin, d.Open),
			fmt.Sprintf("{sudo:%q admin:%q open:%q}", defaultSudoDenoter, defaultAdminDenoter, defaultOpenDenoter))
		d.Sudo, d.Admin, d.Open = defaultSudoDenoter, defaultAdminDenoter, defaultOpenDenoter
	}

	if c.Chat.MaxMessageLength < 64 {
		reset("chat.max_message_length", fmt.Sprint(c.Chat.MaxMessageLength), fmt.Sprint(defaultMaxMessageLength))
		c.Chat.MaxMessageLength = defaultMaxMessageLength
	}

	if c.Game.SizeX < 1 {
		reset("game.size_x", fmt.Sprint(c.Game.SizeX), fmt.Sprint(defaultMapSize))
		c.Game.SizeX = defaultMapSize
	}
	if c.Game.SizeY < 1 {
		reset("game.size_y", fmt.Sprint(c.Game.SizeY), fmt.Sprint(defaultMapSize))
		c.Game.SizeY = defaultMapSize
	}
	if c.Game.CapitalSpacing < 0 {
		reset("game.capital_spacing", fmt.Sprint(c.Game.CapitalSpacing), fmt.Sprint(defaultCapitalSpacing))
		c.Game.CapitalSpacing = defaultCapitalSpacing
	}

	return diags
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == StorageBackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Storage backend names.
const (
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"
)

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case StorageBackendFile:
		if s.Path == "" {
			return errors.New("storage.path must not be empty for the file backend")
		}
	case StorageBackendPostgres:
	default:
		return fmt.Errorf("storage.backend must be one of [file, postgres], got %q", s.Backend)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, normalizes out-of-range values, and validates the
// result. A missing file is written out with defaults and is not an
// error.
//
// Postcondition: Returns a valid Config plus one diagnostic per setting
// that was reset to its default, or a non-nil error.
func Load(path string) (Config, []string, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SEASONS_ prefix
	v.SetEnvPrefix("SEASONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := v.SafeWriteConfigAs(path); err != nil {
			return Config{}, nil, fmt.Errorf("writing default config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config plus normalization diagnostics,
// or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, []string, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	diags := cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, diags, err
	}
	return cfg, diags, nil
}

// Defaults for settings Normalize can fall back to.
const (
	defaultCloseDelay       = 30 * time.Second
	defaultSaveInterval     = 10 * time.Minute
	defaultSudoDenoter      = "##"
	defaultAdminDenoter     = "!"
	defaultOpenDenoter      = "/"
	defaultMaxMessageLength = 2000
	defaultMapSize          = 16
	defaultCapitalSpacing   = 2
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.super_user", "")
	v.SetDefault("bot.close_delay", defaultCloseDelay.String())
	v.SetDefault("bot.save_interval", defaultSaveInterval.String())
	v.SetDefault("bot.denoters.sudo", defaultSudoDenoter)
	v.SetDefault("bot.denoters.admin", defaultAdminDenoter)
	v.SetDefault("bot.denoters.open", defaultOpenDenoter)

	v.SetDefault("chat.max_message_length", defaultMaxMessageLength)

	v.SetDefault("game.size_x", defaultMapSize)
	v.SetDefault("game.size_y", defaultMapSize)
	v.SetDefault("game.capital_spacing", defaultCapitalSpacing)
	v.SetDefault("game.biomes_file", "")

	v.SetDefault("storage.backend", StorageBackendFile)
	v.SetDefault("storage.path", "data/seasons.json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "seasons")
	v.SetDefault("database.password", "seasons")
	v.SetDefault("database.name", "seasons")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
