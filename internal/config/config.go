//-------------------------------------------------------------------------
//
// pgEdge Trade Analyzer
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-trades.
// Configuration is loaded from a config file, an optional .env file and
// PGEDGE_TRADES_* environment variables. CLI flags take precedence over
// all of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-trades/internal/trades"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PGEDGE_TRADES"

// Config holds all configuration for pgedge-trades.
type Config struct {
	// Source is the trade history spreadsheet (.xlsx, .xlsm or .csv).
	Source string `mapstructure:"source"`

	// Sheet is the worksheet to read; empty means the first sheet.
	Sheet string `mapstructure:"sheet"`

	// Connection is the PostgreSQL connection string of the trade store.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Clients holds the client selection defaults.
	Clients ClientsConfig `mapstructure:"clients"`

	// Normalize holds trade record cleaning settings.
	Normalize NormalizeConfig `mapstructure:"normalize"`

	// Cache holds summary cache settings.
	Cache CacheConfig `mapstructure:"cache"`

	// Serve holds configuration for the serve subcommand.
	Serve ServeConfig `mapstructure:"serve"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// ClientsConfig holds the default client list.
type ClientsConfig struct {
	// DefaultCodes are always offered for selection.
	DefaultCodes []string `mapstructure:"default_codes"`
}

// NormalizeConfig holds cleaning settings.
type NormalizeConfig struct {
	// NumericColumns are cleaned of separators and missing sentinels.
	NumericColumns []string `mapstructure:"numeric_columns"`
}

// CacheConfig holds summary cache settings.
type CacheConfig struct {
	// MaxEntries bounds the number of cached client summaries.
	// 0 disables the cache.
	MaxEntries int `mapstructure:"max_entries"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	// Listen is the address the API listens on.
	Listen string `mapstructure:"listen"`

	// ShutdownTimeout is how long to wait for requests in flight, in seconds.
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

// GenerateConfig holds sample data settings.
type GenerateConfig struct {
	// Output is the file to write (.xlsx or .csv).
	Output string `mapstructure:"output"`

	// Rows is the number of trades to generate.
	Rows int `mapstructure:"rows"`

	// Clients is the number of client accounts; the default codes are
	// used first.
	Clients int `mapstructure:"clients"`

	// Instruments is the number of instruments.
	Instruments int `mapstructure:"instruments"`

	// StartDate and EndDate bound the trade dates (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// DirtyRate is the share of cells rendered the way messy exports
	// render them (separators, sentinels, unpadded codes).
	DirtyRate float64 `mapstructure:"dirty_rate"`

	// Seed makes output reproducible; 0 means random.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultClientCodes is the client list offered when none is configured.
var DefaultClientCodes = []string{"118095", "051851", "915310", "912812", "207188"}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Clients: ClientsConfig{
			DefaultCodes: append([]string(nil), DefaultClientCodes...),
		},
		Normalize: NormalizeConfig{
			NumericColumns: append([]string(nil), trades.DefaultNumericColumns...),
		},
		Cache: CacheConfig{
			MaxEntries: 64,
		},
		Serve: ServeConfig{
			Listen:          ":8080",
			ShutdownTimeout: 10,
		},
		Generate: GenerateConfig{
			Output:      "trade-history.xlsx",
			Rows:        2000,
			Clients:     8,
			Instruments: 12,
			StartDate:   "2025-01-05",
			EndDate:     "2025-03-03",
			DirtyRate:   0.05,
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-trades.yaml
// 3. ~/.config/pgedge-trades/config.yaml
func Load(configFile string) (*Config, error) {
	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("pgedge-trades")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-trades"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"source", "sheet", "connection", "log_level", "serve.listen"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Clients.DefaultCodes = trades.MergeCodes(cfg.Clients.DefaultCodes)

	return cfg, nil
}

// NormalizeOptions returns the trade normalization options.
func (c *Config) NormalizeOptions() trades.Options {
	opts := trades.DefaultOptions()
	if len(c.Normalize.NumericColumns) > 0 {
		opts.NumericColumns = append([]string(nil), c.Normalize.NumericColumns...)
	}
	return opts
}

// Validate checks that a trade source is configured.
func (c *Config) Validate() error {
	if c.Source == "" && c.Connection == "" {
		return fmt.Errorf("a source spreadsheet or a connection string is required")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max_entries must be non-negative")
	}
	for _, col := range c.Normalize.NumericColumns {
		switch col {
		case trades.ColQuantity, trades.ColExecutedPrice, trades.ColConsideration:
		default:
			return fmt.Errorf("numeric column %q is not a numeric trade column", col)
		}
	}
	return nil
}

// ValidateServe checks configuration required for the serve command.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Serve.Listen == "" {
		return fmt.Errorf("listen address is required for serve")
	}
	if c.Serve.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	return nil
}

// ValidateImport checks configuration required for the import command.
func (c *Config) ValidateImport() error {
	if c.Source == "" {
		return fmt.Errorf("a source spreadsheet is required for import")
	}
	if c.Connection == "" {
		return fmt.Errorf("connection string is required for import")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	g := c.Generate
	if g.Output == "" {
		return fmt.Errorf("output file is required for generate")
	}
	if g.Rows < 1 {
		return fmt.Errorf("rows must be at least 1")
	}
	if g.Clients < 1 {
		return fmt.Errorf("clients must be at least 1")
	}
	if g.Instruments < 1 {
		return fmt.Errorf("instruments must be at least 1")
	}
	if g.DirtyRate < 0 || g.DirtyRate > 1 {
		return fmt.Errorf("dirty_rate must be between 0 and 1")
	}
	start, end, err := g.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}

// DateRange parses the generator's date bounds.
func (g GenerateConfig) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(trades.DateLayout, g.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(trades.DateLayout, g.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}
	return start, end, nil
}
