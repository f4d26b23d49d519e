// Package config loads CLI configuration from .starscan.yaml, STARSCAN_*
// environment variables and flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. STARSCAN_WORKERS.
const EnvPrefix = "STARSCAN"

// MinIOConfig holds credentials for minio:// stores.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// S3Config holds settings for s3:// stores. Credentials come from the
// default AWS chain.
type S3Config struct {
	Region string `mapstructure:"region"`
}

// GridConfig describes the spatial grid of coordinate-named shards.
type GridConfig struct {
	OriginX  float64 `mapstructure:"origin_x"`
	OriginY  float64 `mapstructure:"origin_y"`
	OriginZ  float64 `mapstructure:"origin_z"`
	CellSize float64 `mapstructure:"cell_size" validate:"gt=0"`
	Format   string  `mapstructure:"format" validate:"required"`
}

// Config holds all runtime configuration for a starscan invocation.
type Config struct {
	// Store is a directory, s3://bucket/prefix or minio://bucket/prefix.
	Store string `mapstructure:"store" validate:"required"`
	// Catalog optionally keeps the catalog in a different store.
	Catalog      string      `mapstructure:"catalog"`
	Prefix       string      `mapstructure:"prefix"`
	Workers      int         `mapstructure:"workers" validate:"gte=0"`
	BatchSize    int         `mapstructure:"batch_size" validate:"gte=0"`
	ResultBuffer int         `mapstructure:"result_buffer" validate:"gte=0"`
	Strict       bool        `mapstructure:"strict"`
	IOLimit      int64       `mapstructure:"io_limit" validate:"gte=0"`
	MemoryLimit  int64       `mapstructure:"memory_limit" validate:"gte=0"`
	LogLevel     string      `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat    string      `mapstructure:"log_format" validate:"oneof=text json"`
	Grid         GridConfig  `mapstructure:"grid"`
	S3           S3Config    `mapstructure:"s3"`
	MinIO        MinIOConfig `mapstructure:"minio"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers the built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("store", ".")
	viper.SetDefault("catalog", "")
	viper.SetDefault("prefix", "")
	viper.SetDefault("workers", 0)
	viper.SetDefault("batch_size", 8)
	viper.SetDefault("result_buffer", 256)
	viper.SetDefault("strict", false)
	viper.SetDefault("io_limit", 0)
	viper.SetDefault("memory_limit", 0)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("grid.origin_x", 0.0)
	viper.SetDefault("grid.origin_y", 0.0)
	viper.SetDefault("grid.origin_z", 0.0)
	viper.SetDefault("grid.cell_size", 1000.0)
	viper.SetDefault("grid.format", "sector_%+04d_%+04d_%+04d")
	viper.SetDefault("s3.region", "")
	viper.SetDefault("minio.endpoint", "")
	viper.SetDefault("minio.access_key", "")
	viper.SetDefault("minio.secret_key", "")
	viper.SetDefault("minio.use_ssl", true)
}

// BindEnv maps STARSCAN_* variables, with dots in nested keys written as
// underscores (STARSCAN_GRID_CELL_SIZE).
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
