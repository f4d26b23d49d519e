package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/starscan"
	"github.com/hupe1980/starscan/internal/config"
	"github.com/hupe1980/starscan/model"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "starscan",
		Short:         "Search sharded star-system dumps for body patterns",
		Long:          "starscan indexes compressed JSONL shards of star systems into a region catalog and searches them by pattern, region or spatial corridor.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .starscan.yaml)")
	pf.String("store", ".", "shard store: a directory, s3://bucket/prefix or minio://bucket/prefix")
	pf.String("catalog", "", "separate catalog store (default: the shard store)")
	pf.String("prefix", "", "only consider shard blobs under this prefix")
	pf.Int("workers", 0, "shards processed concurrently (0 = GOMAXPROCS)")
	pf.Bool("strict", false, "fail a shard on its first malformed line")
	pf.Int64("io-limit", 0, "compressed read limit in bytes per second (0 = unlimited)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	for key, flag := range map[string]string{
		"store":      "store",
		"catalog":    "catalog",
		"prefix":     "prefix",
		"workers":    "workers",
		"strict":     "strict",
		"io_limit":   "io-limit",
		"log_level":  "log-level",
		"log_format": "log-format",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newBuildCmd(), newSearchCmd())
	return root
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		viper.SetConfigName(".starscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		// It's fine if no config file is found; we use defaults.
		_ = viper.ReadInConfig()
	}
	config.BindEnv()
	return nil
}

// commonOptions maps the configuration onto library options shared by
// build and search.
func commonOptions(ctx context.Context, cfg config.Config, stderr io.Writer) ([]starscan.Option, error) {
	logger := starscan.NewTextLogger(stderr, cfg.Level())
	if cfg.LogFormat == "json" {
		logger = starscan.NewJSONLogger(stderr, cfg.Level())
	}

	grid := starscan.Grid{
		Origin:   model.Coordinate{X: cfg.Grid.OriginX, Y: cfg.Grid.OriginY, Z: cfg.Grid.OriginZ},
		CellSize: cfg.Grid.CellSize,
		Namer:    starscan.FormatNamer{Format: cfg.Grid.Format},
	}

	opts := []starscan.Option{
		starscan.WithLogger(logger),
		starscan.WithWorkers(cfg.Workers),
		starscan.WithBatchSize(cfg.BatchSize),
		starscan.WithResultBuffer(cfg.ResultBuffer),
		starscan.WithPrefix(cfg.Prefix),
		starscan.WithIOLimit(cfg.IOLimit),
		starscan.WithMemoryLimit(cfg.MemoryLimit),
		starscan.WithGrid(grid),
	}
	if cfg.Strict {
		opts = append(opts, starscan.WithStrictDecoding())
	}
	if cfg.Catalog != "" {
		store, err := openStore(ctx, cfg.Catalog, cfg)
		if err != nil {
			return nil, fmt.Errorf("opening catalog store: %w", err)
		}
		opts = append(opts, starscan.WithCatalogStore(store))
	}
	return opts, nil
}
