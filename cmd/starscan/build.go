package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/starscan"
	"github.com/hupe1980/starscan/internal/config"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Index every shard and publish the region catalog",
		Args:  cobra.NoArgs,
		RunE:  runBuild,
	}
	cmd.Flags().Int("batch-size", 8, "shards per checkpoint")
	cmd.Flags().Int64("memory-limit", 0, "memory bound for buffered fragments in bytes (0 = unlimited)")
	cmd.Flags().Bool("resume", false, "continue from the checkpoint of an interrupted build")
	_ = viper.BindPFlag("batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("memory_limit", cmd.Flags().Lookup("memory-limit"))
	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg.Store, cfg)
	if err != nil {
		return err
	}
	opts, err := commonOptions(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		opts = append(opts, starscan.WithResume())
	}

	stats, err := starscan.Build(ctx, starscan.Remote(store), opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d shards (%d resumed), %d regions, %d systems, %d decode errors in %s\n",
		stats.Shards, stats.ResumedShards, stats.Regions, stats.Systems, stats.DecodeErrors, stats.Duration)
	return nil
}
