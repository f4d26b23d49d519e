package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/starscan"
	"github.com/hupe1980/starscan/internal/config"
	"github.com/hupe1980/starscan/model"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the corpus and write matching systems as JSON lines",
		Example: `  starscan search --pattern water.json
  starscan search --mode named-regions --regions Col_285_Sector_AB-C,Synuefe_XR-H
  starscan search --mode corridor --start 0,0,0 --end 1000,0,0 --radius 500 --dry-run`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}
	f := cmd.Flags()
	f.String("mode", "galaxy", "galaxy, named-shards, named-regions, corridor or pattern")
	f.String("pattern", "", "pattern document (default: match every system)")
	f.StringSlice("shards", nil, "shards for named-shards mode")
	f.StringSlice("regions", nil, "region codes or mass codes for named-regions mode")
	f.Float64Slice("start", nil, "corridor start x,y,z")
	f.Float64Slice("end", nil, "corridor end x,y,z")
	f.Float64("radius", 0, "corridor radius in light years")
	f.Bool("dry-run", false, "print the task plan without reading shards")
	f.StringP("output", "o", "", "write results to this file instead of stdout")
	f.Int("result-buffer", 256, "capacity of the result channel")
	_ = viper.BindPFlag("result_buffer", f.Lookup("result-buffer"))
	return cmd
}

func searchRequest(cmd *cobra.Command) (starscan.SearchRequest, error) {
	f := cmd.Flags()
	modeName, _ := f.GetString("mode")
	mode, err := starscan.ParseMode(modeName)
	if err != nil {
		return starscan.SearchRequest{}, err
	}
	req := starscan.SearchRequest{Mode: mode}
	req.Shards, _ = f.GetStringSlice("shards")
	req.Regions, _ = f.GetStringSlice("regions")

	if path, _ := f.GetString("pattern"); path != "" {
		tree, err := starscan.LoadPattern(path)
		if err != nil {
			return req, err
		}
		req.Pattern = tree
	}

	if f.Changed("start") || f.Changed("end") || f.Changed("radius") {
		start, err := coordinateFlag(cmd, "start")
		if err != nil {
			return req, err
		}
		end, err := coordinateFlag(cmd, "end")
		if err != nil {
			return req, err
		}
		radius, _ := f.GetFloat64("radius")
		req.Corridor = &starscan.Corridor{Start: start, End: end, Radius: radius}
	}
	return req, nil
}

func coordinateFlag(cmd *cobra.Command, name string) (model.Coordinate, error) {
	v, _ := cmd.Flags().GetFloat64Slice(name)
	if len(v) != 3 {
		return model.Coordinate{}, fmt.Errorf("--%s needs three values x,y,z, got %d", name, len(v))
	}
	return model.Coordinate{X: v[0], Y: v[1], Z: v[2]}, nil
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	req, err := searchRequest(cmd)
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

	db, err := starscan.Open(ctx, starscan.Remote(store), opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer file.Close()
		out = file
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		plan, err := db.Plan(ctx, req)
		if err != nil {
			return err
		}
		return writePlan(out, plan)
	}

	resp, searchErr := db.Search(ctx, req)
	if resp == nil {
		return searchErr
	}
	if err := writeMatches(out, resp.Results); err != nil {
		return err
	}
	writeSummary(cmd.ErrOrStderr(), resp.Stats)
	return searchErr
}
