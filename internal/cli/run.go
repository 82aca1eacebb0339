package cli

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/names"
	"github.com/matzehuels/edgepersist/pkg/observability"
	"github.com/matzehuels/edgepersist/pkg/pipeline"
	"github.com/matzehuels/edgepersist/pkg/store"
)

// runCommand creates the run command, which performs a full persistence run.
func (c *CLI) runCommand() *cobra.Command {
	var (
		configPath string
		noSpin     bool
		flags      fileConfig
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Count how many snapshots contain each reference edge",
		Long: `Run loads the reference snapshot, then every other cataloged snapshot in
turn, and counts for each reference edge how many snapshots contain it.

Outputs are written to --out-dir, named after the reference snapshot:
  <ref>.edge_count.bin      one little-endian uint32 counter per edge
  <ref>.hist.txt            histogram of the counters ("lo hi count" lines)
  <ref>.persistent.txt.gz   edges present in every loaded snapshot
  <ref>.report.json         run report, including skipped snapshots`,
		Example: `  # Local directory, 28 daily snapshots after the reference
  edgepersist run --list-dir ./daily --filter 2024-03 --max-graphs 29

  # Snapshots in MinIO, names from Redis
  edgepersist run --list-dir s3://graphs/daily --names "redis://localhost:6379/0?key=urls"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := runConfig{configPath: configPath}
			if err := rc.resolve(cmd.Flags(), flags); err != nil {
				return err
			}
			return c.runPersistence(cmd, rc, !noSpin)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&noSpin, "no-spinner", false, "disable the progress spinner during the reference load")
	f.StringVar(&configPath, "config", "", "TOML config file (default: $XDG_CONFIG_HOME/edgepersist/config.toml if present)")
	f.StringVar(&flags.ListDir, "list-dir", "", "location to list snapshots from (directory or s3://bucket/prefix)")
	f.StringVar(&flags.Dir, "dir", "", "location to load snapshots from (default: --list-dir)")
	f.BoolVar(&flags.NoCache, "no-cache", false, "do not mirror s3:// snapshots into the local cache")
	f.StringVar(&flags.Names, "names", "", "id to name map file, or redis://host:port/db?key=hash")
	f.StringVar(&flags.Run.Filter, "filter", "", "only use snapshots whose name starts with this prefix")
	f.IntVar(&flags.Run.MaxGraphs, "max-graphs", pipeline.DefaultMaxGraphs, "maximum number of snapshots (negative for no limit)")
	f.IntVar(&flags.Run.Reference, "reference", 0, "index of the reference snapshot in the sorted catalog")
	f.IntVar(&flags.Run.Buckets, "buckets", pipeline.DefaultBuckets, "number of histogram buckets")
	f.Uint32Var(&flags.Run.Threshold, "threshold", 0, "export edges with at least this count (default: snapshots loaded)")
	f.StringVar(&flags.Run.OutDir, "out-dir", pipeline.DefaultOutDir, "output directory")
	f.BoolVar(&flags.Run.Gzip, "gzip", true, "gzip the persistent edge export")
	f.IntVar(&flags.Run.Workers, "workers", runtime.GOMAXPROCS(0), "parallel workers per pass")

	return cmd
}

func (c *CLI) runPersistence(cmd *cobra.Command, rc runConfig, spin bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	lister, err := store.ParseLocation(rc.ListDir, rc.MinIO)
	if err != nil {
		return err
	}
	loc := lister
	if rc.Dir != rc.ListDir {
		if loc, err = store.ParseLocation(rc.Dir, rc.MinIO); err != nil {
			return err
		}
	}
	src, err := c.withCache(loc, rc.NoCache)
	if err != nil {
		return err
	}

	resolver, closer, err := names.Open(ctx, rc.Names)
	if err != nil {
		return err
	}
	defer closer.Close()
	if r, ok := resolver.(*names.Redis); ok {
		logger.Info("resolving names from redis", "key", r.Key())
	}

	if spin {
		prev := observability.Store()
		hooks := newLoadSpinner(ctx, prev)
		observability.SetStoreHooks(hooks)
		defer func() {
			hooks.stop()
			observability.SetStoreHooks(prev)
		}()
	}

	prog := newProgress(logger)
	opts := rc.Run
	res, err := pipeline.NewRunner(src, lister, resolver, logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("run complete", "reference", res.Reference)

	printRunSummary(res)
	return nil
}

// withCache mirrors remote locations into the local snapshot cache.
func (c *CLI) withCache(loc store.Location, noCache bool) (store.Source, error) {
	if _, remote := loc.(*store.MinIO); !remote || noCache {
		return loc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("snapshot cache disabled", "err", err)
		return loc, nil
	}
	cache, err := store.NewCache(loc, dir, loc.String(), 0)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("mirroring snapshots", "source", loc.String(), "cache", cache.Dir())
	return cache, nil
}

// printRunSummary prints the outcome of a run.
func printRunSummary(res *pipeline.Result) {
	printNewline()
	printSuccess("Compared %s against %s", StyleHighlight.Render(res.Reference),
		StyleNumber.Render(fmt.Sprintf("%d/%d snapshots", res.Loaded, res.Requested)))
	printKeyValue("Run", res.RunID)
	printKeyValue("Edges", humanize.Comma(int64(res.Edges)))
	if res.Duplicates > 0 {
		printKeyValue("Duplicates", humanize.Comma(int64(res.Duplicates)))
	}
	printKeyValue("Scanned", humanize.Comma(int64(res.Scanned)))
	printKeyValue("Threshold", fmt.Sprint(res.Threshold))
	if res.Export != nil {
		printKeyValue("Persistent", humanize.Comma(int64(res.Export.Emitted)))
	}

	for _, s := range res.Skipped {
		printWarning("Skipped %s: %s", s.ID, s.Reason)
	}
	if res.Export != nil && res.Export.Skipped > 0 {
		printWarning("%d persistent edges had unnamed endpoints", res.Export.Skipped)
	}
	if res.Export == nil {
		printWarning("No comparison snapshot loaded, persistent edges not exported")
	}

	printNewline()
	printHistogram(res.Histogram)

	printNewline()
	printFile(res.Outputs.Counters)
	printFile(res.Outputs.Histogram)
	if res.Outputs.Persistent != "" {
		printFile(res.Outputs.Persistent)
	}
	printFile(res.Outputs.Report)
}
