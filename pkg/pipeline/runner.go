package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/edgepersist/pkg/buildinfo"
	"github.com/matzehuels/edgepersist/pkg/catalog"
	"github.com/matzehuels/edgepersist/pkg/engine"
	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/histogram"
	"github.com/matzehuels/edgepersist/pkg/index"
	"github.com/matzehuels/edgepersist/pkg/names"
	"github.com/matzehuels/edgepersist/pkg/observability"
	"github.com/matzehuels/edgepersist/pkg/persist"
	"github.com/matzehuels/edgepersist/pkg/store"
)

// Runner executes runs against one snapshot source.
//
// The Runner holds no per-run state, so it may be reused for several runs
// with different options (one per reference, for example).
type Runner struct {
	Source store.Source
	Lister catalog.Lister
	Names  names.Resolver
	Logger *log.Logger

	// StoreOptions are applied to the per-run snapshot store.
	StoreOptions []store.Option
}

// NewRunner creates a runner. A nil resolver exports decimal ids; a nil
// logger uses the default logger.
func NewRunner(src store.Source, lister catalog.Lister, resolver names.Resolver, logger *log.Logger) *Runner {
	if resolver == nil {
		resolver = names.Identity{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Lister: lister,
		Names:  resolver,
		Logger: logger,
	}
}

// Execute performs a complete run and writes its outputs to opts.OutDir.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.Logger

	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		Version:   buildinfo.Version,
		StartedAt: start,
		Options:   opts,
		Skipped:   []Skip{},
	}

	// Stage 1: Catalog
	cat, err := catalog.Resolve(ctx, r.Lister, catalog.Options{Prefix: opts.Filter, Max: opts.MaxGraphs})
	if err != nil {
		return nil, err
	}
	refID, err := cat.Reference(opts.Reference)
	if err != nil {
		return nil, err
	}
	comparisons := cat.Comparisons(opts.Reference)
	result.Reference = refID
	result.Requested = len(comparisons)
	result.Stats.CatalogTime = time.Since(start)

	logger.Info("resolved catalog",
		"snapshots", cat.Len(),
		"reference", refID,
		"comparisons", len(comparisons))

	// Stage 2: Reference
	st := store.New(r.Source, append([]store.Option{store.WithLogger(logger)}, r.StoreOptions...)...)
	defer st.Close()

	ref, err := st.LoadReference(ctx, refID)
	if err != nil {
		return nil, err
	}
	indexStart := time.Now()
	idx, err := index.Build(ref.Graph)
	if err != nil {
		return nil, err
	}
	result.Edges = idx.Len()
	result.Duplicates = idx.Duplicates()
	result.Stats.IndexTime = time.Since(indexStart)
	counters := persist.NewCounters(idx.Len())

	logger.Info("indexed reference",
		"snapshot", refID,
		"vertices", idx.Vertices(),
		"edges", idx.Len(),
		"duplicates", idx.Duplicates(),
		"duration", result.Stats.IndexTime.Round(time.Millisecond))

	// Stage 3: Passes
	passStart := time.Now()
	engOpts := engine.Options{Workers: opts.Workers, ChunkSize: opts.ChunkSize}
	for i, id := range comparisons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats, err := r.pass(ctx, st, id, idx, counters, engOpts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Fatal(err, false) {
				return nil, err
			}
			result.Skipped = append(result.Skipped, Skip{ID: id, Reason: err.Error(), Code: string(errors.GetCode(err))})
			observability.Pass().OnSnapshotSkipped(ctx, id, err)
			logger.Warn("skipped snapshot", "snapshot", id, "err", err)
			continue
		}
		result.Loaded++
		result.Scanned += stats.Scanned
		logger.Debug("pass complete",
			"snapshot", id,
			"pass", fmt.Sprintf("%d/%d", i+1, len(comparisons)),
			"matched", stats.Matched,
			"scanned", stats.Scanned,
			"duration", stats.Duration.Round(time.Millisecond))
	}
	result.Stats.PassTime = time.Since(passStart)

	logger.Info("completed passes",
		"loaded", result.Loaded,
		"skipped", len(result.Skipped),
		"max", counters.Max(),
		"duration", result.Stats.PassTime.Round(time.Millisecond))

	// Stage 4: Outputs
	result.Counters = counters.Values()
	hist, err := histogram.Build(result.Counters, uint32(result.Loaded), opts.Buckets)
	if err != nil {
		return nil, err
	}
	result.Histogram = hist

	result.Threshold = opts.Threshold
	if result.Threshold == 0 {
		result.Threshold = uint32(result.Loaded)
	}

	if err := r.writeOutputs(ctx, result, idx, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// pass loads one comparison, scans it into counters and releases it.
func (r *Runner) pass(ctx context.Context, st *store.Store, id string, idx *index.Index, c *persist.Counters, opts engine.Options) (persist.PassStats, error) {
	snap, err := st.LoadComparison(ctx, id)
	if err != nil {
		return persist.PassStats{}, err
	}
	defer st.Unload(ctx, snap)

	stats, err := persist.Pass(ctx, snap.Graph, idx, c, opts)
	if err != nil {
		return stats, fmt.Errorf("scan snapshot %s: %w", id, err)
	}
	observability.Pass().OnPassComplete(ctx, id, stats.Matched, stats.Scanned, stats.Duration)
	return stats, nil
}
