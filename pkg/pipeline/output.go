package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/edgepersist/pkg/export"
	"github.com/matzehuels/edgepersist/pkg/graph"
	"github.com/matzehuels/edgepersist/pkg/index"
	"github.com/matzehuels/edgepersist/pkg/persist"
)

// writeOutputs writes the counters, histogram, persistent edges and report.
// The report is written last so its presence marks a finished run.
func (r *Runner) writeOutputs(ctx context.Context, result *Result, idx *index.Index, opts Options) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	base := filepath.Join(opts.OutDir, result.Reference)

	result.Outputs.Counters = base + SuffixCounters
	if err := persist.WriteCountersFile(result.Outputs.Counters, result.Counters); err != nil {
		return err
	}

	result.Outputs.Histogram = base + SuffixHistogram
	if err := writeFile(result.Outputs.Histogram, func(w io.Writer) error {
		_, err := result.Histogram.WriteTo(w)
		return err
	}); err != nil {
		return err
	}

	exportStart := time.Now()
	if result.Loaded == 0 {
		r.Logger.Warn("no comparison snapshot loaded, skipping export", "requested", result.Requested)
	} else {
		path := base + SuffixPersistent
		c := graph.CompressionNone
		if opts.Gzip {
			path += ".gz"
			c = graph.CompressionGzip
		}
		ex := &export.Exporter{Resolver: r.Names, Threshold: result.Threshold, Logger: r.Logger}
		var stats export.Stats
		err := writeFile(path, func(w io.Writer) error {
			zw, err := graph.NewWriter(w, c)
			if err != nil {
				return err
			}
			stats, err = ex.Export(ctx, zw, idx, result.Counters)
			if err != nil {
				zw.Close()
				return err
			}
			return zw.Close()
		})
		if err != nil {
			return fmt.Errorf("export persistent edges: %w", err)
		}
		result.Export = &stats
		result.Outputs.Persistent = path
		r.Logger.Info("exported persistent edges",
			"threshold", result.Threshold,
			"emitted", stats.Emitted,
			"skipped", stats.Skipped,
			"file", path)
	}
	result.Stats.ExportTime = time.Since(exportStart)
	result.Stats.Total = time.Since(result.StartedAt)

	result.Outputs.Report = base + SuffixReport
	return writeFile(result.Outputs.Report, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}

// writeFile creates path and fills it with fn. A failed fn removes the
// partial file.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
