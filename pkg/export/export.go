// Package export writes the persistent edges of a reference snapshot.
//
// An edge is persistent when its counter reached the threshold T, which a
// run sets to the number of comparison snapshots it actually loaded. Each
// persistent edge becomes one "src dst" line with both endpoints replaced
// by their external names. Edges are written in offset order, so the output
// is reproducible for a given reference.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/index"
	"github.com/matzehuels/edgepersist/pkg/names"
	"github.com/matzehuels/edgepersist/pkg/observability"
)

// cancelCheck is how many edges are examined between context checks.
const cancelCheck = 1 << 12

// Stats summarizes an export.
type Stats struct {
	Considered int `json:"considered"` // edges with counter >= threshold
	Emitted    int `json:"emitted"`
	Skipped    int `json:"skipped"` // endpoints without a name
}

// Exporter writes edges whose counter is at least Threshold.
type Exporter struct {
	Resolver  names.Resolver
	Threshold uint32
	Logger    *log.Logger
}

// Export writes one line per persistent edge of idx to w. values holds one
// counter per index offset.
//
// An edge whose endpoint has no name is skipped and counted; the export
// continues. A resolver may also report a miss as a NAME_RESOLUTION_MISS
// error. Any other resolver error, and any write error, aborts the export.
func (e *Exporter) Export(ctx context.Context, w io.Writer, idx *index.Index, values []uint32) (stats Stats, err error) {
	if len(values) != idx.Len() {
		return Stats{}, errors.New(errors.ErrCodeInternal, "have %d counters for %d edges", len(values), idx.Len())
	}
	resolver := e.Resolver
	if resolver == nil {
		resolver = names.Identity{}
	}
	logger := e.Logger
	if logger == nil {
		logger = log.Default()
	}

	start := time.Now()
	defer func() {
		observability.Export().OnExportComplete(ctx, stats.Emitted, stats.Skipped, time.Since(start), err)
	}()

	bw := bufio.NewWriterSize(w, 1<<16)
	for off, edge := range idx.Edges() {
		if off%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		if values[off] < e.Threshold {
			continue
		}
		stats.Considered++

		src, ok, err := resolve(ctx, resolver, edge[0])
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Skipped++
			logger.Debug("no name for vertex", "vertex", edge[0], "edge", off)
			continue
		}
		dst, ok, err := resolve(ctx, resolver, edge[1])
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Skipped++
			logger.Debug("no name for vertex", "vertex", edge[1], "edge", off)
			continue
		}

		if _, err := fmt.Fprintf(bw, "%s %s\n", src, dst); err != nil {
			return stats, fmt.Errorf("write edge: %w", err)
		}
		stats.Emitted++
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush edges: %w", err)
	}
	if stats.Skipped > 0 {
		logger.Warn("skipped edges with unnamed endpoints", "skipped", stats.Skipped)
	}
	return stats, nil
}

// resolve looks up the name of v, turning non-fatal resolver errors into misses.
func resolve(ctx context.Context, r names.Resolver, v uint32) (string, bool, error) {
	name, ok, err := r.Name(ctx, v)
	if err != nil && !errors.Fatal(err, false) {
		return "", false, nil
	}
	return name, ok, err
}
