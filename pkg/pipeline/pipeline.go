// Package pipeline drives a complete edge-persistence run.
//
// A run resolves the snapshot catalog, loads the reference snapshot and
// indexes its edges, then makes one pass per comparison snapshot, counting
// for every reference edge how many comparisons contain it. The counters are
// reduced into a histogram and the edges present in every loaded comparison
// are exported by name.
//
// # Stages
//
//  1. Catalog: list the location, filter by prefix, sort, cap
//  2. Reference: load, build the edge index, allocate counters
//  3. Passes: load, scan and unload each comparison in turn
//  4. Outputs: counters file, histogram, persistent edges, run report
//
// Catalog, reference and index failures abort the run. A comparison that
// fails with an error errors.Fatal treats as recoverable (a LOAD_ERROR) is
// recorded as skipped and the run continues;
// the report carries the effective snapshot count N so consumers know when
// it is below the number requested.
//
// # Usage
//
//	runner := pipeline.NewRunner(dir, dir, names.Identity{}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Filter: "day",
//	    OutDir: "out",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Loaded, result.Export.Emitted)
package pipeline

import (
	"time"

	"github.com/matzehuels/edgepersist/pkg/catalog"
	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/export"
	"github.com/matzehuels/edgepersist/pkg/histogram"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Library Use
// =============================================================================

const (
	// DefaultMaxGraphs caps the catalog size.
	DefaultMaxGraphs = catalog.DefaultMax

	// DefaultBuckets is the histogram bucket count.
	DefaultBuckets = histogram.DefaultBuckets

	// DefaultOutDir is where outputs are written.
	DefaultOutDir = "."
)

// Output file suffixes, appended to the reference snapshot id.
const (
	SuffixCounters   = ".edge_count.bin"
	SuffixHistogram  = ".hist.txt"
	SuffixPersistent = ".persistent.txt"
	SuffixReport     = ".report.json"
)

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures a run. It decodes from the TOML config file and is
// overridden field by field by explicitly set CLI flags.
type Options struct {
	Filter    string `toml:"filter" json:"filter,omitempty"`
	MaxGraphs int    `toml:"max_graphs" json:"max_graphs"` // negative means unlimited
	Reference int    `toml:"reference" json:"reference"`   // index into the sorted catalog
	Buckets   int    `toml:"buckets" json:"buckets"`
	Threshold uint32 `toml:"threshold" json:"threshold,omitempty"` // 0 means the number of loaded comparisons
	OutDir    string `toml:"out_dir" json:"out_dir"`
	Gzip      bool   `toml:"gzip" json:"gzip"` // gzip the persistent-edge export
	Workers   int    `toml:"workers" json:"workers,omitempty"`
	ChunkSize int    `toml:"chunk_size" json:"chunk_size,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidatePrefix(o.Filter); err != nil {
		return err
	}
	if o.Reference < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "reference index must not be negative, got %d", o.Reference)
	}
	if o.Buckets < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bucket count must be positive, got %d", o.Buckets)
	}
	if o.Buckets == 0 {
		o.Buckets = DefaultBuckets
	}
	if o.MaxGraphs == 0 {
		o.MaxGraphs = DefaultMaxGraphs
	}
	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result - Run Outcome and Report
// =============================================================================

// Skip records a comparison snapshot that did not contribute to the counts.
type Skip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Code   string `json:"code,omitempty"`
}

// Outputs lists the files a run wrote.
type Outputs struct {
	Counters   string `json:"counters"`
	Histogram  string `json:"histogram"`
	Persistent string `json:"persistent,omitempty"`
	Report     string `json:"report"`
}

// Stats holds stage timings.
type Stats struct {
	CatalogTime time.Duration `json:"catalog_ns"`
	IndexTime   time.Duration `json:"index_ns"`
	PassTime    time.Duration `json:"pass_ns"`
	ExportTime  time.Duration `json:"export_ns"`
	Total       time.Duration `json:"total_ns"`
}

// Result is the outcome of a run. Everything but the counters is written
// to the report file.
type Result struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	Options   Options   `json:"options"`

	Reference string `json:"reference"`
	Requested int    `json:"requested"` // comparison snapshots attempted
	Loaded    int    `json:"loaded"`    // N, comparisons that completed a pass
	Skipped   []Skip `json:"skipped"`
	Threshold uint32 `json:"threshold"` // effective export threshold

	Edges      int    `json:"edges"`
	Duplicates int    `json:"duplicates"`
	Scanned    uint64 `json:"scanned"`

	Histogram histogram.Histogram `json:"histogram"`
	Export    *export.Stats       `json:"export,omitempty"` // nil when no comparison loaded

	Outputs Outputs `json:"outputs"`
	Stats   Stats   `json:"stats"`

	Counters []uint32 `json:"-"`
}
