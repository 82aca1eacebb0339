package persist

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/matzehuels/edgepersist/pkg/engine"
	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/index"
)

// Partial is the per-range state of a pass.
type Partial struct {
	Hits    *roaring.Bitmap // matched reference offsets, each at most once
	Scanned uint64          // comparison edges examined
}

// Aggregator is the engine program for one pass: it resolves each outgoing
// edge of the current comparison snapshot against the reference index.
// It reads only the index and the adjacency it is handed.
type Aggregator struct {
	idx *index.Index
}

// NewAggregator creates the pass program for idx.
func NewAggregator(idx *index.Index) *Aggregator {
	return &Aggregator{idx: idx}
}

// Init returns an empty partial.
func (a *Aggregator) Init() *Partial {
	return &Partial{Hits: roaring.New()}
}

// Visit records every reference edge among v's targets.
func (a *Aggregator) Visit(p *Partial, v uint32, targets []uint32) *Partial {
	for _, t := range targets {
		p.Scanned++
		if off, ok := a.idx.Lookup(v, t); ok {
			p.Hits.Add(off)
		}
	}
	return p
}

// Combine folds src into dst.
func (a *Aggregator) Combine(dst, src *Partial) *Partial {
	dst.Hits.Or(src.Hits)
	dst.Scanned += src.Scanned
	return dst
}

// PassStats describes one applied pass.
type PassStats struct {
	Matched  uint64        `json:"matched"` // distinct reference edges found
	Scanned  uint64        `json:"scanned"` // comparison edges examined
	Duration time.Duration `json:"duration"`
}

// Pass scans g and increments the counter of every reference edge it
// contains by exactly one. Nothing is applied unless the whole scan
// succeeds.
func Pass(ctx context.Context, g engine.Adjacency, idx *index.Index, c *Counters, opts engine.Options) (PassStats, error) {
	if c.Len() != idx.Len() {
		return PassStats{}, errors.New(errors.ErrCodeInternal,
			"counters hold %d offsets, index has %d", c.Len(), idx.Len())
	}
	start := time.Now()
	part, err := engine.Aggregate[*Partial](ctx, g, NewAggregator(idx), opts)
	if err != nil {
		return PassStats{}, err
	}
	c.Apply(part)
	return PassStats{
		Matched:  part.Hits.GetCardinality(),
		Scanned:  part.Scanned,
		Duration: time.Since(start),
	}, nil
}

// Apply adds one to the counter of every offset in p and records the pass.
func (c *Counters) Apply(p *Partial) {
	it := p.Hits.Iterator()
	for it.HasNext() {
		c.Inc(it.Next())
	}
	c.scanned.Add(p.Scanned)
	c.passes.Add(1)
}
