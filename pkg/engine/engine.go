// Package engine runs a per-vertex program over a snapshot in parallel.
//
// It is the capability a vertex-centric runtime offers: iterate vertices,
// hand each its outgoing adjacency, and fold per-worker results with an
// associative combine step. Work is split into contiguous vertex ranges
// scheduled on an errgroup; each range folds into its own partial state, so
// a vertex step never touches state shared with another range. Partials
// are combined in range order, which makes the result independent of how
// ranges were scheduled.
package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of vertices per scheduled range.
const DefaultChunkSize = 1 << 14

// Adjacency is the read-only snapshot view handed to a Program.
type Adjacency interface {
	NumVertices() int
	OutEdges(v uint32) []uint32
}

// Program is a per-vertex computation with a mergeable partial state S.
// Visit is called for every vertex of a range on one goroutine; Combine
// must be associative.
type Program[S any] interface {
	Init() S
	Visit(state S, v uint32, targets []uint32) S
	Combine(dst, src S) S
}

// Options tunes the parallel pass.
type Options struct {
	Workers   int // concurrent ranges; <= 0 means GOMAXPROCS
	ChunkSize int // vertices per range; <= 0 means DefaultChunkSize
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// Aggregate runs p over every vertex of g and returns the combined state.
// A cancelled ctx stops scheduling new ranges and returns ctx.Err().
func Aggregate[S any](ctx context.Context, g Adjacency, p Program[S], opts Options) (S, error) {
	opts = opts.withDefaults()
	n := g.NumVertices()
	chunks := (n + opts.ChunkSize - 1) / opts.ChunkSize
	partials := make([]S, chunks)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for c := 0; c < chunks; c++ {
		lo := c * opts.ChunkSize
		hi := min(lo+opts.ChunkSize, n)
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			state := p.Init()
			for v := lo; v < hi; v++ {
				state = p.Visit(state, uint32(v), g.OutEdges(uint32(v)))
			}
			partials[c] = state
			return nil
		})
	}

	result := p.Init()
	if err := eg.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	for _, part := range partials {
		result = p.Combine(result, part)
	}
	return result, nil
}
