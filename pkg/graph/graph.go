package graph

import (
	"fmt"
	"iter"
	"math"
)

// Graph is an immutable directed multigraph in compressed sparse row form.
// The zero value is an empty graph with no vertices.
type Graph struct {
	rowStart []uint64 // len V+1, rowStart[0] == 0, rowStart[V] == len(targets)
	targets  []uint32
}

// Empty returns a graph with numVertices vertices and no edges.
func Empty(numVertices int) *Graph {
	return &Graph{rowStart: make([]uint64, numVertices+1)}
}

// FromCSR wraps existing row-start and target arrays without copying them.
// The arrays must not be modified afterwards.
func FromCSR(rowStart []uint64, targets []uint32) (*Graph, error) {
	if len(rowStart) == 0 {
		rowStart = []uint64{0}
	}
	if len(rowStart)-1 > math.MaxUint32 {
		return nil, fmt.Errorf("vertex count %d exceeds 32-bit ids", len(rowStart)-1)
	}
	if rowStart[0] != 0 {
		return nil, fmt.Errorf("row start must begin at 0, got %d", rowStart[0])
	}
	for v := 1; v < len(rowStart); v++ {
		if rowStart[v] < rowStart[v-1] {
			return nil, fmt.Errorf("row start decreases at vertex %d", v-1)
		}
	}
	if last := rowStart[len(rowStart)-1]; last != uint64(len(targets)) {
		return nil, fmt.Errorf("row start ends at %d, have %d targets", last, len(targets))
	}
	n := uint32(len(rowStart) - 1)
	for i, t := range targets {
		if t >= n {
			return nil, fmt.Errorf("edge %d: target %d outside vertex universe [0,%d)", i, t, n)
		}
	}
	return &Graph{rowStart: rowStart, targets: targets}, nil
}

// NumVertices returns V.
func (g *Graph) NumVertices() int {
	if len(g.rowStart) == 0 {
		return 0
	}
	return len(g.rowStart) - 1
}

// NumEdges returns the number of stored edges, parallel edges included.
func (g *Graph) NumEdges() int {
	return len(g.targets)
}

// OutEdges returns the targets of v's outgoing edges in stored order.
// The slice aliases the graph and must not be modified.
// Vertices outside [0, V) have no edges.
func (g *Graph) OutEdges(v uint32) []uint32 {
	if int(v) >= g.NumVertices() {
		return nil
	}
	return g.targets[g.rowStart[v]:g.rowStart[v+1]]
}

// OutDegree returns the number of outgoing edges of v.
func (g *Graph) OutDegree(v uint32) int {
	return len(g.OutEdges(v))
}

// Edges iterates all edges as (source, target) in CSR order.
func (g *Graph) Edges() iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		for v := 0; v < g.NumVertices(); v++ {
			for _, t := range g.OutEdges(uint32(v)) {
				if !yield(uint32(v), t) {
					return
				}
			}
		}
	}
}

// SizeBytes estimates the resident size of the adjacency arrays.
func (g *Graph) SizeBytes() int64 {
	return int64(len(g.rowStart))*8 + int64(len(g.targets))*4
}

// Builder accumulates edges and produces a Graph.
// It is not safe for concurrent use.
type Builder struct {
	minVertices int
	maxVertex   int64
	srcs        []uint32
	dsts        []uint32
}

// NewBuilder creates a builder whose graphs have at least minVertices
// vertices. The universe grows to cover the largest id seen.
func NewBuilder(minVertices int) *Builder {
	return &Builder{minVertices: minVertices, maxVertex: -1}
}

// AddEdge appends the directed edge src -> dst.
func (b *Builder) AddEdge(src, dst uint32) {
	b.srcs = append(b.srcs, src)
	b.dsts = append(b.dsts, dst)
	if m := int64(max(src, dst)); m > b.maxVertex {
		b.maxVertex = m
	}
}

// Len returns the number of edges added so far.
func (b *Builder) Len() int {
	return len(b.srcs)
}

// Build produces the CSR graph with a stable counting sort by source,
// so edges of one source keep their insertion order.
func (b *Builder) Build() *Graph {
	n := max(b.minVertices, int(b.maxVertex+1))
	rowStart := make([]uint64, n+1)
	for _, s := range b.srcs {
		rowStart[s+1]++
	}
	for v := 1; v <= n; v++ {
		rowStart[v] += rowStart[v-1]
	}

	targets := make([]uint32, len(b.srcs))
	next := make([]uint64, n)
	copy(next, rowStart[:n])
	for i, s := range b.srcs {
		targets[next[s]] = b.dsts[i]
		next[s]++
	}
	return &Graph{rowStart: rowStart, targets: targets}
}
