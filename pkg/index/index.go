// Package index maps the reference snapshot's directed edges to dense offsets.
//
// Offsets are assigned once, walking vertices in id order and each vertex's
// adjacency in stored order. Every distinct (source, target) pair gets the
// next offset in [0, E); a parallel edge repeating an already indexed pair
// is counted in [Index.Duplicates] and gets no offset of its own, since
// persistence is measured over distinct directed edges.
package index

import (
	"iter"
	"math"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

// Adjacency is the view of a snapshot the index is built from.
// *graph.Graph satisfies it.
type Adjacency interface {
	NumVertices() int
	NumEdges() int
	OutEdges(v uint32) []uint32
}

// Index answers "is src -> dst a reference edge, and at which offset".
// It is read-only after Build and safe for concurrent lookups.
type Index struct {
	offsets    map[uint64]uint32
	edges      []uint64 // packed pairs in offset order
	vertices   int
	duplicates int
}

func pack(src, dst uint32) uint64 { return uint64(src)<<32 | uint64(dst) }

func unpack(k uint64) (uint32, uint32) { return uint32(k >> 32), uint32(k) }

// Build indexes every distinct edge of g. It fails with INDEX_BUILD_ERROR
// when an edge points outside the vertex universe or when the edge count
// does not fit the 32-bit offset space.
func Build(g Adjacency) (*Index, error) {
	if g.NumEdges() > math.MaxUint32 {
		return nil, errors.New(errors.ErrCodeIndexBuild,
			"reference has %d edges, offsets are limited to %d", g.NumEdges(), uint64(math.MaxUint32))
	}

	n := g.NumVertices()
	idx := &Index{
		offsets:  make(map[uint64]uint32, g.NumEdges()),
		edges:    make([]uint64, 0, g.NumEdges()),
		vertices: n,
	}
	for v := 0; v < n; v++ {
		src := uint32(v)
		for _, dst := range g.OutEdges(src) {
			if int(dst) >= n {
				return nil, errors.New(errors.ErrCodeIndexBuild,
					"edge %d -> %d leaves vertex universe [0,%d)", src, dst, n)
			}
			k := pack(src, dst)
			if _, ok := idx.offsets[k]; ok {
				idx.duplicates++
				continue
			}
			idx.offsets[k] = uint32(len(idx.edges))
			idx.edges = append(idx.edges, k)
		}
	}
	return idx, nil
}

// Lookup returns the offset of src -> dst, if it is a reference edge.
func (x *Index) Lookup(src, dst uint32) (uint32, bool) {
	off, ok := x.offsets[pack(src, dst)]
	return off, ok
}

// Len returns E, the number of distinct reference edges.
func (x *Index) Len() int { return len(x.edges) }

// Vertices returns the size of the reference vertex universe.
func (x *Index) Vertices() int { return x.vertices }

// Duplicates returns how many parallel reference edges were folded away.
func (x *Index) Duplicates() int { return x.duplicates }

// Edges iterates offsets in increasing order with their endpoints.
func (x *Index) Edges() iter.Seq2[uint32, [2]uint32] {
	return func(yield func(uint32, [2]uint32) bool) {
		for off, k := range x.edges {
			src, dst := unpack(k)
			if !yield(uint32(off), [2]uint32{src, dst}) {
				return
			}
		}
	}
}
