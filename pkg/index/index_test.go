package index

import (
	"testing"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/graph"
)

func build(minVertices int, edges ...[2]uint32) *graph.Graph {
	b := graph.NewBuilder(minVertices)
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	return b.Build()
}

func TestBuildAssignsDenseOffsets(t *testing.T) {
	g := build(4, [2]uint32{2, 3}, [2]uint32{1, 2}, [2]uint32{1, 0})
	idx, err := Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len = %d, want 3", idx.Len())
	}

	// Vertex order, then stored adjacency order.
	want := []struct {
		src, dst uint32
		off      uint32
	}{
		{1, 2, 0},
		{1, 0, 1},
		{2, 3, 2},
	}
	for _, w := range want {
		off, ok := idx.Lookup(w.src, w.dst)
		if !ok || off != w.off {
			t.Errorf("Lookup(%d,%d) = %d,%v want %d,true", w.src, w.dst, off, ok, w.off)
		}
	}

	seen := make(map[uint32]bool)
	for off, e := range idx.Edges() {
		if seen[off] || int(off) >= idx.Len() {
			t.Errorf("offset %d repeated or out of range", off)
		}
		seen[off] = true
		if got := want[off]; e != [2]uint32{got.src, got.dst} {
			t.Errorf("Edges()[%d] = %v, want %d->%d", off, e, got.src, got.dst)
		}
	}
	if len(seen) != idx.Len() {
		t.Errorf("iterated %d offsets, want %d", len(seen), idx.Len())
	}
}

func TestBuildFirstSeenWinsForParallelEdges(t *testing.T) {
	g := build(3, [2]uint32{0, 1}, [2]uint32{0, 2}, [2]uint32{0, 1}, [2]uint32{0, 1})
	idx, err := Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
	if idx.Duplicates() != 2 {
		t.Errorf("Duplicates = %d, want 2", idx.Duplicates())
	}
	if off, _ := idx.Lookup(0, 1); off != 0 {
		t.Errorf("Lookup(0,1) = %d, want first-seen offset 0", off)
	}
}

func TestLookupMisses(t *testing.T) {
	idx, err := Build(build(3, [2]uint32{1, 2}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tests := []struct {
		name     string
		src, dst uint32
	}{
		{"Reversed", 2, 1},
		{"Unknown", 0, 1},
		{"OutsideUniverse", 99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := idx.Lookup(tt.src, tt.dst); ok {
				t.Errorf("Lookup(%d,%d) found, want miss", tt.src, tt.dst)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	idx, err := Build(graph.Empty(0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if idx.Len() != 0 || idx.Duplicates() != 0 {
		t.Errorf("Len/Duplicates = %d/%d, want 0/0", idx.Len(), idx.Duplicates())
	}
	for range idx.Edges() {
		t.Error("empty index should not yield edges")
	}
}

// rawAdjacency skips the validation graph.Graph performs on decode.
type rawAdjacency map[uint32][]uint32

func (r rawAdjacency) NumVertices() int { return len(r) }

func (r rawAdjacency) NumEdges() int {
	n := 0
	for _, out := range r {
		n += len(out)
	}
	return n
}

func (r rawAdjacency) OutEdges(v uint32) []uint32 { return r[v] }

func TestBuildRejectsOutOfRangeTarget(t *testing.T) {
	adj := rawAdjacency{0: {1}, 1: {7}}
	_, err := Build(adj)
	if !errors.Is(err, errors.ErrCodeIndexBuild) {
		t.Fatalf("err = %v, want INDEX_BUILD_ERROR", err)
	}
}
