package graph

import (
	"slices"
	"testing"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		name         string
		minVertices  int
		edges        [][2]uint32
		wantVertices int
		wantOut      map[uint32][]uint32
	}{
		{
			name:         "Empty",
			wantVertices: 0,
		},
		{
			name:         "PaddedUniverse",
			minVertices:  5,
			edges:        [][2]uint32{{0, 1}},
			wantVertices: 5,
			wantOut:      map[uint32][]uint32{0: {1}, 4: nil},
		},
		{
			name:         "KeepsInsertionOrderPerSource",
			edges:        [][2]uint32{{2, 0}, {1, 2}, {2, 1}, {1, 0}, {2, 0}},
			wantVertices: 3,
			wantOut: map[uint32][]uint32{
				0: nil,
				1: {2, 0},
				2: {0, 1, 0},
			},
		},
		{
			name:         "GrowsToLargestTarget",
			edges:        [][2]uint32{{0, 9}},
			wantVertices: 10,
			wantOut:      map[uint32][]uint32{0: {9}, 9: nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.minVertices)
			for _, e := range tt.edges {
				b.AddEdge(e[0], e[1])
			}
			g := b.Build()

			if got := g.NumVertices(); got != tt.wantVertices {
				t.Errorf("NumVertices = %d, want %d", got, tt.wantVertices)
			}
			if got := g.NumEdges(); got != len(tt.edges) {
				t.Errorf("NumEdges = %d, want %d", got, len(tt.edges))
			}
			for v, want := range tt.wantOut {
				if got := g.OutEdges(v); !slices.Equal(got, want) {
					t.Errorf("OutEdges(%d) = %v, want %v", v, got, want)
				}
			}
		})
	}
}

func TestOutEdgesOutsideUniverse(t *testing.T) {
	g := Empty(3)
	if got := g.OutEdges(7); got != nil {
		t.Errorf("OutEdges(7) = %v, want nil", got)
	}
	var zero Graph
	if zero.NumVertices() != 0 || zero.NumEdges() != 0 {
		t.Error("zero Graph should be empty")
	}
}

func TestFromCSR(t *testing.T) {
	tests := []struct {
		name     string
		rowStart []uint64
		targets  []uint32
		wantErr  bool
	}{
		{"Valid", []uint64{0, 1, 2}, []uint32{1, 0}, false},
		{"NilIsEmpty", nil, nil, false},
		{"NonZeroStart", []uint64{1, 1}, nil, true},
		{"Decreasing", []uint64{0, 2, 1}, []uint32{0}, true},
		{"LengthMismatch", []uint64{0, 1}, []uint32{0, 0}, true},
		{"TargetOutOfRange", []uint64{0, 1}, []uint32{3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCSR(tt.rowStart, tt.targets)
			if (err != nil) != tt.wantErr {
				t.Errorf("FromCSR error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEdgesIterator(t *testing.T) {
	b := NewBuilder(0)
	b.AddEdge(1, 2)
	b.AddEdge(0, 1)
	b.AddEdge(1, 0)
	g := b.Build()

	var got [][2]uint32
	for s, d := range g.Edges() {
		got = append(got, [2]uint32{s, d})
	}
	want := [][2]uint32{{0, 1}, {1, 2}, {1, 0}}
	if !slices.Equal(got, want) {
		t.Errorf("Edges = %v, want %v", got, want)
	}
}

func TestComputeStats(t *testing.T) {
	b := NewBuilder(4)
	b.AddEdge(0, 1)
	b.AddEdge(0, 1)
	b.AddEdge(0, 2)
	b.AddEdge(1, 1)
	g := b.Build()

	s := ComputeStats(g)
	if s.Vertices != 4 || s.Edges != 4 {
		t.Errorf("Vertices/Edges = %d/%d, want 4/4", s.Vertices, s.Edges)
	}
	if s.Distinct != 3 {
		t.Errorf("Distinct = %d, want 3", s.Distinct)
	}
	if s.SelfLoops != 1 {
		t.Errorf("SelfLoops = %d, want 1", s.SelfLoops)
	}
	if s.Sinks != 2 {
		t.Errorf("Sinks = %d, want 2", s.Sinks)
	}
	if s.MaxOutDegree != 3 || s.MaxOutVertex != 0 {
		t.Errorf("MaxOut = %d@%d, want 3@0", s.MaxOutDegree, s.MaxOutVertex)
	}
	if s.MeanOut != 1.0 {
		t.Errorf("MeanOut = %v, want 1.0", s.MeanOut)
	}
}
