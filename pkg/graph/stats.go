package graph

// Stats summarizes the degree structure of a snapshot.
type Stats struct {
	Vertices     int     `json:"vertices"`
	Edges        int     `json:"edges"`
	Distinct     int     `json:"distinct_edges"`
	SelfLoops    int     `json:"self_loops"`
	Sinks        int     `json:"sinks"` // vertices without outgoing edges
	MaxOutDegree int     `json:"max_out_degree"`
	MaxOutVertex uint32  `json:"max_out_vertex"`
	MeanOut      float64 `json:"mean_out_degree"`
}

// ComputeStats walks g once. Distinct counts unique (source, target) pairs,
// which is what the reference edge index will hold.
func ComputeStats(g *Graph) Stats {
	s := Stats{Vertices: g.NumVertices(), Edges: g.NumEdges()}
	seen := make(map[uint32]struct{})
	for v := 0; v < g.NumVertices(); v++ {
		out := g.OutEdges(uint32(v))
		if len(out) == 0 {
			s.Sinks++
			continue
		}
		if len(out) > s.MaxOutDegree {
			s.MaxOutDegree = len(out)
			s.MaxOutVertex = uint32(v)
		}
		clear(seen)
		for _, t := range out {
			if t == uint32(v) {
				s.SelfLoops++
			}
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				s.Distinct++
			}
		}
	}
	if s.Vertices > 0 {
		s.MeanOut = float64(s.Edges) / float64(s.Vertices)
	}
	return s
}
