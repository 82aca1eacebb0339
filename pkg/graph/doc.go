// Package graph provides the in-memory snapshot model and its on-disk codec.
//
// A [Graph] is one immutable snapshot of a directed multigraph over a dense
// vertex universe [0, V). Adjacency is stored in compressed sparse row form:
// a row-start array of length V+1 and a flat target array, so a snapshot of
// 10^8 vertices costs 12 bytes per vertex plus 4 bytes per edge.
//
// # Building Graphs
//
// Use [Builder] to assemble a graph from an unordered edge stream. Edges of
// the same source keep their insertion order, which is what the reference
// edge index relies on for its first-seen-wins policy:
//
//	b := graph.NewBuilder(0)
//	b.AddEdge(1, 2)
//	b.AddEdge(2, 3)
//	g := b.Build()
//
// # Serialization
//
// Snapshots are stored in a small binary format (magic "EPG1", vertex and
// edge counts, row starts, targets; all little endian). The compression is
// picked from the file extension:
//
//	.zst  zstd
//	.gz   gzip
//	.lz4  lz4
//	else  uncompressed
//
// Common operations:
//
//	g, _ := graph.ReadFile("2011-03-14.epg.zst")
//	graph.WriteFile("out.epg.gz", g)
//	g, _ := graph.ReadEdgeList(r, graph.EdgeListOptions{Format: graph.FormatMatrixMarket})
package graph
