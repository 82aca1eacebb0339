// Package persist counts, per reference edge, how many comparison snapshots
// contain it.
//
// [Counters] holds one uint32 per reference edge offset. Each comparison
// snapshot is scanned by a [Pass]: the [Aggregator] program runs on every
// vertex through pkg/engine, looks each outgoing edge up in the reference
// index and records the matching offset in a per-range roaring bitmap. The
// bitmaps are unioned and only then applied to the counters, one atomic
// increment per matched offset. A pass therefore adds at most one to any
// counter, however often the edge repeats inside the snapshot, and a pass
// that fails or is cancelled leaves the counters exactly as they were.
//
//	counters := persist.NewCounters(idx.Len())
//	for _, snap := range snapshots {
//	    stats, err := persist.Pass(ctx, snap.Graph, idx, counters, engine.Options{})
//	    ...
//	}
//	persist.WriteCountersFile("ref.edge_count.bin", counters.Values())
package persist
