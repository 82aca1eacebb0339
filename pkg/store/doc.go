// Package store loads graph snapshots one at a time to bound peak memory.
//
// A [Store] holds at most two decoded snapshots: the reference snapshot,
// retained for the whole run, and a single comparison snapshot. Loading a
// comparison snapshot evicts the previous one first, and [Store.Unload]
// returns its memory before the next load begins:
//
//	s := store.New(store.NewDir("/data/bin.graphs"), store.WithLogger(logger))
//	ref, err := s.LoadReference(ctx, "2011-03-01.epg.gz")
//	for _, id := range ids {
//	    snap, err := s.LoadComparison(ctx, id)
//	    if err != nil {
//	        continue // LOAD_ERROR, reference untouched
//	    }
//	    ...
//	    s.Unload(snap)
//	}
//
// # Sources
//
// Payload bytes come from a [Source]:
//
//   - [Dir]: a local storage directory
//   - [MinIO]: an S3-compatible bucket prefix (minio-go)
//
// Both also list their entries, so the same location can serve as the
// snapshot catalog's listing. [ParseLocation] picks one from a path or an
// s3://bucket/prefix URL.
package store
