// Package catalog resolves the ordered set of snapshot identifiers to process.
//
// A listing location is enumerated through a [Lister] (a local directory or a
// remote object prefix, see pkg/store). [Resolve] filters the names by
// prefix, drops hidden entries and duplicates, orders them lexically (daily
// snapshot names are date stamped, so lexical order is time order), and caps
// the result at a maximum count.
//
//	cat, err := catalog.Resolve(ctx, store.NewDir(listDir), catalog.Options{
//	    Prefix: "2011-03",
//	    Max:    28,
//	})
//	ref, _ := cat.Reference(0)
//	for _, id := range cat.Comparisons(0) { ... }
package catalog
