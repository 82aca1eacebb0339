package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/edgepersist/pkg/errors"
)

// DefaultMax is the snapshot cap used when Options.Max is zero.
const DefaultMax = 1000

// Lister enumerates the entry names of a listing location.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context) ([]string, error)

// List calls f(ctx).
func (f ListerFunc) List(ctx context.Context) ([]string, error) { return f(ctx) }

// Options configures Resolve.
type Options struct {
	Prefix string // filename prefix filter, empty matches all
	Max    int    // cap on the number of ids; 0 means DefaultMax, negative means unlimited
}

// Catalog is an ordered, duplicate-free list of snapshot ids.
type Catalog struct {
	ids []string
}

// Resolve lists the location and returns the filtered, ordered catalog.
// An unreadable listing is a CATALOG_ERROR; an empty result is not an error.
func Resolve(ctx context.Context, l Lister, opts Options) (*Catalog, error) {
	if err := errors.ValidatePrefix(opts.Prefix); err != nil {
		return nil, err
	}
	names, err := l.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "list snapshots")
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		// Hidden files and anything path-like never name a snapshot.
		if errors.ValidateSnapshotID(name) != nil {
			continue
		}
		ids = append(ids, name)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	limit := opts.Max
	if limit == 0 {
		limit = DefaultMax
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return New(ids...), nil
}

// New builds a catalog from explicit ids, keeping their order and dropping
// repeats.
func New(ids ...string) *Catalog {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return &Catalog{ids: out}
}

// Len returns the number of snapshots.
func (c *Catalog) Len() int { return len(c.ids) }

// IDs returns a copy of the ordered ids.
func (c *Catalog) IDs() []string { return slices.Clone(c.ids) }

// Reference returns the id at index i.
func (c *Catalog) Reference(i int) (string, error) {
	if i < 0 || i >= len(c.ids) {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"reference index %d out of range: catalog has %d snapshots", i, len(c.ids))
	}
	return c.ids[i], nil
}

// Comparisons returns every id except the one at index ref, in order.
func (c *Catalog) Comparisons(ref int) []string {
	out := make([]string, 0, len(c.ids))
	for i, id := range c.ids {
		if i != ref {
			out = append(out, id)
		}
	}
	return out
}
