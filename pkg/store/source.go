package store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source opens snapshot payloads by id.
type Source interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
}

// Location is a Source that can also list its entries.
type Location interface {
	Source
	List(ctx context.Context) ([]string, error)
	String() string
}

// ParseLocation returns a Dir for plain paths and a MinIO source for
// s3://bucket/prefix URLs.
func ParseLocation(loc string, cfg MinIOConfig) (Location, error) {
	if !strings.HasPrefix(loc, "s3://") {
		if loc == "" {
			return nil, fmt.Errorf("empty location")
		}
		return NewDir(loc), nil
	}
	u, err := url.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", loc, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("location %s has no bucket", loc)
	}
	return DialMinIO(cfg, u.Host, strings.TrimPrefix(u.Path, "/"))
}

// =============================================================================
// Dir
// =============================================================================

// Dir serves snapshots from a local directory.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Open opens root/id.
func (d *Dir) Open(_ context.Context, id string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.root, id))
}

// List returns the names of regular files in root, sorted.
func (d *Dir) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&os.ModeSymlink != 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// String returns the root directory.
func (d *Dir) String() string { return d.root }
