package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Cache mirrors snapshot payloads of a remote source into a local directory.
// A run per reference over the same object store then downloads each
// snapshot once. Payloads are stored as fetched, still compressed.
type Cache struct {
	src       Source
	dir       string
	namespace string
	ttl       time.Duration
}

// NewCache wraps src. namespace separates sources sharing dir (the source
// location is a good choice); ttl <= 0 keeps entries until they are removed.
func NewCache(src Source, dir, namespace string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{src: src, dir: dir, namespace: namespace, ttl: ttl}, nil
}

// Open returns the cached payload for id, fetching it from the wrapped
// source on a miss or when the entry is older than the TTL.
func (c *Cache) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	path := c.path(id)
	if info, err := os.Stat(path); err == nil {
		if c.ttl <= 0 || time.Since(info.ModTime()) < c.ttl {
			return os.Open(path)
		}
	}
	if err := c.fetch(ctx, id, path); err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) fetch(ctx context.Context, id, path string) error {
	rc, err := c.src.Open(ctx, id)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("fetch %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// path maps an id to hash[:2]/hash[2:] so no directory grows too large.
func (c *Cache) path(id string) string {
	sum := sha256.Sum256([]byte(c.namespace + "\x00" + id))
	h := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, h[:2], h[2:])
}
