package store

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/graph"
	"github.com/matzehuels/edgepersist/pkg/observability"
)

// Snapshot is a loaded graph together with its id.
type Snapshot struct {
	ID       string
	Graph    *graph.Graph
	LoadTime time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReleaseOSMemory controls whether Unload forces a collection and
// returns freed pages to the OS before returning. Enabled by default.
func WithReleaseOSMemory(release bool) Option {
	return func(s *Store) { s.release = release }
}

// WithDecoder replaces the payload decoder (graph.DecodeNamed by default).
func WithDecoder(decode func(r io.Reader, id string) (*graph.Graph, error)) Option {
	return func(s *Store) {
		if decode != nil {
			s.decode = decode
		}
	}
}

// Store keeps the reference snapshot and at most one comparison snapshot
// resident. It is safe for concurrent use, though a run drives it from a
// single goroutine.
type Store struct {
	src     Source
	logger  *log.Logger
	release bool
	decode  func(r io.Reader, id string) (*graph.Graph, error)

	mu  sync.Mutex
	ref *Snapshot
	cur *Snapshot
}

// New creates a Store reading payloads from src.
func New(src Source, opts ...Option) *Store {
	s := &Store{
		src:     src,
		logger:  log.Default(),
		release: true,
		decode:  graph.DecodeNamed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadReference loads id and retains it as the reference snapshot for the
// rest of the run. A failed load leaves any previous reference in place.
func (s *Store) LoadReference(ctx context.Context, id string) (*Snapshot, error) {
	snap, err := s.load(ctx, id, observability.RoleReference)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ref = snap
	s.mu.Unlock()
	return snap, nil
}

// LoadComparison evicts the resident comparison snapshot, then loads id in
// its place. On failure no comparison snapshot is resident and the
// reference is untouched.
func (s *Store) LoadComparison(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.Lock()
	prev := s.cur
	s.mu.Unlock()
	if prev != nil {
		s.Unload(ctx, prev)
	}

	snap, err := s.load(ctx, id, observability.RoleComparison)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cur = snap
	s.mu.Unlock()
	return snap, nil
}

// Unload releases snap if it is resident. Unloading the reference ends its
// retention; unloading an unknown or already released snapshot is a no-op.
func (s *Store) Unload(ctx context.Context, snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	switch snap {
	case s.cur:
		s.cur = nil
	case s.ref:
		s.ref = nil
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	size := snap.Graph.SizeBytes()
	snap.Graph = nil
	if s.release {
		runtime.GC()
		debug.FreeOSMemory()
	}
	observability.Store().OnUnload(ctx, snap.ID, size)
	s.logger.Debug("unloaded snapshot", "snapshot", snap.ID, "freed", humanize.IBytes(uint64(size)))
}

// Close releases every resident snapshot.
func (s *Store) Close() error {
	s.mu.Lock()
	cur, ref := s.cur, s.ref
	s.mu.Unlock()
	s.Unload(context.Background(), cur)
	s.Unload(context.Background(), ref)
	return nil
}

// Reference returns the resident reference snapshot, or nil.
func (s *Store) Reference() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref
}

// Comparison returns the resident comparison snapshot, or nil.
func (s *Store) Comparison() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Resident returns the number of snapshots currently held (0, 1 or 2).
func (s *Store) Resident() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	if s.ref != nil {
		n++
	}
	if s.cur != nil {
		n++
	}
	return n
}

func (s *Store) load(ctx context.Context, id, role string) (*Snapshot, error) {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "load %s snapshot", role)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Store()
	hooks.OnLoadStart(ctx, id, role)
	start := time.Now()

	g, err := s.read(ctx, id)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnLoadComplete(ctx, id, role, 0, 0, elapsed, err)
		return nil, err
	}
	hooks.OnLoadComplete(ctx, id, role, g.NumVertices(), g.NumEdges(), elapsed, nil)

	heap := ReadHeapStats()
	s.logger.Debug("loaded snapshot",
		"snapshot", id,
		"role", role,
		"vertices", g.NumVertices(),
		"edges", g.NumEdges(),
		"size", humanize.IBytes(uint64(g.SizeBytes())),
		"heap", humanize.IBytes(heap.HeapSys),
		"allocated", humanize.IBytes(heap.HeapAlloc),
		"duration", elapsed.Round(time.Millisecond))
	return &Snapshot{ID: id, Graph: g, LoadTime: elapsed}, nil
}

func (s *Store) read(ctx context.Context, id string) (*graph.Graph, error) {
	rc, err := s.src.Open(ctx, id)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeLoad, err, "snapshot %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "open snapshot %s", id)
	}
	defer rc.Close()

	g, err := s.decode(rc, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "decode snapshot %s", id)
	}
	return g, nil
}

// HeapStats reports Go heap usage.
type HeapStats struct {
	HeapSys   uint64 `json:"heap_sys"`
	HeapAlloc uint64 `json:"heap_alloc"`
}

// ReadHeapStats samples the runtime's heap counters.
func ReadHeapStats() HeapStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return HeapStats{HeapSys: m.HeapSys, HeapAlloc: m.HeapAlloc}
}
