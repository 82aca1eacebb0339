package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/graph"
)

func writeSnapshot(t *testing.T, dir, name string, edges ...[2]uint32) {
	t.Helper()
	b := graph.NewBuilder(4)
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	require.NoError(t, graph.WriteFile(filepath.Join(dir, name), b.Build()))
}

func TestStoreLoadLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "day01.epg", [2]uint32{1, 2}, [2]uint32{2, 3})
	writeSnapshot(t, dir, "day02.epg.gz", [2]uint32{1, 2})
	writeSnapshot(t, dir, "day03.epg.zst", [2]uint32{2, 3})

	ctx := context.Background()
	s := New(NewDir(dir), WithReleaseOSMemory(false))

	ref, err := s.LoadReference(ctx, "day01.epg")
	require.NoError(t, err)
	require.Equal(t, 2, ref.Graph.NumEdges())
	require.Equal(t, 1, s.Resident())

	c1, err := s.LoadComparison(ctx, "day02.epg.gz")
	require.NoError(t, err)
	require.Equal(t, 2, s.Resident())
	require.Same(t, c1, s.Comparison())

	// Loading the next comparison evicts the previous one first.
	c2, err := s.LoadComparison(ctx, "day03.epg.zst")
	require.NoError(t, err)
	require.Nil(t, c1.Graph)
	require.Same(t, c2, s.Comparison())
	require.Equal(t, 2, s.Resident())

	s.Unload(ctx, c2)
	require.Nil(t, s.Comparison())
	require.Equal(t, 1, s.Resident())
	require.Same(t, ref, s.Reference())

	// Double unload is a no-op.
	s.Unload(ctx, c2)
	require.Equal(t, 1, s.Resident())

	require.NoError(t, s.Close())
	require.Equal(t, 0, s.Resident())
}

func TestStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "ref.epg", [2]uint32{0, 1})
	writeSnapshot(t, dir, "ok.epg", [2]uint32{0, 1})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.epg"), []byte("not a graph"), 0o644))

	ctx := context.Background()
	s := New(NewDir(dir), WithReleaseOSMemory(false))
	ref, err := s.LoadReference(ctx, "ref.epg")
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
	}{
		{"Missing", "missing.epg"},
		{"Corrupt", "corrupt.epg"},
		{"Traversal", "../ref.epg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.LoadComparison(ctx, "ok.epg")
			require.NoError(t, err)

			_, err = s.LoadComparison(ctx, tt.id)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrCodeLoad), "got %v", err)

			require.Nil(t, s.Comparison())
			require.Same(t, ref, s.Reference())
			require.Equal(t, 1, ref.Graph.NumEdges())
		})
	}
}

func TestStoreFailedReferenceKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "ref.epg", [2]uint32{0, 1})

	ctx := context.Background()
	s := New(NewDir(dir), WithReleaseOSMemory(false))
	ref, err := s.LoadReference(ctx, "ref.epg")
	require.NoError(t, err)

	_, err = s.LoadReference(ctx, "nope.epg")
	require.True(t, errors.Is(err, errors.ErrCodeLoad))
	require.Same(t, ref, s.Reference())
}

func TestStoreCustomDecoder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("0 1\n1 2\n"), 0o644))

	decode := func(r io.Reader, _ string) (*graph.Graph, error) {
		return graph.ReadEdgeList(r, graph.EdgeListOptions{Format: graph.FormatEdgeList})
	}
	s := New(NewDir(dir), WithDecoder(decode), WithReleaseOSMemory(false))
	snap, err := s.LoadComparison(context.Background(), "a.txt")
	require.NoError(t, err)
	require.Equal(t, 2, snap.Graph.NumEdges())
}

func TestStoreCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "a.epg", [2]uint32{0, 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(NewDir(dir)).LoadComparison(ctx, "a.epg")
	require.ErrorIs(t, err, context.Canceled)
}

func TestDirList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	names, err := NewDir(dir).List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, names)

	_, err = NewDir(filepath.Join(dir, "missing")).List(context.Background())
	require.Error(t, err)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("/data/graphs", MinIOConfig{})
	require.NoError(t, err)
	require.IsType(t, &Dir{}, loc)
	require.Equal(t, "/data/graphs", loc.String())

	_, err = ParseLocation("", MinIOConfig{})
	require.Error(t, err)

	_, err = ParseLocation("s3:///nobucket", MinIOConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)

	t.Setenv("EDGEPERSIST_S3_ENDPOINT", "")
	_, err = ParseLocation("s3://bucket/daily", MinIOConfig{})
	require.ErrorContains(t, err, "endpoint")

	loc, err = ParseLocation("s3://bucket/daily", MinIOConfig{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	require.Equal(t, "s3://bucket/daily", loc.String())
}
