package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// =============================================================================
// Compression
// =============================================================================

// Compression identifies the stream compression wrapped around a payload.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the file extension used for c (without the dot).
func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gz"
	case CompressionZstd:
		return "zst"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionFor picks the compression from a file name's extension.
func CompressionFor(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// NewReader wraps r with a decompressor for c.
// Closing the returned reader does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// NewWriter wraps w with a compressor for c. The returned writer must be
// closed to flush the compressed stream; closing it does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// =============================================================================
// Binary Format
// =============================================================================

const magic = "EPG1"

// readChunk bounds each allocation while decoding so a corrupt header
// fails with io.ErrUnexpectedEOF instead of reserving its claimed size.
const readChunk = 1 << 20

type header struct {
	Magic    [4]byte
	Vertices uint32
	Edges    uint64
}

// Encode writes g in the uncompressed binary format.
func Encode(w io.Writer, g *Graph) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	h := header{Vertices: uint32(g.NumVertices()), Edges: uint64(g.NumEdges())}
	copy(h.Magic[:], magic)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rowStart := g.rowStart
	if len(rowStart) == 0 {
		rowStart = []uint64{0}
	}
	if err := binary.Write(bw, binary.LittleEndian, rowStart); err != nil {
		return fmt.Errorf("write row starts: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, g.targets); err != nil {
		return fmt.Errorf("write targets: %w", err)
	}
	return bw.Flush()
}

// Decode reads an uncompressed binary graph and validates its structure.
func Decode(r io.Reader) (*Graph, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(h.Magic[:]) != magic {
		return nil, fmt.Errorf("bad magic %q", h.Magic[:])
	}

	rowStart, err := readUint64s(br, uint64(h.Vertices)+1)
	if err != nil {
		return nil, fmt.Errorf("read row starts: %w", err)
	}
	targets, err := readUint32s(br, h.Edges)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	return FromCSR(rowStart, targets)
}

// DecodeNamed decodes a payload whose compression is implied by name.
func DecodeNamed(r io.Reader, name string) (*Graph, error) {
	zr, err := NewReader(r, CompressionFor(name))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return Decode(zr)
}

// ReadFile loads a graph from path, decompressing by extension.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := DecodeNamed(f, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}

// WriteFile saves g to path, compressing by extension.
func WriteFile(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	zw, err := NewWriter(f, CompressionFor(path))
	if err != nil {
		f.Close()
		return err
	}
	if err := Encode(zw, g); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func readUint64s(r io.Reader, n uint64) ([]uint64, error) {
	out := make([]uint64, 0, min(n, readChunk))
	for uint64(len(out)) < n {
		chunk := make([]uint64, min(n-uint64(len(out)), readChunk))
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func readUint32s(r io.Reader, n uint64) ([]uint32, error) {
	out := make([]uint32, 0, min(n, readChunk))
	for uint64(len(out)) < n {
		chunk := make([]uint32, min(n-uint64(len(out)), readChunk))
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}
