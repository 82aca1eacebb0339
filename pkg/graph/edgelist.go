package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Edge list text formats accepted by ReadEdgeList.
const (
	// FormatMatrixMarket is the coordinate matrix-market layout: '%' comment
	// lines, a "rows cols nnz" size line, then 1-based "i j [value]" entries.
	FormatMatrixMarket = "matrixmarket"

	// FormatEdgeList is a plain 0-based "src dst" list with '#' comments.
	FormatEdgeList = "edgelist"
)

// EdgeListOptions configures ReadEdgeList.
type EdgeListOptions struct {
	Format      string // FormatMatrixMarket (default) or FormatEdgeList
	MinVertices int    // pad the universe to at least this many vertices
}

// ReadEdgeList parses a text edge list into a Graph. Trailing columns (edge
// values) are ignored; snapshots carry no edge payload.
func ReadEdgeList(r io.Reader, opts EdgeListOptions) (*Graph, error) {
	format := opts.Format
	if format == "" {
		format = FormatMatrixMarket
	}
	var comment string
	var base uint64
	switch format {
	case FormatMatrixMarket:
		comment, base = "%", 1
	case FormatEdgeList:
		comment, base = "#", 0
	default:
		return nil, fmt.Errorf("unknown edge list format %q", format)
	}

	b := NewBuilder(opts.MinVertices)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sizeLine := format == FormatMatrixMarket
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, comment) {
			continue
		}
		fields := strings.Fields(line)
		if sizeLine {
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: size line needs rows cols nnz", lineNo)
			}
			rows, err := strconv.ParseUint(fields[0], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: rows: %w", lineNo, err)
			}
			cols, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: cols: %w", lineNo, err)
			}
			b.minVertices = max(b.minVertices, int(rows), int(cols))
			sizeLine = false
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected source and target", lineNo)
		}
		src, err := parseID(fields[0], base)
		if err != nil {
			return nil, fmt.Errorf("line %d: source: %w", lineNo, err)
		}
		dst, err := parseID(fields[1], base)
		if err != nil {
			return nil, fmt.Errorf("line %d: target: %w", lineNo, err)
		}
		b.AddEdge(src, dst)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return b.Build(), nil
}

func parseID(s string, base uint64) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n < base {
		return 0, fmt.Errorf("id %d below base %d", n, base)
	}
	return uint32(n - base), nil
}

// WriteEdgeList writes g as text in format. Matrix-market output carries a
// "V V M" size line and 1-based ids; plain edge lists are 0-based.
func WriteEdgeList(w io.Writer, g *Graph, format string) error {
	if format == "" {
		format = FormatMatrixMarket
	}
	bw := bufio.NewWriterSize(w, 1<<16)
	var base uint32
	switch format {
	case FormatMatrixMarket:
		base = 1
		io.WriteString(bw, "%%MatrixMarket matrix coordinate pattern general\n")
		fmt.Fprintf(bw, "%d %d %d\n", g.NumVertices(), g.NumVertices(), g.NumEdges())
	case FormatEdgeList:
		fmt.Fprintf(bw, "# %d vertices, %d edges\n", g.NumVertices(), g.NumEdges())
	default:
		return fmt.Errorf("unknown edge list format %q", format)
	}
	for src, dst := range g.Edges() {
		if _, err := fmt.Fprintf(bw, "%d %d\n", src+base, dst+base); err != nil {
			return err
		}
	}
	return bw.Flush()
}
