package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/errors"
	"github.com/matzehuels/edgepersist/pkg/graph"
)

// convertCommand creates the convert command, which turns text edge lists
// into binary snapshots and back.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		format string
		nodes  int
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between text edge lists and binary snapshots",
		Long: `Convert reads a snapshot and writes it in another representation.

Files ending in .txt, .mtx or .edges (optionally followed by a compression
suffix) are text edge lists in --format; anything else is a binary snapshot.
Compression follows the file extension: .gz, .zst or .lz4.`,
		Example: `  # Matrix-market coordinate file to a zstd snapshot
  edgepersist convert day01.mtx day01.epg.zst

  # Snapshot back to a 0-based edge list
  edgepersist convert day01.epg.zst day01.txt --format edgelist`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != graph.FormatMatrixMarket && format != graph.FormatEdgeList {
				return errors.New(errors.ErrCodeUnsupported,
					"unknown format %q: want %s or %s", format, graph.FormatMatrixMarket, graph.FormatEdgeList)
			}
			prog := newProgress(loggerFromContext(cmd.Context()))
			g, err := readSnapshot(args[0], format, nodes)
			if err != nil {
				return err
			}
			if err := writeSnapshot(args[1], format, g); err != nil {
				return err
			}
			prog.done("converted snapshot", "input", args[0], "output", args[1])

			info, err := os.Stat(args[1])
			if err != nil {
				return err
			}
			printSuccess("Wrote %s", args[1])
			printDetail("%s vertices · %s edges · %s",
				humanize.Comma(int64(g.NumVertices())),
				humanize.Comma(int64(g.NumEdges())),
				humanize.IBytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", graph.FormatMatrixMarket, "text format: matrixmarket or edgelist")
	cmd.Flags().IntVar(&nodes, "nodes", 0, "pad the vertex universe to at least this many vertices")

	return cmd
}

// isText reports whether path names a text edge list.
func isText(path string) bool {
	name := path
	if c := graph.CompressionFor(path); c != graph.CompressionNone {
		name = name[:strings.LastIndex(name, ".")]
	}
	for _, ext := range []string{".txt", ".mtx", ".edges"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// readSnapshot loads a binary or text snapshot from path.
func readSnapshot(path, format string, nodes int) (*graph.Graph, error) {
	if !isText(path) {
		g, err := graph.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if g.NumVertices() < nodes {
			return nil, fmt.Errorf("%s has %d vertices; --nodes only pads text input", path, g.NumVertices())
		}
		return g, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	zr, err := graph.NewReader(f, graph.CompressionFor(path))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	g, err := graph.ReadEdgeList(zr, graph.EdgeListOptions{Format: format, MinVertices: nodes})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

// writeSnapshot saves g to path as a binary snapshot or text edge list.
func writeSnapshot(path, format string, g *graph.Graph) error {
	if !isText(path) {
		return graph.WriteFile(path, g)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	zw, err := graph.NewWriter(f, graph.CompressionFor(path))
	if err != nil {
		f.Close()
		return err
	}
	if err := graph.WriteEdgeList(zw, g, format); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
