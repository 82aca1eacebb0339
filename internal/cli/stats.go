package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/graph"
	"github.com/matzehuels/edgepersist/pkg/store"
)

// statsCommand creates the stats command, which summarizes one snapshot.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		dir    string
		asJSON bool
		minio  store.MinIOConfig
		noSpin bool
	)

	cmd := &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "Print vertex, edge and degree statistics of a snapshot",
		Long: `Stats loads one snapshot and prints its size and degree structure.

Without --dir the argument is a file path. With --dir it is a snapshot id
inside that location, which may be a directory or s3://bucket/prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			loc, id := dir, args[0]
			if loc == "" {
				loc, id = filepath.Dir(args[0]), filepath.Base(args[0])
			}
			src, err := store.ParseLocation(loc, minio.WithEnv())
			if err != nil {
				return err
			}

			var spinner *Spinner
			if !noSpin && !asJSON {
				spinner = newSpinnerWithContext(ctx, "Loading "+id)
				spinner.Start()
			}
			s := store.New(src, store.WithLogger(logger), store.WithReleaseOSMemory(false))
			snap, err := s.LoadComparison(ctx, id)
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			defer s.Close()

			st := graph.ComputeStats(snap.Graph)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					ID string `json:"id"`
					graph.Stats
					Bytes    int64   `json:"bytes"`
					LoadTime float64 `json:"load_seconds"`
				}{id, st, snap.Graph.SizeBytes(), snap.LoadTime.Seconds()})
			}

			printSuccess("Loaded %s in %s", StyleHighlight.Render(id), snap.LoadTime.Round(time.Millisecond))
			printKeyValue("Vertices", humanize.Comma(int64(st.Vertices)))
			printKeyValue("Edges", humanize.Comma(int64(st.Edges)))
			printKeyValue("Distinct", humanize.Comma(int64(st.Distinct)))
			printKeyValue("Self loops", humanize.Comma(int64(st.SelfLoops)))
			printKeyValue("Sinks", humanize.Comma(int64(st.Sinks)))
			printKeyValue("Max out", fmt.Sprintf("%s (vertex %d)", humanize.Comma(int64(st.MaxOutDegree)), st.MaxOutVertex))
			printKeyValue("Mean out", fmt.Sprintf("%.2f", st.MeanOut))
			printKeyValue("Memory", humanize.IBytes(uint64(snap.Graph.SizeBytes())))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "location holding the snapshot (directory or s3://bucket/prefix)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	cmd.Flags().BoolVar(&noSpin, "no-spinner", false, "disable the progress spinner")
	cmd.Flags().StringVar(&minio.Endpoint, "s3-endpoint", "", "S3 endpoint for s3:// locations")

	return cmd
}
