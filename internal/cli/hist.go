package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/histogram"
	"github.com/matzehuels/edgepersist/pkg/persist"
)

// histCommand creates the hist command, which rebuilds a histogram from a
// saved counters file.
func (c *CLI) histCommand() *cobra.Command {
	var (
		n       int
		buckets int
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "hist <counters.bin>",
		Short: "Rebuild the histogram of a saved counters file",
		Long: `Hist maps a counters file written by "run" and prints the histogram of its
values. --n is the number of comparison snapshots the counts are out of; it
defaults to the largest counter in the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := persist.OpenCountersFile(args[0])
			if err != nil {
				return err
			}
			defer cf.Close()

			values := cf.Values()
			var top uint32
			if n >= 0 {
				top = uint32(n)
			} else {
				for _, v := range values {
					top = max(top, v)
				}
			}

			h, err := histogram.Build(values, top, buckets)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("built histogram", "file", args[0], "edges", len(values), "n", top)

			if plain {
				_, err := h.WriteTo(os.Stdout)
				return err
			}
			printHistogram(h)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", -1, "number of comparison snapshots (default: largest counter)")
	cmd.Flags().IntVar(&buckets, "buckets", histogram.DefaultBuckets, "number of histogram buckets")
	cmd.Flags().BoolVar(&plain, "plain", false, `print "lo hi count" lines instead of a table`)

	return cmd
}
