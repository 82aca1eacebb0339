package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/edgepersist/pkg/catalog"
	"github.com/matzehuels/edgepersist/pkg/store"
)

// catalogCommand creates the catalog command, which shows the snapshots a
// run would use, in order.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		opts      catalog.Options
		reference int
		minio     store.MinIOConfig
	)

	cmd := &cobra.Command{
		Use:   "catalog <location>",
		Short: "List the snapshots a run would compare",
		Long: `Catalog lists a directory or s3://bucket/prefix location with the same
filtering, ordering and cap as "run", and marks the reference snapshot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := store.ParseLocation(args[0], minio.WithEnv())
			if err != nil {
				return err
			}
			cat, err := catalog.Resolve(cmd.Context(), loc, opts)
			if err != nil {
				return err
			}
			if cat.Len() == 0 {
				printWarning("No snapshots in %s", loc)
				return nil
			}

			for i, id := range cat.IDs() {
				line := fmt.Sprintf("%4d  %s", i, id)
				if i == reference {
					fmt.Println(StyleHighlight.Render(line) + " " + StyleDim.Render("(reference)"))
					continue
				}
				fmt.Println(line)
			}
			printNewline()
			printInfo("%d snapshots, %d comparisons", cat.Len(), len(cat.Comparisons(reference)))
			if _, err := cat.Reference(reference); err != nil {
				printWarning("%s", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "filter", "", "only list snapshots whose name starts with this prefix")
	cmd.Flags().IntVar(&opts.Max, "max-graphs", catalog.DefaultMax, "maximum number of snapshots (negative for no limit)")
	cmd.Flags().IntVar(&reference, "reference", 0, "index of the reference snapshot")
	cmd.Flags().StringVar(&minio.Endpoint, "s3-endpoint", "", "S3 endpoint for s3:// locations")

	return cmd
}
