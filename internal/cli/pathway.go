package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmorten/keggpull/pkg/pathway"
)

// newPathwayOrganizerCmd creates the "pathway-organizer" command for
// flattening the pathways Brite hierarchy.
func newPathwayOrganizerCmd(cfg *Config) *cobra.Command {
	var (
		output        string
		topLevelNodes string
		filterNodes   string
	)
	cmd := &cobra.Command{
		Use:   "pathway-organizer",
		Short: "Flatten the pathways Brite hierarchy into a lookup table",
		Long:  `Flatten the hierarchy of pathway map entries from the pathways Brite hierarchy (br:br08901) into a mapping of node keys to node details. Leaf nodes hold pathway map entry IDs; interior nodes hold the keys of their children.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			var topLevel, filter []string
			var err error
			if topLevelNodes != "" {
				if topLevel, err = readInput(logger, cmd.InOrStdin(), topLevelNodes); err != nil {
					return err
				}
			}
			if filterNodes != "" {
				if filter, err = readInput(logger, cmd.InOrStdin(), filterNodes); err != nil {
					return err
				}
			}

			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			organizer := pathway.NewOrganizer(client, logger)
			if err := organizer.LoadFromKEGG(ctx, topLevel, filter); err != nil {
				return err
			}
			data, err := organizer.ToJSON()
			if err != nil {
				return err
			}
			return writeOutput(output, data)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "file (or archive.zip:member) to store the hierarchy JSON, prints to the console if not set")
	cmd.Flags().StringVar(&topLevelNodes, "tln", "", "comma separated names of top level nodes to restrict the hierarchy to")
	cmd.Flags().StringVar(&filterNodes, "fn", "", "comma separated names of nodes to exclude along with their subtrees")
	return cmd
}
