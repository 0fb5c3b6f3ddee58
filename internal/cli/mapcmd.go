package cli

import (
	"github.com/spf13/cobra"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/mapping"
)

// mapFlags are the options shared by the map subcommands.
type mapFlags struct {
	output      string
	reverse     bool
	deduplicate bool
	addGlycans  bool
	addDrugs    bool
}

func (f *mapFlags) register(cmd *cobra.Command, withPostProcess bool) {
	cmd.Flags().StringVar(&f.output, "output", "", "file (or archive.zip:member) to store the mapping JSON, prints to the console if not set")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "reverse the mapping so target entry IDs map to source entry IDs")
	if withPostProcess {
		cmd.Flags().BoolVar(&f.deduplicate, "deduplicate", false, "remove path:ko and path:<org> duplicates when mapping to or from the pathway database")
		cmd.Flags().BoolVar(&f.addGlycans, "add-glycans", false, "fold KEGG glycan cross-references into the compound side of the mapping")
		cmd.Flags().BoolVar(&f.addDrugs, "add-drugs", false, "fold KEGG drug cross-references into the compound side of the mapping")
	}
}

func (f *mapFlags) linkOptions(cmd *cobra.Command) mapping.LinkOptions {
	return mapping.LinkOptions{
		Deduplicate: f.deduplicate,
		AddGlycans:  f.addGlycans,
		AddDrugs:    f.addDrugs,
		Logger:      loggerFromContext(cmd.Context()),
	}
}

// writeMapping delivers a mapping as sorted, indented JSON.
func writeMapping(output string, m mapping.Mapping) error {
	data, err := mapping.ToJSON(m)
	if err != nil {
		return err
	}
	return writeOutput(output, data)
}

// newMapCmd creates the "map" command for converting KEGG cross-references
// into entry ID mappings.
func newMapCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Build entry ID mappings from KEGG cross-references",
	}

	cmd.AddCommand(newMapDatabaseCmd(cfg))
	cmd.AddCommand(newMapEntryIDsCmd(cfg))
	cmd.AddCommand(newMapConvCmd(cfg))
	cmd.AddCommand(newMapIndirectCmd(cfg))

	return cmd
}

func newMapDatabaseCmd(cfg *Config) *cobra.Command {
	flags := &mapFlags{}
	cmd := &cobra.Command{
		Use:   "database <source-database-name> <target-database-name>",
		Short: "Map the entry IDs of one database to those of another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			source, target := args[0], args[1]
			if flags.reverse {
				source, target = target, source
			}
			m, err := mapping.DatabaseLink(ctx, client, source, target, flags.linkOptions(cmd))
			if err != nil {
				return err
			}
			return writeMapping(flags.output, m)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newMapEntryIDsCmd(cfg *Config) *cobra.Command {
	flags := &mapFlags{}
	cmd := &cobra.Command{
		Use:   "entry-ids <entry-ids> <target-database-name>",
		Short: "Map specific entry IDs to the entry IDs of a target database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entryIDs, err := readInput(loggerFromContext(ctx), cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			m, err := mapping.EntriesLink(ctx, client, entryIDs, args[1], flags.reverse)
			if err != nil {
				return err
			}
			return writeMapping(flags.output, m)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newMapConvCmd(cfg *Config) *cobra.Command {
	flags := &mapFlags{}
	var convTarget string
	cmd := &cobra.Command{
		Use:   "conv <kegg-database-name> <outside-database-name> | conv --conv-target=<target-database-name> <entry-ids>",
		Short: "Map entry IDs between KEGG and outside databases",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			var m mapping.Mapping
			if convTarget != "" {
				entryIDs, err := readInput(loggerFromContext(ctx), cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				m, err = mapping.EntriesConv(ctx, client, entryIDs, convTarget, flags.reverse)
				if err != nil {
					return err
				}
			} else {
				if len(args) < 2 {
					return kerrors.New(kerrors.ErrCodeInvalidInput,
						"both a KEGG database and an outside database must be provided")
				}
				m, err = mapping.DatabaseConv(ctx, client, args[0], args[1], flags.reverse)
				if err != nil {
					return err
				}
			}
			return writeMapping(flags.output, m)
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVar(&convTarget, "conv-target", "", "target database for converting specific entry IDs")
	return cmd
}

func newMapIndirectCmd(cfg *Config) *cobra.Command {
	flags := &mapFlags{}
	cmd := &cobra.Command{
		Use:   "indirect <source-database-name> <intermediate-database-name> <target-database-name>",
		Short: "Map two databases through an intermediate database",
		Long:  `Map the entry IDs of a source database to those of a target database that KEGG does not cross-reference directly, by joining through an intermediate database linked to both.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			source, intermediate, target := args[0], args[1], args[2]
			if flags.reverse {
				source, target = target, source
			}
			m, err := mapping.IndirectLink(ctx, client, source, intermediate, target, flags.linkOptions(cmd))
			if err != nil {
				return err
			}
			return writeMapping(flags.output, m)
		},
	}
	flags.register(cmd, true)
	return cmd
}
