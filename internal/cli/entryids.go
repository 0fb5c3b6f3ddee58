package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmorten/keggpull/pkg/entryids"
)

// newEntryIDsCmd creates the "entry-ids" command for acquiring lists of
// KEGG entry IDs.
func newEntryIDsCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry-ids",
		Short: "Acquire a list of KEGG entry IDs",
	}

	cmd.AddCommand(newEntryIDsDatabaseCmd(cfg))
	cmd.AddCommand(newEntryIDsKeywordsCmd(cfg))
	cmd.AddCommand(newEntryIDsMolecularCmd(cfg))
	cmd.AddCommand(newEntryIDsFileCmd())

	return cmd
}

// writeEntryIDs delivers entry IDs one per line.
func writeEntryIDs(output string, entryIDs []string) error {
	return writeOutput(output, []byte(strings.Join(entryIDs, "\n")))
}

func newEntryIDsDatabaseCmd(cfg *Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "database <database-name>",
		Short: "Print the IDs of every entry in a KEGG database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			entryIDs, err := entryids.FromDatabase(ctx, client, args[0])
			if err != nil {
				return err
			}
			return writeEntryIDs(output, entryIDs)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "file (or archive.zip:member) to store the entry IDs, prints to the console if not set")
	return cmd
}

func newEntryIDsKeywordsCmd(cfg *Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "keywords <database-name> <keywords>",
		Short: "Print the IDs of entries matching all of the keywords",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keywords, err := parseCommaList(loggerFromContext(ctx), args[1])
			if err != nil {
				return err
			}
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			entryIDs, err := entryids.FromKeywords(ctx, client, args[0], keywords)
			if err != nil {
				return err
			}
			return writeEntryIDs(output, entryIDs)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "file (or archive.zip:member) to store the entry IDs, prints to the console if not set")
	return cmd
}

func newEntryIDsMolecularCmd(cfg *Config) *cobra.Command {
	var output string
	molecular := &molecularFlags{}
	cmd := &cobra.Command{
		Use:   "molecular-attribute <database-name>",
		Short: "Print the IDs of entries matching a molecular attribute",
		Long:  `Print the IDs of entries in a molecule-oriented KEGG database matching a chemical formula, an exact mass, or a molecular weight. Mass and weight accept either a single value or two values forming a range.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := defaultClient(ctx, cfg)
			if err != nil {
				return err
			}
			entryIDs, err := entryids.FromMolecularAttribute(ctx, client, args[0], molecular.query())
			if err != nil {
				return err
			}
			return writeEntryIDs(output, entryIDs)
		},
	}
	molecular.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "file (or archive.zip:member) to store the entry IDs, prints to the console if not set")
	return cmd
}

func newEntryIDsFileCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "file <file-path>",
		Short: "Print the entry IDs read from a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryIDs, err := entryids.FromFile(args[0])
			if err != nil {
				return err
			}
			return writeEntryIDs(output, entryIDs)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "file (or archive.zip:member) to store the entry IDs, prints to the console if not set")
	return cmd
}
