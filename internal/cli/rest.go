package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/rest"
)

// restFlags are shared by every rest subcommand.
type restFlags struct {
	output string
	test   bool
}

func (f *restFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.output, "output", "", "file (or archive.zip:member) to store the response body, prints to the console if not set")
	cmd.Flags().BoolVar(&f.test, "test", false, "print true or false depending on whether KEGG answers the URL, instead of fetching the body")
}

// newRestCmd creates the "rest" command exposing each KEGG REST operation
// directly.
func newRestCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rest",
		Short: "Execute a KEGG REST operation and print or save the response",
	}

	cmd.AddCommand(newRestInfoCmd(cfg))
	cmd.AddCommand(newRestListCmd(cfg))
	cmd.AddCommand(newRestGetCmd(cfg))
	cmd.AddCommand(newRestFindCmd(cfg))
	cmd.AddCommand(newRestConvCmd(cfg))
	cmd.AddCommand(newRestLinkCmd(cfg))
	cmd.AddCommand(newRestDdiCmd(cfg))

	return cmd
}

// runRest builds the operation URL, optionally just tests it, and otherwise
// performs the request and delivers the body.
func runRest(cmd *cobra.Command, cfg *Config, flags *restFlags, build func(*rest.Client) (*kegg.URL, error)) error {
	ctx := cmd.Context()
	client, err := defaultClient(ctx, cfg)
	if err != nil {
		return err
	}
	u, err := build(client)
	if err != nil {
		return err
	}

	if flags.test {
		ok, err := client.Test(ctx, u)
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil
	}

	resp, err := client.Request(ctx, u)
	if err != nil {
		return err
	}
	switch resp.Status {
	case rest.StatusFailed:
		return kerrors.New(kerrors.ErrCodeRequestFailed,
			"The request to the KEGG web API failed with the following URL: %s", u.String())
	case rest.StatusTimeout:
		return kerrors.New(kerrors.ErrCodeRequestTimeout,
			"The request to the KEGG web API timed out with the following URL: %s", u.String())
	}

	body := []byte(resp.TextBody)
	if kegg.IsBinaryField(u.EntryField()) {
		body = resp.BinaryBody
		if flags.output == "" {
			loggerFromContext(ctx).Warn("Printing binary output...")
		}
	}
	return writeOutput(flags.output, body)
}

func newRestInfoCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	cmd := &cobra.Command{
		Use:   "info <database-name>",
		Short: "Pull information about a KEGG database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().Info(args[0])
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRestListCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	cmd := &cobra.Command{
		Use:   "list <database-name>",
		Short: "Pull the entry IDs and names of a KEGG database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().List(args[0])
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRestGetCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	var entryField string
	cmd := &cobra.Command{
		Use:   "get <entry-ids>",
		Short: "Pull the entries of the provided entry IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryIDs, err := parseCommaList(loggerFromContext(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().Get(entryIDs, entryField)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&entryField, "entry-field", "", "optional field to extract from the entries instead of the default flat-file format")
	return cmd
}

// molecularFlags capture the molecular-attribute search options shared by
// "rest find" and "entry-ids molecular-attribute".
type molecularFlags struct {
	formula         string
	exactMass       []float64
	molecularWeight []int
}

func (f *molecularFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.formula, "formula", "", "chemical formula to search for (e.g. \"O5C7\")")
	cmd.Flags().Float64SliceVar(&f.exactMass, "exact-mass", nil, "exact mass to search for, either one value or two values forming a range")
	cmd.Flags().IntSliceVar(&f.molecularWeight, "molecular-weight", nil, "molecular weight to search for, either one value or two values forming a range")
}

func (f *molecularFlags) set() bool {
	return f.formula != "" || f.exactMass != nil || f.molecularWeight != nil
}

func (f *molecularFlags) query() kegg.MolecularFindQuery {
	return kegg.MolecularFindQuery{
		Formula:         f.formula,
		ExactMass:       f.exactMass,
		MolecularWeight: f.molecularWeight,
	}
}

func newRestFindCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	molecular := &molecularFlags{}
	cmd := &cobra.Command{
		Use:   "find <database-name> [<keywords>]",
		Short: "Find entry IDs by keywords or by a molecular attribute",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database := args[0]
			if molecular.set() {
				return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
					return c.Builder().MolecularFind(database, molecular.query())
				})
			}
			if len(args) < 2 {
				return kerrors.New(kerrors.ErrCodeInvalidInput,
					"either keywords or a molecular attribute option must be provided")
			}
			keywords, err := parseCommaList(loggerFromContext(cmd.Context()), args[1])
			if err != nil {
				return err
			}
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().KeywordsFind(database, keywords)
			})
		},
	}
	flags.register(cmd)
	molecular.register(cmd)
	return cmd
}

func newRestConvCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	var convTarget string
	cmd := &cobra.Command{
		Use:   "conv <kegg-database-name> <outside-database-name> | conv --conv-target=<target-database-name> <entry-ids>",
		Short: "Convert entry IDs between KEGG and outside databases",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if convTarget != "" {
				entryIDs, err := parseCommaList(loggerFromContext(cmd.Context()), args[0])
				if err != nil {
					return err
				}
				return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
					return c.Builder().EntriesConv(convTarget, entryIDs)
				})
			}
			if len(args) < 2 {
				return kerrors.New(kerrors.ErrCodeInvalidInput,
					"both a KEGG database and an outside database must be provided")
			}
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().DatabaseConv(args[0], args[1])
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&convTarget, "conv-target", "", "target database for converting specific entry IDs")
	return cmd
}

func newRestLinkCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	var linkTarget string
	cmd := &cobra.Command{
		Use:   "link <target-database-name> <source-database-name> | link --link-target=<target-database-name> <entry-ids>",
		Short: "Show cross-references between databases or entries",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if linkTarget != "" {
				entryIDs, err := parseCommaList(loggerFromContext(cmd.Context()), args[0])
				if err != nil {
					return err
				}
				return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
					return c.Builder().EntriesLink(linkTarget, entryIDs)
				})
			}
			if len(args) < 2 {
				return kerrors.New(kerrors.ErrCodeInvalidInput,
					"both a target database and a source database must be provided")
			}
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().DatabaseLink(args[0], args[1])
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&linkTarget, "link-target", "", "target database for cross-referencing specific entry IDs")
	return cmd
}

func newRestDdiCmd(cfg *Config) *cobra.Command {
	flags := &restFlags{}
	cmd := &cobra.Command{
		Use:   "ddi <drug-entry-ids>",
		Short: "Search for drug-drug interactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryIDs, err := parseCommaList(loggerFromContext(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			return runRest(cmd, cfg, flags, func(c *rest.Client) (*kegg.URL, error) {
				return c.Builder().Ddi(entryIDs)
			})
		},
	}
	flags.register(cmd)
	return cmd
}
