package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmorten/keggpull/pkg/entryids"
	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/pull"
	"github.com/jmorten/keggpull/pkg/rest"
)

const (
	pullResultsPath        = "pull-results.json"
	abortedPullResultsPath = "aborted-pull-results.json"
)

// pullFlags are the options shared by "pull database" and "pull entry-ids".
type pullFlags struct {
	forceSingleEntry      bool
	multiProcess          bool
	nWorkers              int
	output                string
	entryField            string
	nTries                int
	timeOut               int
	sleepTime             float64
	unsuccessfulThreshold float64
}

func (f *pullFlags) register(cmd *cobra.Command, cfg *Config) {
	cmd.Flags().BoolVar(&f.forceSingleEntry, "force-single-entry", false, "pull one entry per request even when the entry field supports batching")
	cmd.Flags().BoolVar(&f.multiProcess, "multi-process", false, "pull entry batches concurrently")
	cmd.Flags().IntVar(&f.nWorkers, "n-workers", 0, "number of concurrent workers, defaults to the number of CPU cores")
	cmd.Flags().StringVar(&f.output, "output", ".", "directory (or ZIP archive ending in .zip) to store the pulled entries in")
	cmd.Flags().StringVar(&f.entryField, "entry-field", "", "optional field to pull from the entries instead of the default flat-file format")
	cmd.Flags().IntVar(&f.nTries, "n-tries", cfg.NTries, "number of times to try each KEGG request before marking it timed out")
	cmd.Flags().IntVar(&f.timeOut, "time-out", cfg.TimeOut, "seconds to wait for a KEGG response before the try times out")
	cmd.Flags().Float64Var(&f.sleepTime, "sleep-time", cfg.SleepTime, "seconds to wait after a timed-out try before trying again")
	cmd.Flags().Float64Var(&f.unsuccessfulThreshold, "ut", 0, "abort the pull when this ratio of entry IDs fails or times out")
}

// newPullCmd creates the "pull" command for fetching KEGG entries in bulk.
func newPullCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull KEGG entries in bulk and save them locally",
	}

	cmd.AddCommand(newPullDatabaseCmd(cfg))
	cmd.AddCommand(newPullEntryIDsCmd(cfg))

	return cmd
}

func newPullDatabaseCmd(cfg *Config) *cobra.Command {
	flags := &pullFlags{}
	cmd := &cobra.Command{
		Use:   "database <database-name>",
		Short: "Pull every entry in a KEGG database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			database := args[0]
			if database == "brite" {
				// Brite entries cannot be pulled in batches.
				flags.forceSingleEntry = true
			}
			client, err := buildClient(ctx, cfg, flags.nTries, time.Duration(flags.timeOut)*time.Second, time.Duration(flags.sleepTime*float64(time.Second)))
			if err != nil {
				return err
			}
			entryIDs, err := entryids.FromDatabase(ctx, client, database)
			if err != nil {
				return err
			}
			return runPull(cmd, flags, client, entryIDs)
		},
	}
	flags.register(cmd, cfg)
	return cmd
}

func newPullEntryIDsCmd(cfg *Config) *cobra.Command {
	flags := &pullFlags{}
	cmd := &cobra.Command{
		Use:   "entry-ids <entry-ids>",
		Short: "Pull the entries of specific entry IDs",
		Long:  `Pull the entries of specific entry IDs. The entry IDs are provided as a comma separated list, as a path to a file with one entry ID per line, or as "-" to read one entry ID per line from standard input.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			entryIDs, err := resolveEntryIDs(ctx, cmd, args[0])
			if err != nil {
				return err
			}
			client, err := buildClient(ctx, cfg, flags.nTries, time.Duration(flags.timeOut)*time.Second, time.Duration(flags.sleepTime*float64(time.Second)))
			if err != nil {
				return err
			}
			return runPull(cmd, flags, client, entryIDs)
		},
	}
	flags.register(cmd, cfg)
	return cmd
}

// resolveEntryIDs turns the entry IDs argument into a list: "-" reads from
// standard input, an existing file path is read line by line, and anything
// else is parsed as a comma separated list.
func resolveEntryIDs(ctx context.Context, cmd *cobra.Command, arg string) ([]string, error) {
	logger := loggerFromContext(ctx)
	if arg == "-" {
		return readInput(logger, cmd.InOrStdin(), arg)
	}
	if _, err := os.Stat(arg); err == nil {
		return entryids.FromFile(arg)
	}
	return parseCommaList(logger, arg)
}

// runPull executes the bulk pull and records the results. A successful run
// writes pull-results.json; a run aborted by the unsuccessful threshold
// writes aborted-pull-results.json and reports failure.
func runPull(cmd *cobra.Command, flags *pullFlags, client *rest.Client, entryIDs []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	saver, err := pull.NewSaver(flags.output)
	if err != nil {
		return err
	}

	single := pull.NewSinglePull(client, saver, flags.entryField, logger)
	opts := []pull.MultipleOption{
		pull.WithForceSingleEntry(flags.forceSingleEntry),
		pull.WithMultipleLogger(logger),
	}
	if flags.unsuccessfulThreshold != 0 {
		opts = append(opts, pull.WithUnsuccessfulThreshold(flags.unsuccessfulThreshold))
	}
	if flags.multiProcess {
		workers := flags.nWorkers
		if workers == 0 {
			workers = -1
		}
		opts = append(opts, pull.WithWorkers(workers))
	}
	multiple, err := pull.NewMultiple(single, opts...)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	logger.Infof("Pulling %d entry IDs...", len(entryIDs))
	spin := newSpinner(ctx, fmt.Sprintf("Pulling %d entry IDs", len(entryIDs)))
	spin.start()
	result, err := multiple.Pull(ctx, entryIDs)
	spin.stop()
	if err != nil {
		// Entries pulled before the failure are still flushed.
		saver.Close()
		var abort *pull.AbortError
		if errors.As(err, &abort) {
			if saveErr := writeJSONReport(abortedPullResultsPath, abort.Report()); saveErr != nil {
				return saveErr
			}
			logger.Errorf("%s Details saved at %s", abort.Error(), abortedPullResultsPath)
			return kerrors.Wrap(kerrors.ErrCodePullAborted, abort, "pull aborted")
		}
		return err
	}
	if err := saver.Close(); err != nil {
		return err
	}

	report := pull.NewReport(result, prog.minutes())
	if err := writeJSONReport(pullResultsPath, report); err != nil {
		return err
	}
	prog.done("Pull complete")
	printSuccess("Pulled %d of %d entries", len(report.SuccessfulIDs), report.NumTotal)
	printFile(pullResultsPath)
	return nil
}

// writeJSONReport marshals a pull report to an indented JSON file.
func writeJSONReport(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "encoding pull report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "writing pull report to %s", path)
	}
	return nil
}
