package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmorten/keggpull/pkg/cache"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/rest"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. This is
// typically called by the main package with values injected via ldflags at
// build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the keggpull CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (rest, pull,
// entry-ids, map, pathway-organizer, cache), configures logging based on the
// --verbose flag, and executes the command tree. The logger is attached to
// the context and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	cfg, cfgErr := loadConfig()

	root := &cobra.Command{
		Use:          "keggpull",
		Short:        "keggpull accesses the KEGG REST API",
		Long:         `keggpull is a CLI tool for the KEGG REST API: executing its operations, pulling entries in bulk, and turning its cross-reference output into entry ID mappings.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
			return cfgErr
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("keggpull %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRestCmd(&cfg))
	root.AddCommand(newPullCmd(&cfg))
	root.AddCommand(newEntryIDsCmd(&cfg))
	root.AddCommand(newMapCmd(&cfg))
	root.AddCommand(newPathwayOrganizerCmd(&cfg))
	root.AddCommand(newCacheCmd(&cfg))

	return root.ExecuteContext(ctx)
}

// organismStore opens the persistent cache backing the organism set. A
// cache that cannot be opened degrades to in-memory memoization only.
func organismStore(cfg *Config) *cache.Cache {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	store, err := cache.New(cfg.CacheDir, ttl)
	if err != nil {
		return nil
	}
	return store
}

// buildClient assembles the KEGG REST client used by a command, wiring the
// context logger into URL building and request retries.
func buildClient(ctx context.Context, cfg *Config, tries int, timeout, sleep time.Duration) (*rest.Client, error) {
	logger := loggerFromContext(ctx)
	organisms := kegg.NewOrganisms(cfg.BaseURL, organismStore(cfg))
	builder := kegg.NewBuilder(cfg.BaseURL, organisms, logger)
	return rest.NewClient(
		rest.WithBuilder(builder),
		rest.WithTries(tries),
		rest.WithTimeout(timeout),
		rest.WithSleep(sleep),
		rest.WithLogger(logger),
	)
}

// defaultClient builds a client with the config's defaults.
func defaultClient(ctx context.Context, cfg *Config) (*rest.Client, error) {
	return buildClient(ctx, cfg, cfg.NTries, cfg.Timeout(), cfg.Sleep())
}
