package mapping

import (
	"context"

	"github.com/charmbracelet/log"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/rest"
)

// LinkOptions adjust how a database link mapping is post-processed.
type LinkOptions struct {
	// Deduplicate removes pathway entry IDs that do not carry the
	// "path:map" prefix. Requires pathway as the source or target.
	Deduplicate bool
	// AddGlycans adds the compound IDs of equivalent glycan entries.
	AddGlycans bool
	// AddDrugs adds the compound IDs of equivalent drug entries.
	AddDrugs bool
	// Logger receives the warning when glycans or drugs are added to a
	// mapping that does not involve compound. Defaults to log.Default().
	Logger *log.Logger
}

func (o LinkOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// DatabaseLink maps every entry ID of the source database to its
// cross-references in the target database.
func DatabaseLink(ctx context.Context, client *rest.Client, sourceDatabase, targetDatabase string, opts LinkOptions) (Mapping, error) {
	m, err := fromResponse(client.DatabaseLink(ctx, targetDatabase, sourceDatabase))
	if err != nil {
		return nil, err
	}
	return postProcess(ctx, client, m, sourceDatabase, targetDatabase, opts)
}

// EntriesLink maps the given entry IDs to their cross-references in the
// target database, optionally reversed.
func EntriesLink(ctx context.Context, client *rest.Client, entryIDs []string, targetDatabase string, reverse bool) (Mapping, error) {
	m, err := fromResponse(client.EntriesLink(ctx, targetDatabase, entryIDs))
	return maybeReverse(m, err, reverse)
}

// DatabaseConv maps every entry ID of the KEGG database to its equivalents
// in the outside database, optionally reversed.
func DatabaseConv(ctx context.Context, client *rest.Client, keggDatabase, outsideDatabase string, reverse bool) (Mapping, error) {
	m, err := fromResponse(client.DatabaseConv(ctx, keggDatabase, outsideDatabase))
	return maybeReverse(m, err, reverse)
}

// EntriesConv maps the given entry IDs to their equivalents in the target
// database, optionally reversed.
func EntriesConv(ctx context.Context, client *rest.Client, entryIDs []string, targetDatabase string, reverse bool) (Mapping, error) {
	m, err := fromResponse(client.EntriesConv(ctx, targetDatabase, entryIDs))
	return maybeReverse(m, err, reverse)
}

// IndirectLink maps the source database to the target database through an
// intermediate database, joining source-to-intermediate with
// intermediate-to-target. All three databases must be distinct.
func IndirectLink(ctx context.Context, client *rest.Client, sourceDatabase, intermediateDatabase, targetDatabase string, opts LinkOptions) (Mapping, error) {
	if sourceDatabase == intermediateDatabase || sourceDatabase == targetDatabase || intermediateDatabase == targetDatabase {
		return nil, kerrors.New(kerrors.ErrCodeInvalidMapping,
			"The source, intermediate, and target database must all be unique. Databases specified: %s, %s, %s.",
			sourceDatabase, intermediateDatabase, targetDatabase)
	}

	sourceToIntermediate, err := fromResponse(client.DatabaseLink(ctx, intermediateDatabase, sourceDatabase))
	if err != nil {
		return nil, err
	}
	intermediateToTarget, err := fromResponse(client.DatabaseLink(ctx, targetDatabase, intermediateDatabase))
	if err != nil {
		return nil, err
	}

	sourceToTarget := Mapping{}
	for sourceID, intermediateIDs := range sourceToIntermediate {
		for intermediateID := range intermediateIDs {
			if targetIDs, ok := intermediateToTarget[intermediateID]; ok {
				sourceToTarget.Add(sourceID, targetIDs.Sorted()...)
			}
		}
	}
	return postProcess(ctx, client, sourceToTarget, sourceDatabase, targetDatabase, opts)
}

// postProcess applies the deduplicate and glycan/drug options to a freshly
// built mapping.
func postProcess(ctx context.Context, client *rest.Client, m Mapping, sourceDatabase, targetDatabase string, opts LinkOptions) (Mapping, error) {
	if opts.Deduplicate {
		if sourceDatabase != "pathway" && targetDatabase != "pathway" {
			return nil, kerrors.New(kerrors.ErrCodeInvalidMapping,
				`Cannot deduplicate path:map entry ids when neither the source database nor the target database is set to "pathway". Databases specified: %s, %s.`,
				sourceDatabase, targetDatabase)
		}
		m = processAsSource(m, sourceDatabase, targetDatabase, "pathway",
			func(m Mapping, _ string) Mapping { return deduplicatePathwayKeys(m) })
	}

	if opts.AddGlycans || opts.AddDrugs {
		if sourceDatabase != "compound" && targetDatabase != "compound" {
			opts.logger().Warn(
				`Adding compound IDs (corresponding to equivalent glycan and/or drug entries) to a mapping where neither the source database nor the target database are "compound"`,
				"source", sourceDatabase, "target", targetDatabase)
		}
		var addErr error
		m = processAsSource(m, sourceDatabase, targetDatabase, "compound",
			func(m Mapping, target string) Mapping {
				for _, intermediate := range equivalentDatabases(opts) {
					equivalents, err := IndirectLink(ctx, client, "compound", intermediate, target, LinkOptions{})
					if err != nil {
						addErr = err
						return m
					}
					m = Combine(m, equivalents)
				}
				return m
			})
		if addErr != nil {
			return nil, addErr
		}
	}
	return m, nil
}

func equivalentDatabases(opts LinkOptions) []string {
	var databases []string
	if opts.AddGlycans {
		databases = append(databases, "glycan")
	}
	if opts.AddDrugs {
		databases = append(databases, "drug")
	}
	return databases
}

func maybeReverse(m Mapping, err error, reverse bool) (Mapping, error) {
	if err != nil {
		return nil, err
	}
	if reverse {
		m = Reverse(m)
	}
	return m, nil
}

func fromResponse(resp *rest.Response, err error) (Mapping, error) {
	if err != nil {
		return nil, err
	}
	switch resp.Status {
	case rest.StatusFailed:
		return nil, kerrors.New(kerrors.ErrCodeRequestFailed,
			"The request to the KEGG web API failed with the following URL: %s", resp.URL.String())
	case rest.StatusTimeout:
		return nil, kerrors.New(kerrors.ErrCodeRequestTimeout,
			"The request to the KEGG web API timed out with the following URL: %s", resp.URL.String())
	}
	return Parse(resp.TextBody), nil
}
