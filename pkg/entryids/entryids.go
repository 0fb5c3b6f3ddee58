// Package entryids acquires lists of KEGG entry IDs, either from the KEGG
// REST API (a whole database, a keyword search, or a molecular-attribute
// search) or from a local file with one entry ID per line.
package entryids

import (
	"context"
	"os"
	"strings"

	kerrors "github.com/jmorten/keggpull/pkg/errors"
	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/rest"
)

// FromDatabase returns the entry IDs of every entry in the database.
func FromDatabase(ctx context.Context, client *rest.Client, database string) ([]string, error) {
	return fromResponse(client.List(ctx, database))
}

// FromKeywords returns the entry IDs of the database entries matching the
// keywords.
func FromKeywords(ctx context.Context, client *rest.Client, database string, keywords []string) ([]string, error) {
	return fromResponse(client.KeywordsFind(ctx, database, keywords))
}

// FromMolecularAttribute returns the entry IDs of the compound or drug
// entries matching a molecular attribute query.
func FromMolecularAttribute(ctx context.Context, client *rest.Client, database string, query kegg.MolecularFindQuery) ([]string, error) {
	return fromResponse(client.MolecularFind(ctx, database, query))
}

// FromFile reads entry IDs from a file with one entry ID per line. Blank
// lines are dropped and an entirely empty file is an error.
func FromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "no entry ID file at %s", path)
		}
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "reading entry IDs from %s", path)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, kerrors.New(kerrors.ErrCodeEmptyFile,
			"Attempted to get entry IDs from %s. But the file is empty", path)
	}
	return Parse(string(data)), nil
}

// FromString splits a comma-separated string of entry IDs, trimming each.
func FromString(entryIDs string) []string {
	var ids []string
	for _, id := range strings.Split(entryIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Parse extracts entry IDs from a KEGG response body: one entry per line,
// the ID being the first tab-separated field. Blank lines are dropped.
func Parse(body string) []string {
	var ids []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, _, _ := strings.Cut(line, "\t")
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func fromResponse(resp *rest.Response, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	switch resp.Status {
	case rest.StatusFailed:
		return nil, kerrors.New(kerrors.ErrCodeRequestFailed,
			"The KEGG request failed to get the entry IDs from the following URL: %s", resp.URL.String())
	case rest.StatusTimeout:
		return nil, kerrors.New(kerrors.ErrCodeRequestTimeout,
			"The KEGG request timed out while trying to get the entry IDs from the following URL: %s", resp.URL.String())
	}
	return Parse(resp.TextBody), nil
}
