// Package pull fetches KEGG entries in bulk and saves each entry to its own
// file, in a directory, a ZIP archive, or memory.
//
// A single pull requests up to ten entries in one get URL, separates the
// concatenated response into individual entries, and saves each one. When
// the batch request fails, times out, or comes back with fewer entries than
// requested, every entry of the batch is re-pulled one at a time so partial
// answers still yield whatever KEGG can provide. A multiple pull groups an
// arbitrary entry ID list into batches and runs them sequentially or across
// a worker pool.
package pull

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/jmorten/keggpull/pkg/kegg"
	"github.com/jmorten/keggpull/pkg/rest"
)

// SinglePull pulls one batch of entries per call.
type SinglePull struct {
	client *rest.Client
	saver  Saver
	logger *log.Logger

	// EntryField selects the format to pull, "" for the flat-file format.
	EntryField string
}

// NewSinglePull creates a batch puller saving through saver. Pass nil for
// logger to use log.Default().
func NewSinglePull(client *rest.Client, saver Saver, entryField string, logger *log.Logger) *SinglePull {
	if logger == nil {
		logger = log.Default()
	}
	return &SinglePull{client: client, saver: saver, logger: logger, EntryField: entryField}
}

// Pull requests the entries in one get URL and saves each returned entry.
// Entry IDs end up in the result under the status their pull concluded with;
// the returned error is reserved for non-KEGG failures (transport errors,
// save errors, cancellation).
func (p *SinglePull) Pull(ctx context.Context, entryIDs []string) (*Result, error) {
	resp, err := p.client.Get(ctx, entryIDs, p.EntryField)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	switch {
	case resp.Succeeded() && resp.URL.MultipleEntryIDs():
		if err := p.saveBatch(ctx, resp, result); err != nil {
			return nil, err
		}
	case resp.Succeeded():
		if err := p.saveSingle(resp, result); err != nil {
			return nil, err
		}
	case resp.URL.MultipleEntryIDs():
		// The whole batch failed or timed out; each entry gets its own try.
		p.logger.Warn("batch pull unsuccessful, re-pulling entries separately",
			"status", resp.Status, "entries", len(entryIDs))
		if err := p.pullSeparately(ctx, entryIDs, result); err != nil {
			return nil, err
		}
	default:
		result.Add(resp.Status, entryIDs[0])
	}
	return result, nil
}

// saveBatch separates a successful multi-entry response and saves each
// entry. A response holding fewer entries than requested falls back to
// pulling every entry of the batch separately.
func (p *SinglePull) saveBatch(ctx context.Context, resp *rest.Response, result *Result) error {
	entryIDs := resp.URL.EntryIDs()
	entries := separateEntries(resp.TextBody, p.EntryField)
	if len(entries) < len(entryIDs) {
		p.logger.Warn("batch came back incomplete, re-pulling entries separately",
			"requested", len(entryIDs), "received", len(entries))
		return p.pullSeparately(ctx, entryIDs, result)
	}
	for i, entryID := range entryIDs {
		if err := p.saver.Save(entryID, p.EntryField, []byte(entries[i])); err != nil {
			return err
		}
	}
	result.Add(rest.StatusSuccess, entryIDs...)
	return nil
}

// saveSingle saves the one entry of a successful single-entry response,
// using the raw bytes for binary entry fields.
func (p *SinglePull) saveSingle(resp *rest.Response, result *Result) error {
	entryID := resp.URL.EntryIDs()[0]
	var entry []byte
	if kegg.IsBinaryField(p.EntryField) {
		entry = resp.BinaryBody
	} else {
		entry = []byte(resp.TextBody)
	}
	if err := p.saver.Save(entryID, p.EntryField, entry); err != nil {
		return err
	}
	result.Add(rest.StatusSuccess, entryID)
	return nil
}

// pullSeparately requests each entry of a batch on its own URL, recording
// per-entry outcomes.
func (p *SinglePull) pullSeparately(ctx context.Context, entryIDs []string, result *Result) error {
	for _, entryID := range entryIDs {
		resp, err := p.client.Get(ctx, []string{entryID}, p.EntryField)
		if err != nil {
			return err
		}
		if resp.Succeeded() {
			if err := p.saveSingle(resp, result); err != nil {
				return err
			}
			continue
		}
		result.Add(resp.Status, entryID)
	}
	return nil
}
