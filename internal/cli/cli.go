// Package cli implements the keggpull command-line interface.
//
// This package provides commands for executing raw KEGG REST operations,
// pulling entries in bulk, acquiring entry ID lists, building entry ID
// mappings from the "link" and "conv" operations, and flattening the
// pathways Brite hierarchy. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - rest: Execute a single KEGG REST operation and print or save the body
//   - pull: Pull KEGG entries in bulk into a directory or ZIP archive
//   - entry-ids: Acquire entry ID lists from a database, search, or file
//   - map: Build entry ID mappings from "link" and "conv" cross-references
//   - pathway-organizer: Flatten the pathways Brite hierarchy
//   - cache: Manage the cached organism set
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// minutes returns the elapsed time since the progress started, in minutes.
func (p *progress) minutes() float64 {
	return time.Since(p.start).Minutes()
}

// done logs msg along with the elapsed time since progress was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default() if none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
