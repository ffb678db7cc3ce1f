// Package pipeline wires the row stream through the aggregation engine:
// a producer goroutine parses input rows into a bounded channel and a
// single consumer, the exclusive owner of the engine, merges them. The
// bounded channel gives backpressure; the reader blocks instead of
// buffering millions of rows.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/reallyliri/attrib/internal/config"
	"github.com/reallyliri/attrib/internal/engine"
	"github.com/reallyliri/attrib/internal/record"
	"github.com/reallyliri/attrib/internal/storage"
)

// Summary reports the outcome of one aggregation run.
type Summary struct {
	RowsRead       int    `json:"rows_read"`
	RowsSkipped    int    `json:"rows_skipped"`
	Groups         int    `json:"groups"`
	GroupsFiltered int    `json:"groups_filtered"`
	AuthorsEmitted int    `json:"authors_emitted"`
	Elapsed        string `json:"elapsed"`
}

// Run executes one full aggregation pass: read and parse the input
// stream, resolve and merge every row, finalize, write the output CSV
// atomically and optionally export to SQLite.
//
// Cancelling ctx stops row intake promptly and discards all state; the
// output is written with a temp-file-and-rename, so a cancelled or failed
// run leaves no partial file behind. Row-level problems (missing required
// fields, unparsable numerics) never fail the run; only I/O does.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Summary, error) {
	start := time.Now()

	in, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	reader, err := storage.NewReader(bufio.NewReaderSize(in, 1<<20), cfg.FlagValues)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.Input, err)
	}

	rows := make(chan record.Row, cfg.QueueSize)
	errc := make(chan error, 1)
	go func() {
		defer close(rows)
		for {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errc <- fmt.Errorf("reading %s: %w", cfg.Input, err)
				return
			}
			select {
			case rows <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	eng := engine.New(cfg.ListSep)
	read, skipped := 0, 0
	progress := rate.Sometimes{Interval: time.Second}
	for row := range rows {
		read++
		if !eng.Process(row) {
			skipped++
		}
		if cfg.ProgressEvery > 0 && read%cfg.ProgressEvery == 0 {
			progress.Do(func() {
				logger.Info("processing", "rows", read, "groups", eng.Groups(), "skipped", skipped)
			})
		}
	}

	select {
	case err := <-errc:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	authors := eng.Finalize()

	if err := storage.WriteAuthors(cfg.Output, authors); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if cfg.DB != "" {
		if err := storage.ExportSQLite(cfg.DB, authors); err != nil {
			return nil, fmt.Errorf("exporting to sqlite: %w", err)
		}
		logger.Debug("sqlite export written", "path", cfg.DB)
	}

	summary := &Summary{
		RowsRead:       read,
		RowsSkipped:    skipped,
		Groups:         eng.Groups(),
		GroupsFiltered: eng.Groups() - len(authors),
		AuthorsEmitted: len(authors),
		Elapsed:        time.Since(start).Round(time.Millisecond).String(),
	}
	logger.Info("aggregation complete",
		"rows", summary.RowsRead,
		"skipped", summary.RowsSkipped,
		"groups", summary.Groups,
		"filtered", summary.GroupsFiltered,
		"emitted", summary.AuthorsEmitted,
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}
