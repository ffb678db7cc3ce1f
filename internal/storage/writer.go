package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reallyliri/attrib/internal/record"
)

// OutputHeader is the fixed column order of the aggregated author table.
var OutputHeader = []string{
	"author_name",
	"author_ids",
	"works_count",
	"specific_works_count",
	"journals_count",
	"cited_by_count",
	"min_year",
	"max_year",
	"institutions",
	"countries",
	"affiliations_comment",
}

// WriteAuthors writes the aggregated author table to path atomically.
// The rows go to a temp file in the destination directory which is
// renamed over path only after a successful flush and sync, so a failed
// or interrupted run never leaves a partial output file behind.
func WriteAuthors(path string, authors []record.Author) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(OutputHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range authors {
		if err := w.Write(renderAuthor(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

func renderAuthor(a record.Author) []string {
	return []string{
		a.AuthorName,
		a.AuthorIDs,
		strconv.Itoa(a.WorksCount),
		strconv.Itoa(a.SpecificWorksCount),
		strconv.Itoa(a.JournalsCount),
		strconv.Itoa(a.CitedByCount),
		yearField(a.MinYear),
		yearField(a.MaxYear),
		a.Institutions,
		a.Countries,
		a.Affiliations,
	}
}

// yearField renders an unobserved year (zero) as the empty string.
func yearField(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// ReadAuthors loads an aggregated author table previously written by
// WriteAuthors. Used by the stats command and the SQLite export path.
func ReadAuthors(path string) ([]record.Author, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening aggregated file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range OutputHeader[:6] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	count := func(rec []string, col string) (int, error) {
		s := strings.TrimSpace(field(rec, col))
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", col, err)
		}
		return n, nil
	}

	var authors []record.Author
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		a := record.Author{
			AuthorName:   field(rec, "author_name"),
			AuthorIDs:    field(rec, "author_ids"),
			Institutions: field(rec, "institutions"),
			Countries:    field(rec, "countries"),
			Affiliations: field(rec, "affiliations_comment"),
		}
		for col, dst := range map[string]*int{
			"works_count":          &a.WorksCount,
			"specific_works_count": &a.SpecificWorksCount,
			"journals_count":       &a.JournalsCount,
			"cited_by_count":       &a.CitedByCount,
			"min_year":             &a.MinYear,
			"max_year":             &a.MaxYear,
		} {
			n, err := count(rec, col)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*dst = n
		}
		authors = append(authors, a)
	}

	return authors, nil
}
