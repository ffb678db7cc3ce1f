// Package storage reads and writes the delimited row streams at the
// pipeline boundaries: the raw attribution stream on the way in and the
// aggregated author table on the way out (CSV, optionally mirrored to
// SQLite).
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/reallyliri/attrib/internal/record"
)

// Input column names. author_name and id are required; everything else is
// optional and read as empty when the column is absent.
const (
	ColAuthorName   = "author_name"
	ColWorkID       = "id"
	ColAuthorID     = "author_id"
	ColSourceID     = "source_id"
	ColFlag         = "references_israel"
	ColCitedBy      = "cited_by_count"
	ColPubDate      = "publication_date"
	ColInstitutions = "institutions"
	ColCountries    = "countries"
	ColAffiliations = "affiliations_comment"
)

// ErrMissingColumn indicates the input header lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// Reader decodes a header-driven attribution CSV into record.Row values.
// Unknown columns are ignored; short rows read missing fields as empty.
type Reader struct {
	cr     *csv.Reader
	index  map[string]int
	truthy map[string]bool
}

// NewReader reads the header and validates the required columns.
// flagValues are the case-insensitive values that mark a work as flagged;
// nil means record.DefaultFlagValues.
func NewReader(r io.Reader, flagValues []string) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColAuthorName, ColWorkID} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	if flagValues == nil {
		flagValues = record.DefaultFlagValues
	}
	truthy := make(map[string]bool, len(flagValues))
	for _, v := range flagValues {
		truthy[strings.ToLower(v)] = true
	}

	return &Reader{cr: cr, index: index, truthy: truthy}, nil
}

// Read returns the next row, or io.EOF at end of stream.
func (r *Reader) Read() (record.Row, error) {
	rec, err := r.cr.Read()
	if err != nil {
		return record.Row{}, err
	}

	return record.Row{
		AuthorName:   r.field(rec, ColAuthorName),
		AuthorID:     r.field(rec, ColAuthorID),
		WorkID:       r.field(rec, ColWorkID),
		SourceID:     r.field(rec, ColSourceID),
		Flag:         r.truthy[strings.ToLower(strings.TrimSpace(r.field(rec, ColFlag)))],
		CitedBy:      r.field(rec, ColCitedBy),
		PubDate:      r.field(rec, ColPubDate),
		Institutions: r.field(rec, ColInstitutions),
		Countries:    r.field(rec, ColCountries),
		Affiliations: r.field(rec, ColAffiliations),
	}, nil
}

func (r *Reader) field(rec []string, col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}
