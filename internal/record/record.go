// Package record defines the row types flowing through the aggregation
// pipeline: the raw (author, work) attribution read from the input stream
// and the aggregated per-author output record.
package record

// Row is one (author, work) attribution parsed from the input stream.
//
// AuthorName and WorkID are required; rows where either is empty after
// trimming are rejected by the engine. CitedBy, PubDate and the
// multi-valued fields are carried as raw strings — the engine owns their
// parse-tolerant interpretation.
type Row struct {
	AuthorName   string // raw display name, required
	AuthorID     string // external author identifier, optional
	WorkID       string // work identifier, required
	SourceID     string // journal/venue identifier, optional
	Flag         bool   // topical-relevance indicator
	CitedBy      string // citation count, unparsed
	PubDate      string // publication date, only the leading year is used
	Institutions string // delimiter-separated list
	Countries    string // delimiter-separated list
	Affiliations string // delimiter-separated list
}

// Author is one aggregated, canonicalized output record. Multi-valued
// fields are rendered as sorted, delimiter-joined strings. MinYear and
// MaxYear are zero when no year was observed for the group.
type Author struct {
	AuthorName         string `json:"author_name"`
	AuthorIDs          string `json:"author_ids,omitempty"`
	WorksCount         int    `json:"works_count"`
	SpecificWorksCount int    `json:"specific_works_count"`
	JournalsCount      int    `json:"journals_count"`
	CitedByCount       int    `json:"cited_by_count"`
	MinYear            int    `json:"min_year,omitempty"`
	MaxYear            int    `json:"max_year,omitempty"`
	Institutions       string `json:"institutions,omitempty"`
	Countries          string `json:"countries,omitempty"`
	Affiliations       string `json:"affiliations_comment,omitempty"`
}

// DefaultFlagValues are the input values (compared case-insensitively)
// that mark a row's work as flagged.
var DefaultFlagValues = []string{"yes", "true", "1"}
