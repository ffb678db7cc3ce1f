package main

import (
	"testing"

	"github.com/reallyliri/attrib/internal/record"
)

func TestComputeStats(t *testing.T) {
	authors := []record.Author{
		{AuthorName: "Jane Doe", WorksCount: 5, SpecificWorksCount: 2, CitedByCount: 40, MinYear: 2010, MaxYear: 2020},
		{AuthorName: "John Roe", WorksCount: 3, SpecificWorksCount: 1, CitedByCount: 10, MinYear: 1995, MaxYear: 2001},
		{AuthorName: "No Years", WorksCount: 3, SpecificWorksCount: 3, CitedByCount: 0},
	}

	result := computeStats(authors, 2)

	if result.Authors != 3 {
		t.Errorf("Authors = %d, want 3", result.Authors)
	}
	if result.TotalWorks != 11 {
		t.Errorf("TotalWorks = %d, want 11", result.TotalWorks)
	}
	if result.FlaggedWorks != 6 {
		t.Errorf("FlaggedWorks = %d, want 6", result.FlaggedWorks)
	}
	if result.TotalCitations != 50 {
		t.Errorf("TotalCitations = %d, want 50", result.TotalCitations)
	}
	if result.MinYear != 1995 || result.MaxYear != 2020 {
		t.Errorf("years = [%d, %d], want [1995, 2020]", result.MinYear, result.MaxYear)
	}

	if len(result.Top) != 2 {
		t.Fatalf("Top has %d entries, want 2", len(result.Top))
	}
	if result.Top[0].AuthorName != "Jane Doe" {
		t.Errorf("Top[0] = %q, want Jane Doe", result.Top[0].AuthorName)
	}
	// 3-work tie breaks by name ascending.
	if result.Top[1].AuthorName != "John Roe" {
		t.Errorf("Top[1] = %q, want John Roe", result.Top[1].AuthorName)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	result := computeStats(nil, 10)
	if result.Authors != 0 || result.TotalWorks != 0 || len(result.Top) != 0 {
		t.Errorf("empty table produced %+v", result)
	}
	if result.MinYear != 0 || result.MaxYear != 0 {
		t.Errorf("empty table produced year span [%d, %d]", result.MinYear, result.MaxYear)
	}
}
