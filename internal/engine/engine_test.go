package engine

import (
	"testing"

	"github.com/reallyliri/attrib/internal/record"
)

func newTestEngine() *Engine {
	return New(";")
}

func TestResolveSameAuthorID(t *testing.T) {
	e := newTestEngine()

	// Same external id, different spellings, shuffled order.
	rows := []record.Row{
		{AuthorName: "J. Smith", AuthorID: "A1", WorkID: "W2"},
		{AuthorName: "John Smith", AuthorID: "A1", WorkID: "W1"},
		{AuthorName: "Smith, John", AuthorID: "A1", WorkID: "W3"},
	}
	for _, row := range rows {
		if !e.Process(row) {
			t.Fatalf("Process(%+v) rejected valid row", row)
		}
	}

	if got := e.Groups(); got != 1 {
		t.Errorf("Groups() = %d, want 1", got)
	}
}

func TestResolveNamelessRowsGroupByNormalizedName(t *testing.T) {
	e := newTestEngine()

	e.Process(record.Row{AuthorName: "O'Brien", WorkID: "W1", Flag: true})
	e.Process(record.Row{AuthorName: "obrien", WorkID: "W2"})
	e.Process(record.Row{AuthorName: "Ó'Brien", WorkID: "W3"})

	if got := e.Groups(); got != 1 {
		t.Fatalf("Groups() = %d, want 1", got)
	}

	out := e.Finalize()
	if len(out) != 1 {
		t.Fatalf("Finalize() emitted %d rows, want 1", len(out))
	}
	if out[0].WorksCount != 3 {
		t.Errorf("WorksCount = %d, want 3", out[0].WorksCount)
	}
}

func TestLateIDDoesNotMergeWithNameOnlyGroup(t *testing.T) {
	e := newTestEngine()

	// A name-only group forms first; the same person later shows up with
	// an external id. The two stay distinct groups.
	e.Process(record.Row{AuthorName: "Jane Doe", WorkID: "W1"})
	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A9", WorkID: "W2"})

	if got := e.Groups(); got != 2 {
		t.Errorf("Groups() = %d, want 2 (no late unification)", got)
	}
}

func TestIDLookupDoesNotFallBackToName(t *testing.T) {
	e := newTestEngine()

	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1"})
	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A2", WorkID: "W2"})

	// Distinct ids are distinct people even with identical names.
	if got := e.Groups(); got != 2 {
		t.Errorf("Groups() = %d, want 2", got)
	}
}

func TestAggregateExample(t *testing.T) {
	e := newTestEngine()

	e.Process(record.Row{
		AuthorName: "John Smith", AuthorID: "A1", WorkID: "W1",
		Flag: true, CitedBy: "5", PubDate: "2020-01-01",
	})
	e.Process(record.Row{
		AuthorName: "J. Smith", AuthorID: "A1", WorkID: "W2",
		Flag: false, CitedBy: "3", PubDate: "2021-06-15",
	})

	out := e.Finalize()
	if len(out) != 1 {
		t.Fatalf("Finalize() emitted %d rows, want 1", len(out))
	}

	a := out[0]
	if a.WorksCount != 2 {
		t.Errorf("WorksCount = %d, want 2", a.WorksCount)
	}
	if a.SpecificWorksCount != 1 {
		t.Errorf("SpecificWorksCount = %d, want 1", a.SpecificWorksCount)
	}
	if a.CitedByCount != 8 {
		t.Errorf("CitedByCount = %d, want 8", a.CitedByCount)
	}
	if a.MinYear != 2020 || a.MaxYear != 2021 {
		t.Errorf("years = [%d, %d], want [2020, 2021]", a.MinYear, a.MaxYear)
	}
	if a.AuthorIDs != "A1" {
		t.Errorf("AuthorIDs = %q, want %q", a.AuthorIDs, "A1")
	}
}

func TestIdenticalRowIsNoOp(t *testing.T) {
	e := newTestEngine()

	row := record.Row{
		AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1",
		Flag: true, CitedBy: "7", PubDate: "2019-03-03",
		Institutions: "MIT;Harvard", Countries: "US",
	}
	e.Process(row)
	first := e.Finalize()
	e.Process(row)
	second := e.Finalize()

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected exactly one output row, got %d then %d", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("duplicate row changed group state:\nfirst:  %+v\nsecond: %+v", first[0], second[0])
	}
}

func TestCitedByFirstWriteWins(t *testing.T) {
	e := newTestEngine()

	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1", Flag: true, CitedBy: "10"})
	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1", CitedBy: "99"})
	e.Process(record.Row{AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W2", CitedBy: "2"})

	out := e.Finalize()
	if out[0].CitedByCount != 12 {
		t.Errorf("CitedByCount = %d, want 12 (first value per work wins)", out[0].CitedByCount)
	}
}

func TestRejectsMissingRequiredFields(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		row  record.Row
	}{
		{"empty work id", record.Row{AuthorName: "Jane Doe", WorkID: ""}},
		{"whitespace work id", record.Row{AuthorName: "Jane Doe", WorkID: "  "}},
		{"empty author name", record.Row{AuthorName: "", WorkID: "W1"}},
		{"whitespace author name", record.Row{AuthorName: " \t", WorkID: "W1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e.Process(tt.row) {
				t.Error("Process() accepted an invalid row")
			}
		})
	}

	if got := e.Groups(); got != 0 {
		t.Errorf("rejected rows created %d groups, want 0", got)
	}
}

func TestMalformedFieldsDegradeGracefully(t *testing.T) {
	e := newTestEngine()

	ok := e.Process(record.Row{
		AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1",
		Flag: true, CitedBy: "abc", PubDate: "n/a",
	})
	if !ok {
		t.Fatal("row with malformed numeric fields was rejected")
	}

	out := e.Finalize()
	a := out[0]
	if a.CitedByCount != 0 {
		t.Errorf("CitedByCount = %d, want 0 (unparsable value ignored)", a.CitedByCount)
	}
	if a.MinYear != 0 || a.MaxYear != 0 {
		t.Errorf("years = [%d, %d], want unobserved", a.MinYear, a.MaxYear)
	}
	if a.WorksCount != 1 {
		t.Errorf("WorksCount = %d, want 1 (row still aggregated)", a.WorksCount)
	}
}

func TestYearBounds(t *testing.T) {
	e := newTestEngine()

	dates := []string{
		"1899-12-31", // below range, ignored
		"1900-01-01",
		"2035-06-01",
		"2101-01-01", // above range, ignored
		"202",        // too short, ignored
	}
	for i, d := range dates {
		e.Process(record.Row{
			AuthorName: "Jane Doe", AuthorID: "A1",
			WorkID: "W" + string(rune('0'+i)), Flag: true, PubDate: d,
		})
	}

	out := e.Finalize()
	if out[0].MinYear != 1900 || out[0].MaxYear != 2035 {
		t.Errorf("years = [%d, %d], want [1900, 2035]", out[0].MinYear, out[0].MaxYear)
	}
}

func TestMultiValueFieldsMerge(t *testing.T) {
	e := newTestEngine()

	e.Process(record.Row{
		AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W1", Flag: true,
		Institutions: "MIT; Harvard ;", Countries: "US;IL",
	})
	e.Process(record.Row{
		AuthorName: "Jane Doe", AuthorID: "A1", WorkID: "W2",
		Institutions: "Harvard;Stanford", Countries: "US",
		Affiliations: " visiting scholar ",
	})

	out := e.Finalize()
	a := out[0]
	if a.Institutions != "Harvard;MIT;Stanford" {
		t.Errorf("Institutions = %q, want %q", a.Institutions, "Harvard;MIT;Stanford")
	}
	if a.Countries != "IL;US" {
		t.Errorf("Countries = %q, want %q", a.Countries, "IL;US")
	}
	if a.Affiliations != "visiting scholar" {
		t.Errorf("Affiliations = %q, want %q", a.Affiliations, "visiting scholar")
	}
}
