package engine

import (
	"sort"
	"strings"

	"github.com/reallyliri/attrib/internal/normalize"
	"github.com/reallyliri/attrib/internal/record"
)

// Finalize freezes the group table and emits one output record per group
// that has at least one flagged work. Groups with none are dropped.
//
// The canonical author name is the modal normalized form of the group's
// distinct raw spellings, ties broken by the lexicographically smallest
// form, rendered in title case. Output is sorted by works_count
// descending, then author_name ascending, so the result is fully
// deterministic regardless of input arrival order.
func (e *Engine) Finalize() []record.Author {
	out := make([]record.Author, 0, len(e.groups))

	for _, g := range e.groups {
		if len(g.FlaggedWorkIDs) == 0 {
			continue
		}

		citedBy := 0
		for _, n := range g.CitedByWork {
			citedBy += n
		}

		minYear, maxYear := 0, 0
		for year := range g.Years {
			if minYear == 0 || year < minYear {
				minYear = year
			}
			if year > maxYear {
				maxYear = year
			}
		}

		out = append(out, record.Author{
			AuthorName:         canonicalName(g.DisplayNames),
			AuthorIDs:          e.joinSorted(g.AuthorIDs),
			WorksCount:         len(g.WorkIDs),
			SpecificWorksCount: len(g.FlaggedWorkIDs),
			JournalsCount:      len(g.SourceIDs),
			CitedByCount:       citedBy,
			MinYear:            minYear,
			MaxYear:            maxYear,
			Institutions:       e.joinSorted(g.Institutions),
			Countries:          e.joinSorted(g.Countries),
			Affiliations:       e.joinSorted(g.Affiliations),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WorksCount != out[j].WorksCount {
			return out[i].WorksCount > out[j].WorksCount
		}
		return out[i].AuthorName < out[j].AuthorName
	})

	return out
}

// canonicalName picks the modal normalized form among the group's distinct
// raw spellings. Ties go to the lexicographically smallest form.
func canonicalName(displayNames map[string]struct{}) string {
	counts := make(map[string]int, len(displayNames))
	for name := range displayNames {
		counts[normalize.Key(name)]++
	}

	best := ""
	bestCount := -1
	for key, n := range counts {
		if n > bestCount || (n == bestCount && key < best) {
			best = key
			bestCount = n
		}
	}
	return normalize.TitleCase(best)
}

func (e *Engine) joinSorted(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, e.listSep)
}
