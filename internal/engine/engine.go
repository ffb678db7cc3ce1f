// Package engine resolves author identities across an attribution row
// stream and aggregates per-author state.
//
// Identity resolution uses two keys: rows carrying an external author id
// group by that id; rows without one group by the normalized display name.
// A group keyed by normalized name is never unified with an id-keyed group
// for the same person, even if an id for that name appears later — the
// correct merge policy is ambiguous, so the two groups stay distinct. This
// is a known limitation, not a bug.
//
// The engine is single-owner: it is not safe for concurrent use. The
// pipeline feeds it from exactly one goroutine.
package engine

import (
	"strconv"
	"strings"

	"github.com/reallyliri/attrib/internal/normalize"
	"github.com/reallyliri/attrib/internal/record"
)

// Years outside this range are treated as data noise and ignored.
const (
	MinValidYear = 1900
	MaxValidYear = 2100
)

// Group is the mutable aggregate state for one resolved author. All
// collections are true sets; CitedByWork is first-write-wins per work id.
type Group struct {
	AuthorIDs      map[string]struct{}
	DisplayNames   map[string]struct{}
	WorkIDs        map[string]struct{}
	FlaggedWorkIDs map[string]struct{}
	CitedByWork    map[string]int
	Years          map[int]struct{}
	SourceIDs      map[string]struct{}
	Institutions   map[string]struct{}
	Countries      map[string]struct{}
	Affiliations   map[string]struct{}
}

// Engine owns the group arena and both identity indices for one run.
type Engine struct {
	groups  []*Group       // arena, addressed by group id
	byID    map[string]int // external author id -> group id
	byName  map[string]int // normalized name -> group id (id-less rows only)
	listSep string         // delimiter for multi-valued input fields
}

// New creates an empty engine. listSep is the delimiter used to split
// multi-valued input fields (";" in OpenAlex-style exports).
func New(listSep string) *Engine {
	return &Engine{
		byID:    make(map[string]int),
		byName:  make(map[string]int),
		listSep: listSep,
	}
}

// Groups returns the number of identity groups formed so far.
func (e *Engine) Groups() int {
	return len(e.groups)
}

// Process resolves the row's identity group and merges the row into it.
// Rows missing an author name or work id (after trimming) are rejected
// without touching any group; Process reports whether the row was
// aggregated. Re-processing an identical row is a no-op on group state.
func (e *Engine) Process(row record.Row) bool {
	row.AuthorName = strings.TrimSpace(row.AuthorName)
	row.AuthorID = strings.TrimSpace(row.AuthorID)
	row.WorkID = strings.TrimSpace(row.WorkID)
	row.SourceID = strings.TrimSpace(row.SourceID)

	if row.AuthorName == "" || row.WorkID == "" {
		return false
	}

	e.apply(e.resolve(row.AuthorID, row.AuthorName), row)
	return true
}

// resolve returns the group id for an (external id, raw name) pair,
// allocating a new group on first sight of the identity key. Lookups are
// O(1): both indices address the arena directly.
func (e *Engine) resolve(authorID, authorName string) int {
	if authorID != "" {
		if gid, ok := e.byID[authorID]; ok {
			return gid
		}
		gid := e.newGroup()
		e.byID[authorID] = gid
		return gid
	}

	key := normalize.Key(authorName)
	if gid, ok := e.byName[key]; ok {
		return gid
	}
	gid := e.newGroup()
	e.byName[key] = gid
	return gid
}

func (e *Engine) newGroup() int {
	e.groups = append(e.groups, &Group{
		AuthorIDs:      make(map[string]struct{}),
		DisplayNames:   make(map[string]struct{}),
		WorkIDs:        make(map[string]struct{}),
		FlaggedWorkIDs: make(map[string]struct{}),
		CitedByWork:    make(map[string]int),
		Years:          make(map[int]struct{}),
		SourceIDs:      make(map[string]struct{}),
		Institutions:   make(map[string]struct{}),
		Countries:      make(map[string]struct{}),
		Affiliations:   make(map[string]struct{}),
	})
	return len(e.groups) - 1
}

// apply merges one row into the group's state. Malformed numeric and date
// fields degrade to "absent": the field is skipped, the row still
// contributes everything else.
func (e *Engine) apply(gid int, row record.Row) {
	g := e.groups[gid]

	g.DisplayNames[row.AuthorName] = struct{}{}
	if row.AuthorID != "" {
		g.AuthorIDs[row.AuthorID] = struct{}{}
	}
	g.WorkIDs[row.WorkID] = struct{}{}
	if row.SourceID != "" {
		g.SourceIDs[row.SourceID] = struct{}{}
	}
	if row.Flag {
		g.FlaggedWorkIDs[row.WorkID] = struct{}{}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(row.CitedBy)); err == nil {
		// First write wins: later rows for the same work never overwrite.
		if _, seen := g.CitedByWork[row.WorkID]; !seen {
			g.CitedByWork[row.WorkID] = n
		}
	}

	if len(row.PubDate) >= 4 {
		if year, err := strconv.Atoi(row.PubDate[:4]); err == nil {
			if year >= MinValidYear && year <= MaxValidYear {
				g.Years[year] = struct{}{}
			}
		}
	}

	e.mergeList(g.Institutions, row.Institutions)
	e.mergeList(g.Countries, row.Countries)
	e.mergeList(g.Affiliations, row.Affiliations)
}

// mergeList splits a delimiter-separated value, trims each piece, drops
// empties and inserts the survivors into the set.
func (e *Engine) mergeList(set map[string]struct{}, value string) {
	if value == "" {
		return
	}
	for _, piece := range strings.Split(value, e.listSep) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			set[piece] = struct{}{}
		}
	}
}
