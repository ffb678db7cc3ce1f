package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/reallyliri/attrib/internal/record"
)

const authorsDDL = `CREATE TABLE authors (
  author_name TEXT NOT NULL,
  author_ids TEXT,
  works_count INTEGER NOT NULL,
  specific_works_count INTEGER NOT NULL,
  journals_count INTEGER NOT NULL,
  cited_by_count INTEGER NOT NULL,
  min_year INTEGER,
  max_year INTEGER,
  institutions TEXT,
  countries TEXT,
  affiliations_comment TEXT
)`

// ExportSQLite mirrors the aggregated author table into a SQLite database
// at path for ad-hoc querying. Any previous export at that path is
// replaced. Unobserved years are stored as NULL.
func ExportSQLite(path string, authors []record.Author) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous export: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(authorsDDL); err != nil {
		return fmt.Errorf("creating authors table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO authors VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range authors {
		_, err := stmt.Exec(
			a.AuthorName,
			a.AuthorIDs,
			a.WorksCount,
			a.SpecificWorksCount,
			a.JournalsCount,
			a.CitedByCount,
			nullYear(a.MinYear),
			nullYear(a.MaxYear),
			a.Institutions,
			a.Countries,
			a.Affiliations,
		)
		if err != nil {
			return fmt.Errorf("inserting %q: %w", a.AuthorName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX idx_authors_works_count ON authors(works_count)`); err != nil {
		return fmt.Errorf("indexing authors: %w", err)
	}

	return nil
}

func nullYear(year int) any {
	if year == 0 {
		return nil
	}
	return year
}
