package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reallyliri/attrib/internal/storage"
)

var checkInput string

func init() {
	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "Attribution CSV to check")
	_ = checkCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an attribution CSV without aggregating",
	Long: `Verify that the input has the required columns and report how many
rows would be aggregated, skipped or flagged. No output is written.

Examples:
  attrib check -i authors_works.csv
  attrib check -i authors_works.csv --human`,
	RunE: runCheck,
}

// CheckResult reports what an aggregation run would see in the input.
type CheckResult struct {
	Rows              int `json:"rows"`
	Valid             int `json:"valid"`
	MissingAuthorName int `json:"missing_author_name"`
	MissingWorkID     int `json:"missing_work_id"`
	Flagged           int `json:"flagged"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	f, err := os.Open(checkInput)
	if err != nil {
		exitWithError(ExitError, "opening input: %v", err)
	}
	defer f.Close()

	reader, err := storage.NewReader(bufio.NewReaderSize(f, 1<<20), nil)
	if err != nil {
		if errors.Is(err, storage.ErrMissingColumn) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "reading %s: %v", checkInput, err)
	}

	var result CheckResult
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", checkInput, err)
		}

		result.Rows++
		switch {
		case strings.TrimSpace(row.AuthorName) == "":
			result.MissingAuthorName++
		case strings.TrimSpace(row.WorkID) == "":
			result.MissingWorkID++
		default:
			result.Valid++
			if row.Flag {
				result.Flagged++
			}
		}
	}

	if humanOutput {
		outputHuman("%d rows: %d valid (%d flagged), %d missing author_name, %d missing work id\n",
			result.Rows, result.Valid, result.Flagged, result.MissingAuthorName, result.MissingWorkID)
		return nil
	}
	return outputJSON(result)
}
