package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/reallyliri/attrib/internal/record"
	"github.com/reallyliri/attrib/internal/storage"
)

var (
	statsInput string
	statsTopN  int
)

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "Aggregated CSV to summarize")
	statsCmd.Flags().IntVar(&statsTopN, "top", 10, "Number of top authors to list")
	_ = statsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a previously aggregated author table",
	Long: `Read an aggregated CSV produced by "attrib aggregate" and print
corpus-level totals plus the most prolific authors.

Examples:
  attrib stats -i authors_works_aggregated.csv
  attrib stats -i aggregated.csv --top 25 --human`,
	RunE: runStats,
}

// TopAuthor is one entry in the most-prolific-authors list.
type TopAuthor struct {
	AuthorName   string `json:"author_name"`
	WorksCount   int    `json:"works_count"`
	FlaggedCount int    `json:"specific_works_count"`
}

// StatsResult summarizes an aggregated author table.
type StatsResult struct {
	Authors        int         `json:"authors"`
	TotalWorks     int         `json:"total_works"`
	FlaggedWorks   int         `json:"flagged_works"`
	TotalCitations int         `json:"total_citations"`
	MinYear        int         `json:"min_year,omitempty"`
	MaxYear        int         `json:"max_year,omitempty"`
	Top            []TopAuthor `json:"top_authors"`
}

func runStats(cmd *cobra.Command, args []string) error {
	authors, err := storage.ReadAuthors(statsInput)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := computeStats(authors, statsTopN)

	if humanOutput {
		outputHuman("%d authors, %d works (%d flagged), %d citations\n",
			result.Authors, result.TotalWorks, result.FlaggedWorks, result.TotalCitations)
		if result.MinYear != 0 {
			outputHuman("Years: %d-%d\n", result.MinYear, result.MaxYear)
		}
		for i, top := range result.Top {
			outputHuman("%2d. %s (%d works, %d flagged)\n", i+1, top.AuthorName, top.WorksCount, top.FlaggedCount)
		}
		return nil
	}
	return outputJSON(result)
}

// computeStats folds the author table into corpus-level totals. Work
// counts are summed per author group; authors resolved to different
// groups are never conflated here.
func computeStats(authors []record.Author, topN int) StatsResult {
	result := StatsResult{Top: []TopAuthor{}}
	result.Authors = len(authors)

	for _, a := range authors {
		result.TotalWorks += a.WorksCount
		result.FlaggedWorks += a.SpecificWorksCount
		result.TotalCitations += a.CitedByCount
		if a.MinYear != 0 && (result.MinYear == 0 || a.MinYear < result.MinYear) {
			result.MinYear = a.MinYear
		}
		if a.MaxYear > result.MaxYear {
			result.MaxYear = a.MaxYear
		}
	}

	ranked := make([]record.Author, len(authors))
	copy(ranked, authors)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].WorksCount != ranked[j].WorksCount {
			return ranked[i].WorksCount > ranked[j].WorksCount
		}
		return ranked[i].AuthorName < ranked[j].AuthorName
	})
	if topN < 0 {
		topN = 0
	}
	if topN > len(ranked) {
		topN = len(ranked)
	}
	for _, a := range ranked[:topN] {
		result.Top = append(result.Top, TopAuthor{
			AuthorName:   a.AuthorName,
			WorksCount:   a.WorksCount,
			FlaggedCount: a.SpecificWorksCount,
		})
	}

	return result
}
