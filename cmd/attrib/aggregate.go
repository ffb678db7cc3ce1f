package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reallyliri/attrib/internal/config"
	"github.com/reallyliri/attrib/internal/pipeline"
)

var (
	aggregateInput         string
	aggregateOutput        string
	aggregateDB            string
	aggregateConfigPath    string
	aggregateQueueSize     int
	aggregateProgressEvery int
)

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateInput, "input", "i", "", "Attribution CSV to read")
	aggregateCmd.Flags().StringVarP(&aggregateOutput, "output", "o", "", "Aggregated CSV to write")
	aggregateCmd.Flags().StringVar(&aggregateDB, "db", "", "Also export the aggregated table to a SQLite database")
	aggregateCmd.Flags().StringVar(&aggregateConfigPath, "config", "", "YAML config file")
	aggregateCmd.Flags().IntVar(&aggregateQueueSize, "queue-size", 0, "Bounded row queue capacity")
	aggregateCmd.Flags().IntVar(&aggregateProgressEvery, "progress-every", 0, "Rows between progress reports (0 disables)")
	rootCmd.AddCommand(aggregateCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Resolve author identities and aggregate the attribution stream",
	Long: `Run one full aggregation pass: resolve each row to an identity group,
merge its fields, then filter, canonicalize and write the per-author table.

Authors with no flagged work are dropped from the output. The output file
is written atomically; an interrupted run leaves nothing behind.

Examples:
  attrib aggregate -i authors_works.csv -o authors_works_aggregated.csv
  attrib aggregate -i authors_works.csv -o aggregated.csv --db authors.db
  attrib aggregate --config run.yml --progress-every 50000`,
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	// Pick up ATTRIB_* variables from a .env file if one is present.
	_ = godotenv.Load()

	cfg := config.Default()
	if aggregateConfigPath != "" {
		loaded, err := config.Load(aggregateConfigPath)
		if err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if cmd.Flags().Changed("input") {
		cfg.Input = aggregateInput
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = aggregateOutput
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = aggregateDB
	}
	if cmd.Flags().Changed("queue-size") {
		cfg.QueueSize = aggregateQueueSize
	}
	if cmd.Flags().Changed("progress-every") {
		cfg.ProgressEvery = aggregateProgressEvery
	}

	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx, cfg, newLogger())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			exitWithError(ExitError, "aggregation cancelled, no output written")
		}
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Processed %d rows (%d skipped)\n", summary.RowsRead, summary.RowsSkipped)
		outputHuman("Formed %d author groups, filtered %d with no flagged work\n", summary.Groups, summary.GroupsFiltered)
		outputHuman("Wrote %d authors to %s in %s\n", summary.AuthorsEmitted, cfg.Output, summary.Elapsed)
		return nil
	}
	return outputJSON(summary)
}
