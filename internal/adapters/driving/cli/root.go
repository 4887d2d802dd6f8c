// Package cli implements the cobra command tree that drives the
// ingestion pipeline.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driving"
	"github.com/statepulse/statepulse-ingest/internal/logger"
)

var version = "0.3.0"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "statepulse",
	Short: "Ingest AI-policy legislation from government sources",
	Long: `statepulse sweeps state legislatures, Congress and the federal
executive-order listing for measures about artificial intelligence, and
upserts them into the document store the dashboard reads.

Runs are incremental: each sweep covers records updated since the last
run's watermark, and an interrupted sweep resumes from its checkpoint.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable per-record debug logging")
}

// Dependencies carries the factories the commands build their ingestors
// from. main wires them against the real stores; tests stub them.
type Dependencies struct {
	// Daily builds the full pipeline. A non-zero fromDate pins the
	// sweep window instead of the watermark.
	Daily func(fromDate time.Time) (driving.Ingestor, error)

	// States builds a state-legislation-only ingestor over the given
	// state codes (all fifty when empty). startFrom resumes the
	// alphabetical sweep at that state, ignoring any saved checkpoint.
	States func(targets []string, startFrom string) (driving.Ingestor, error)

	// Congress builds a federal-bills-only ingestor for the current
	// congress. A non-zero fromDate pins the sweep window.
	Congress func(fromDate time.Time) (driving.Ingestor, error)

	// Backfill builds the historical federal ingestor for the given
	// sessions; nil means the default session walk.
	Backfill func(sessions []int) (driving.Ingestor, error)

	// Orders builds an executive-orders-only ingestor. cutoff bounds a
	// scoped sweep; maxPages zero means the adapter default.
	Orders func(cutoff time.Time, maxPages int) (driving.Ingestor, error)

	// Status builds the read-only pipeline view.
	Status func() (driving.Ingestor, error)

	// Lookup fetches one stored record, legislation or executive order,
	// mapped to the common display shape.
	Lookup func(ctx context.Context, id string) (*domain.DisplayRecord, error)
}

var deps Dependencies

// Configure installs the wired dependencies.
func Configure(d Dependencies) {
	deps = d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printRunResult summarises a run per source. Partial failures are
// reported here but do not fail the command; the next scheduled run
// retries them over its extended window.
func printRunResult(cmd *cobra.Command, result *domain.RunResult) {
	for _, src := range result.Sources {
		cmd.Printf("%-18s %-22s processed %-6d updated %-6d inserted %-6d errors %d\n",
			src.SourceID, src.Outcome, src.Processed, src.Updated, src.Inserted, len(src.Errors))
		for _, err := range src.Errors {
			cmd.Printf("    %v\n", err)
		}
	}
	cmd.Printf("Run %s finished in %s\n",
		result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
}
