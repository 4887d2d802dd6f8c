package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statepulse/statepulse-ingest/internal/sources/congress"
)

var (
	backfillCongress int
	backfillStart    int
	backfillEnd      int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill historical federal bills",
	Long: `Walks whole congressional sessions and admits every bill that passes
the broader historical relevance filter. The walk checkpoints by
session and offset; re-running resumes where the last invocation
stopped. The global watermark is untouched.

By default the walk covers the last four congresses, newest first.
--congress restricts it to one session; --start/--end to a range.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().IntVar(&backfillCongress, "congress", 0,
		"backfill a single congress (e.g. 118)")
	backfillCmd.Flags().IntVar(&backfillStart, "start", 0,
		"first congress of a range to backfill")
	backfillCmd.Flags().IntVar(&backfillEnd, "end", 0,
		"last congress of a range (defaults to the current congress)")
	rootCmd.AddCommand(backfillCmd)
}

// backfillSessions resolves the flag combination into a newest-first
// session list; nil means the default walk.
func backfillSessions() ([]int, error) {
	if backfillCongress > 0 {
		if backfillStart > 0 || backfillEnd > 0 {
			return nil, errors.New("--congress cannot be combined with --start/--end")
		}
		return []int{backfillCongress}, nil
	}
	if backfillStart == 0 && backfillEnd == 0 {
		return nil, nil
	}
	if backfillStart == 0 {
		return nil, errors.New("--end requires --start")
	}

	end := backfillEnd
	if end == 0 {
		end = congress.CurrentCongress
	}
	if end < backfillStart {
		return nil, fmt.Errorf("--end %d is before --start %d", end, backfillStart)
	}

	sessions := make([]int, 0, end-backfillStart+1)
	for session := end; session >= backfillStart; session-- {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	if deps.Backfill == nil {
		return errors.New("pipeline not configured")
	}

	sessions, err := backfillSessions()
	if err != nil {
		return err
	}

	ingestor, err := deps.Backfill(sessions)
	if err != nil {
		return err
	}

	result, err := ingestor.Backfill(cmd.Context())
	if err != nil {
		return err
	}

	printRunResult(cmd, result)
	return nil
}
