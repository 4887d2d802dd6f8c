package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var congressFromDate string

var congressCmd = &cobra.Command{
	Use:   "congress",
	Short: "Sweep federal bills only",
	Long: `Sweeps recently updated bills in the current congress, leaving every
other source and the global watermark alone. For historical sessions
use backfill instead.`,
	RunE: runCongress,
}

func init() {
	congressCmd.Flags().StringVar(&congressFromDate, "from-date", "",
		"sweep records updated since this date (YYYY-MM-DD) instead of the watermark")
	rootCmd.AddCommand(congressCmd)
}

func runCongress(cmd *cobra.Command, _ []string) error {
	if deps.Congress == nil {
		return errors.New("pipeline not configured")
	}

	var fromDate time.Time
	if congressFromDate != "" {
		parsed, err := time.Parse("2006-01-02", congressFromDate)
		if err != nil {
			return fmt.Errorf("invalid --from-date %q: expected YYYY-MM-DD", congressFromDate)
		}
		fromDate = parsed
	}

	ingestor, err := deps.Congress(fromDate)
	if err != nil {
		return err
	}

	result, err := ingestor.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	printRunResult(cmd, result)
	return nil
}
