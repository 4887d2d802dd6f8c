package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/statepulse/statepulse-ingest/internal/sources/whitehouse"
)

var (
	ordersCutoff   string
	ordersMaxPages int
	ordersBackfill bool
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Sweep federal executive orders only",
	Long: `Sweeps the executive-order listing, newest first, stopping at the
cutoff date (the watermark minus a publication buffer by default). The
global watermark is untouched.

--backfill sweeps the whole listing with a deep page cap and no cutoff.`,
	RunE: runOrders,
}

func init() {
	ordersCmd.Flags().StringVar(&ordersCutoff, "cutoff", "",
		"only ingest orders signed on or after this date (YYYY-MM-DD)")
	ordersCmd.Flags().IntVar(&ordersMaxPages, "max-pages", 0,
		"cap on listing pages per run (0 uses the default)")
	ordersCmd.Flags().BoolVar(&ordersBackfill, "backfill", false,
		"sweep the whole listing, ignoring the cutoff")
	rootCmd.AddCommand(ordersCmd)
}

func runOrders(cmd *cobra.Command, _ []string) error {
	if deps.Orders == nil {
		return errors.New("pipeline not configured")
	}

	var cutoff time.Time
	if ordersCutoff != "" {
		parsed, err := time.Parse("2006-01-02", ordersCutoff)
		if err != nil {
			return fmt.Errorf("invalid --cutoff %q: expected YYYY-MM-DD", ordersCutoff)
		}
		cutoff = parsed
	}

	maxPages := ordersMaxPages
	if ordersBackfill && maxPages == 0 {
		maxPages = whitehouse.BackfillMaxPages
	}

	ingestor, err := deps.Orders(cutoff, maxPages)
	if err != nil {
		return err
	}

	run := ingestor.RunOnce
	if ordersBackfill {
		run = ingestor.Backfill
	}

	result, err := run(cmd.Context())
	if err != nil {
		return err
	}

	printRunResult(cmd, result)
	return nil
}
