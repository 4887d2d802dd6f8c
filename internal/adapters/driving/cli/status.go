package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the watermark and any in-flight checkpoints",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if deps.Status == nil {
		return errors.New("pipeline not configured")
	}

	ingestor, err := deps.Status()
	if err != nil {
		return err
	}

	status, err := ingestor.Status(cmd.Context())
	if err != nil {
		return err
	}

	if status.LastRun.IsZero() {
		cmd.Println("Last run: never")
	} else {
		cmd.Printf("Last run: %s\n", status.LastRun.Format(time.RFC3339))
	}

	if len(status.Checkpoints) == 0 {
		cmd.Println("No interrupted sweeps.")
		return nil
	}

	cmd.Println("Interrupted sweeps:")
	for _, cp := range status.Checkpoints {
		cmd.Printf("  %-20s partition %-6q cursor %-5d completed %d  saved %s\n",
			cp.SourceID, cp.Partition, cp.Cursor, len(cp.CompletedPartitions),
			cp.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
