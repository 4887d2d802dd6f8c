package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored record",
	Long: `Looks a record up by its stored ID, legislation or executive order,
and prints it in the common display shape.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if deps.Lookup == nil {
		return errors.New("pipeline not configured")
	}

	record, err := deps.Lookup(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errors.New("no record with id " + args[0])
		}
		return err
	}

	cmd.Printf("%s (%s)\n", record.Title, record.Kind)
	if record.Identifier != "" {
		cmd.Printf("  Identifier:   %s\n", record.Identifier)
	}
	cmd.Printf("  Jurisdiction: %s\n", record.Jurisdiction)
	if record.StatusText != "" {
		cmd.Printf("  Status:       %s\n", record.StatusText)
	}
	if record.Date != nil {
		cmd.Printf("  Date:         %s\n", record.Date.Format("2006-01-02"))
	}
	if len(record.Topics) > 0 {
		cmd.Printf("  Topics:       %s\n", strings.Join(record.Topics, ", "))
	}
	if record.Summary != "" {
		cmd.Printf("  Summary:      %s\n", record.Summary)
	}
	if record.SourceURL != "" {
		cmd.Printf("  Source:       %s\n", record.SourceURL)
	}
	return nil
}
