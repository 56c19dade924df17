package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archivero",
		Short: "Cross-source metadata aggregation and bilingual enrichment pipeline",
		Long: `Archivero aggregates bibliographic and media metadata from WorldCat, OMDb,
YouTube, Spotify, and Omeka into one unified schema, enriches it with
machine-translated Spanish fields and keyword-derived subjects, and
republishes the result to Omeka and Google Sheets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newPollCmd())
	cmd.AddCommand(newMapCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newCaptionsCmd())
	cmd.AddCommand(newSheetCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
