package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/archivo-venezuela/archivero/internal/checker"
	"github.com/archivo-venezuela/archivero/internal/config"
	"github.com/archivo-venezuela/archivero/internal/omeka"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var limit int
	var dataDir, configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit recent Omeka records for metadata problems",
		Long: `Checks the most recent Omeka items for missing metadata fields, broken
or missing images, and invalid URLs, and writes a report CSV.`,
		Example: `  archivero check --limit 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			client := omeka.NewClient(cfg.Omeka.APIURL, os.Getenv("OMEKA_API_KEY"))

			results, err := checker.New(client).Run(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			reportPath := filepath.Join(dataDir, "metadata_checker_report.csv")
			if err := checker.WriteCSV(reportPath, results); err != nil {
				return err
			}

			complete := 0
			for _, r := range results {
				if strings.HasPrefix(r.Overall, "Complete") {
					complete++
				}
			}
			fmt.Printf("Checked %d items: %d complete, %d incomplete\n", len(results), complete, len(results)-complete)
			fmt.Printf("Report written to %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent items to check")
	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&configPath, "config", "archivero.yaml", "Pipeline config file")

	return cmd
}
