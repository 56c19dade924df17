package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/archivo-venezuela/archivero/internal/batch"
	"github.com/archivo-venezuela/archivero/internal/config"
	"github.com/archivo-venezuela/archivero/internal/omeka"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var csvPath, dataDir, configPath string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish bilingual records to Omeka",
		Long: `Uploads each row of the bilingual Dublin Core CSV to Omeka as a new item.
Per-row failures are reported and do not stop the run. Requires
OMEKA_API_KEY in the environment.`,
		Example: `  archivero publish
  archivero publish --csv data/dublin_core_bilingual.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if csvPath == "" {
				csvPath = filepath.Join(dataDir, "dublin_core_bilingual.csv")
			}

			rows, err := batch.ReadBilingualCSV(csvPath)
			if err != nil {
				return err
			}

			publisher := omeka.NewPublisher(cfg.Omeka.APIURL, os.Getenv("OMEKA_API_KEY"))

			succeeded, failed := 0, 0
			for i, row := range rows {
				status, body := publisher.Publish(cmd.Context(), row)
				if status >= 200 && status < 300 {
					succeeded++
				} else {
					failed++
					slog.Warn("Publish failed", "row", i+2, "status", status, "response", body)
				}

				if i < len(rows)-1 {
					time.Sleep(300 * time.Millisecond)
				}
			}

			fmt.Printf("Published %d records, %d failed\n", succeeded, failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Bilingual CSV to publish (default data/dublin_core_bilingual.csv)")
	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&configPath, "config", "archivero.yaml", "Pipeline config file")

	return cmd
}
