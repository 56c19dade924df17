package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/archivo-venezuela/archivero/internal/batch"
	"github.com/archivo-venezuela/archivero/internal/config"
	"github.com/archivo-venezuela/archivero/internal/dublincore"
	"github.com/archivo-venezuela/archivero/internal/enrich"
	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/archivo-venezuela/archivero/internal/translate"
	"github.com/spf13/cobra"
)

func newMapCmd() *cobra.Command {
	var dataDir, configPath string
	var enrichSubjects bool

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map the aggregated records to bilingual Dublin Core",
		Long: `Converts the aggregated collection into bilingual (English + Spanish)
Dublin Core records, validates completeness, and writes two files:

  dublin_core_bilingual.csv  is the main dataset
  metadata_issues.csv        lists incomplete records for review`,
		Example: `  archivero map

  # Also derive translated subject phrases from titles and descriptions
  archivero map --enrich`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			items, err := loadItemsForMapping(dataDir)
			if err != nil {
				return err
			}
			slog.Info("Loaded records for mapping", "count", len(items))

			translator := translate.NewFromEnv(cfg.TranslationOverrides)

			mapped := make([]record.Bilingual, 0, len(items))
			for _, item := range items {
				mapped = append(mapped, dublincore.Map(cmd.Context(), item, translator))
			}

			dcPath := filepath.Join(dataDir, "dublin_core_bilingual.csv")
			if err := batch.WriteBilingualCSV(dcPath, mapped); err != nil {
				return err
			}
			issuesPath := filepath.Join(dataDir, "metadata_issues.csv")
			if err := batch.WriteIssuesCSV(issuesPath, mapped); err != nil {
				return err
			}

			incomplete := 0
			for _, b := range mapped {
				if !b.Complete() {
					incomplete++
				}
			}
			fmt.Printf("Mapped %d records, %d incomplete entries flagged\n", len(mapped), incomplete)

			if enrichSubjects {
				subjects := enrich.Records(cmd.Context(), mapped, translator)
				subjectsPath := filepath.Join(dataDir, "semantic_subjects.csv")
				if err := enrich.WriteCSV(subjectsPath, subjects); err != nil {
					return err
				}
				fmt.Printf("Wrote subject enrichment for %d records\n", len(subjects))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&configPath, "config", "archivero.yaml", "Pipeline config file")
	cmd.Flags().BoolVar(&enrichSubjects, "enrich", false, "Derive bilingual subject phrases with the keyword extractor")

	return cmd
}

// loadItemsForMapping loads the aggregated collection, falling back to the
// polled items file when no aggregation has run yet.
func loadItemsForMapping(dataDir string) ([]map[string]any, error) {
	store := batch.NewStore(dataDir)
	items, err := store.LoadItems()
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	data, err := os.ReadFile(filepath.Join(dataDir, itemsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no metadata found, run fetch or poll first")
		}
		return nil, fmt.Errorf("failed to read %s: %w", itemsFile, err)
	}

	var polled []map[string]any
	if err := json.Unmarshal(data, &polled); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", itemsFile, err)
	}
	return polled, nil
}
