package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/archivo-venezuela/archivero/internal/batch"
	"github.com/archivo-venezuela/archivero/internal/config"
	"github.com/archivo-venezuela/archivero/internal/omeka"
	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/spf13/cobra"
)

const itemsFile = "items_metadata.json"

func newPollCmd() *cobra.Command {
	var days, perPage int
	var dataDir, configPath string
	var store bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll recent Omeka items into the local dataset",
		Long: `Fetches Omeka items added in the last N days, with full detail and file
URLs, and writes them to data/items_metadata.json. When the date window
yields nothing the most recent page is returned unfiltered.`,
		Example: `  # Items added in the last 30 days
  archivero poll

  # Last week, smaller pages, also append to the batch collection
  archivero poll --days 7 --per-page 20 --store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.Omeka.Days
			}
			if perPage <= 0 {
				perPage = cfg.Omeka.PerPage
			}

			client := omeka.NewClient(cfg.Omeka.APIURL, os.Getenv("OMEKA_API_KEY"))

			slog.Info("Polling Omeka items", "days", days, "per_page", perPage)
			items, err := client.Poll(cmd.Context(), days, perPage)
			if err != nil {
				return fmt.Errorf("failed to poll items: %w", err)
			}

			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			if err := writeItemsJSON(filepath.Join(dataDir, itemsFile), items); err != nil {
				return err
			}

			if err := appendPollingLog(dataDir, len(items), days); err != nil {
				return err
			}

			if store {
				records := make([]record.Unified, 0, len(items))
				for _, item := range items {
					records = append(records, item.ToUnified())
				}
				if err := batch.NewStore(dataDir).Append(records, record.SourceOmeka); err != nil {
					return err
				}
			}

			fmt.Printf("Wrote %s with %d items\n", itemsFile, len(items))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "How many past days to include (default from config)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Items per listing page (default from config)")
	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&configPath, "config", "archivero.yaml", "Pipeline config file")
	cmd.Flags().BoolVar(&store, "store", false, "Also append the items to the batch collection")

	return cmd
}

func writeItemsJSON(path string, items []omeka.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write items file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	return nil
}

func appendPollingLog(dataDir string, count, days int) error {
	f, err := os.OpenFile(filepath.Join(dataDir, "polling_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open polling log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s - polled %d items (last %d days)\n", time.Now().UTC().Format(time.RFC3339), count, days)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append polling log: %w", err)
	}
	return nil
}
