package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/archivo-venezuela/archivero/internal/batch"
	"github.com/archivo-venezuela/archivero/internal/oembed"
	"github.com/archivo-venezuela/archivero/internal/omdb"
	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/archivo-venezuela/archivero/internal/worldcat"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var dataDir string
	var dedupe bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch metadata from an external source into the batch collection",
		Long: `Fetches metadata from one source, normalizes it into the unified record
schema, and appends the batch to data/raw_metadata.json with a provenance
log entry.`,
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data", "data", "Data directory for the batch collection")
	cmd.PersistentFlags().BoolVar(&dedupe, "dedupe", false, "Replace existing records sharing (source, id) instead of appending duplicates")

	cmd.AddCommand(newFetchWorldCatCmd(&dataDir, &dedupe))
	cmd.AddCommand(newFetchOEmbedCmd(&dataDir, &dedupe, "youtube", oembed.YouTube, "https://www.youtube.com/watch?v=..."))
	cmd.AddCommand(newFetchOEmbedCmd(&dataDir, &dedupe, "spotify", oembed.Spotify, "https://open.spotify.com/track/..."))
	cmd.AddCommand(newFetchOMDbCmd(&dataDir, &dedupe))

	return cmd
}

func newFetchWorldCatCmd(dataDir *string, dedupe *bool) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "worldcat",
		Short: "Fetch WorldCat records for a CSV of OCLC numbers",
		Long: `Fetches bibliographic records from the WorldCat Search API for each OCLC
number in the CSV. Requires WS_KEY and WS_SECRET in the environment.`,
		Example: `  archivero fetch worldcat --csv oclc_numbers.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("WS_KEY")
			secret := os.Getenv("WS_SECRET")
			if key == "" || secret == "" {
				return fmt.Errorf("WS_KEY / WS_SECRET missing in the environment")
			}

			numbers, err := worldcat.ReadNumbersCSV(csvPath)
			if err != nil {
				return err
			}

			client := worldcat.NewClient(worldcat.NewTokenCache(key, secret))
			records, failed, err := client.FetchBatch(cmd.Context(), numbers)
			if err != nil {
				return fmt.Errorf("WorldCat batch aborted: %w", err)
			}

			if len(failed) > 0 {
				slog.Warn("Some OCLC numbers failed", "failed", strings.Join(failed, ", "))
			}

			return saveBatch(*dataDir, *dedupe, records, record.SourceWorldCat, len(failed))
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV with an oclc / oclc_number / 'OCLC Number' column (required)")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func newFetchOEmbedCmd(dataDir *string, dedupe *bool, name string, provider oembed.Provider, placeholder string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [urls...]",
		Short: fmt.Sprintf("Fetch %s metadata via oEmbed (no API key)", name),
		Example: fmt.Sprintf(`  archivero fetch %s %s
  archivero fetch %s --file urls.txt`, name, placeholder, name),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				fromFile, err := readLines(file)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs given")
			}

			client := oembed.NewClient(provider)
			records, failed := client.FetchBatch(cmd.Context(), urls)
			return saveBatch(*dataDir, *dedupe, records, provider.Source, len(failed))
		},
	}

	cmd.Flags().String("file", "", "File with one URL per line")

	return cmd
}

func newFetchOMDbCmd(dataDir *string, dedupe *bool) *cobra.Command {
	var title, year, imdbID, csvPath string

	cmd := &cobra.Command{
		Use:   "omdb",
		Short: "Fetch film metadata from OMDb by title, IMDb id, or CSV",
		Long:  `Fetches film metadata from OMDb. Requires OMDB_API_KEY in the environment.`,
		Example: `  archivero fetch omdb --title Parasite --year 2019
  archivero fetch omdb --id tt6751668
  archivero fetch omdb --csv films.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := os.Getenv("OMDB_API_KEY")
			if apiKey == "" {
				return fmt.Errorf("OMDB_API_KEY missing in the environment")
			}
			client := omdb.NewClient(apiKey)

			switch {
			case csvPath != "":
				records, failedCount, err := fetchOMDbCSV(cmd.Context(), client, csvPath)
				if err != nil {
					return err
				}
				return saveBatch(*dataDir, *dedupe, records, record.SourceOMDb, failedCount)
			case imdbID != "":
				rec, err := client.FetchByID(cmd.Context(), imdbID)
				if err != nil {
					return err
				}
				return saveBatch(*dataDir, *dedupe, []record.Unified{rec}, record.SourceOMDb, 0)
			case title != "":
				rec, err := client.FetchByTitle(cmd.Context(), title, year)
				if err != nil {
					return err
				}
				return saveBatch(*dataDir, *dedupe, []record.Unified{rec}, record.SourceOMDb, 0)
			default:
				return fmt.Errorf("one of --title, --id, or --csv is required")
			}
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Film title")
	cmd.Flags().StringVar(&year, "year", "", "Optional release year, used with --title")
	cmd.Flags().StringVar(&imdbID, "id", "", "IMDb identifier")
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV with a title or imdb_id column")

	return cmd
}

// fetchOMDbCSV batch-fetches rows of a CSV holding a title or imdb_id
// column. Per-row failures are skipped and counted.
func fetchOMDbCSV(ctx context.Context, client *omdb.Client, path string) ([]record.Unified, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("CSV %s is empty", path)
	}

	titleCol, idCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			titleCol = i
		case "imdb_id":
			idCol = i
		}
	}
	if titleCol < 0 && idCol < 0 {
		return nil, 0, fmt.Errorf("CSV must contain a title or imdb_id column")
	}

	var records []record.Unified
	failed := 0
	for i, row := range rows[1:] {
		var rec record.Unified
		var err error
		if idCol >= 0 && idCol < len(row) && strings.TrimSpace(row[idCol]) != "" {
			rec, err = client.FetchByID(ctx, strings.TrimSpace(row[idCol]))
		} else if titleCol >= 0 && titleCol < len(row) && strings.TrimSpace(row[titleCol]) != "" {
			rec, err = client.FetchByTitle(ctx, strings.TrimSpace(row[titleCol]), "")
		} else {
			continue
		}

		if err != nil {
			slog.Warn("OMDb lookup failed", "row", i+2, "err", err)
			failed++
		} else {
			records = append(records, rec)
		}

		time.Sleep(300 * time.Millisecond)
	}

	return records, failed, nil
}

// saveBatch appends records to the batch store and prints the tally.
func saveBatch(dataDir string, dedupe bool, records []record.Unified, source string, failedCount int) error {
	store := batch.NewStore(dataDir)

	var err error
	if dedupe {
		err = store.AppendDeduped(records, source)
	} else {
		err = store.Append(records, source)
	}
	if err != nil {
		return err
	}

	slog.Info("Saved batch", "source", source, "records", len(records), "failed", failedCount)
	fmt.Printf("Saved %d records from %s (%d failed)\n", len(records), source, failedCount)
	return nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
