package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivo-venezuela/archivero/internal/captions"
	"github.com/archivo-venezuela/archivero/internal/config"
	"github.com/archivo-venezuela/archivero/internal/omeka"
	"github.com/archivo-venezuela/archivero/internal/translate"
	"github.com/spf13/cobra"
)

const postsFile = "posts_draft.json"

func newCaptionsCmd() *cobra.Command {
	var dataDir, configPath string

	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Generate bilingual social media captions for polled items",
		Long: `Generates English and Spanish caption drafts with hashtags for each item
in data/items_metadata.json and writes them to data/posts_draft.json for
review and sheet export.`,
		Example: `  archivero poll --days 30
  archivero captions
  archivero sheet --share reviewer@example.org`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(dataDir, itemsFile))
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no items found, run poll first")
				}
				return fmt.Errorf("failed to read %s: %w", itemsFile, err)
			}

			var items []omeka.Item
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("failed to parse %s: %w", itemsFile, err)
			}

			generator := captions.NewGenerator(translate.NewFromEnv(cfg.TranslationOverrides), nil)

			posts := make([]captions.Post, 0, len(items))
			for _, item := range items {
				posts = append(posts, generator.Generate(cmd.Context(), item))
			}

			out, err := os.Create(filepath.Join(dataDir, postsFile))
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", postsFile, err)
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(posts); err != nil {
				return fmt.Errorf("failed to encode posts: %w", err)
			}

			fmt.Printf("Wrote %s with %d posts\n", postsFile, len(posts))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&configPath, "config", "archivero.yaml", "Pipeline config file")

	return cmd
}
