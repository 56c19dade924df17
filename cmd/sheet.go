package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivo-venezuela/archivero/internal/captions"
	"github.com/archivo-venezuela/archivero/internal/sheets"
	"github.com/spf13/cobra"
)

func newSheetCmd() *cobra.Command {
	var dataDir, credentialsFile, shareEmail string

	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Export post drafts to a new Google Sheet",
		Long: `Creates a monthly review spreadsheet from data/posts_draft.json and
optionally shares it. Requires a Google service-account credentials file
(GOOGLE_CREDENTIALS_FILE, default google_credentials.json).`,
		Example: `  archivero sheet
  archivero sheet --share reviewer@example.org`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if credentialsFile == "" {
				credentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
			}
			if credentialsFile == "" {
				credentialsFile = "google_credentials.json"
			}

			data, err := os.ReadFile(filepath.Join(dataDir, postsFile))
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no captions found, run captions first")
				}
				return fmt.Errorf("failed to read %s: %w", postsFile, err)
			}

			var posts []captions.Post
			if err := json.Unmarshal(data, &posts); err != nil {
				return fmt.Errorf("failed to parse %s: %w", postsFile, err)
			}
			if len(posts) == 0 {
				return fmt.Errorf("no posts to export")
			}

			exporter, err := sheets.NewExporter(cmd.Context(), credentialsFile)
			if err != nil {
				return err
			}

			id, url, err := exporter.CreateQueueSheet(cmd.Context(), posts)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d posts to %s\n", len(posts), url)

			if shareEmail != "" {
				if err := exporter.Share(cmd.Context(), id, shareEmail); err != nil {
					return err
				}
				fmt.Printf("Shared with %s\n", shareEmail)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "Service-account credentials file")
	cmd.Flags().StringVar(&shareEmail, "share", "", "Email address to share the sheet with (writer)")

	return cmd
}
