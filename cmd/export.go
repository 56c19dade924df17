package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/archivo-venezuela/archivero/internal/batch"
	"github.com/archivo-venezuela/archivero/internal/record"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var dataDir, csvPath, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the bilingual dataset to Parquet",
		Long: `Converts the bilingual Dublin Core CSV into a Parquet file for analysis
tooling that prefers columnar data.`,
		Example: `  archivero export
  archivero export --out dataset.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvPath == "" {
				csvPath = filepath.Join(dataDir, "dublin_core_bilingual.csv")
			}
			if outPath == "" {
				outPath = filepath.Join(dataDir, "dublin_core_bilingual.parquet")
			}

			rows, err := batch.ReadBilingualCSV(csvPath)
			if err != nil {
				return err
			}

			records := make([]record.Bilingual, 0, len(rows))
			for _, row := range rows {
				records = append(records, batch.RowToBilingual(row))
			}

			if err := batch.WriteBilingualParquet(outPath, records); err != nil {
				return err
			}

			fmt.Printf("Exported %d records to %s\n", len(records), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "data", "Data directory")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Bilingual CSV to export (default data/dublin_core_bilingual.csv)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output Parquet path")

	return cmd
}
