package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/wordquiz/internal/excel"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import words from an .xlsx or .csv file (columns: origin, target, topic)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to open import file")
		}
		defer f.Close()

		importCfg := excel.DefaultImportConfig()
		importCfg.SheetName, _ = cmd.Flags().GetString("sheet")
		if startRow, _ := cmd.Flags().GetInt("start-row"); startRow > 0 {
			importCfg.StartRow = startRow
		}

		result, err := excel.NewImporter(db, logger).ImportWords(cmd.Context(), f, excel.FormatFromFilename(filepath.Base(args[0])), importCfg)
		if err != nil {
			return err
		}

		fmt.Printf("Processed: %d\nTopics created: %d\nWords created: %d\nLinked: %d\nSkipped: %d\n",
			result.TotalProcessed, result.TopicsCreated, result.Created, result.Linked, result.Skipped)
		for _, e := range result.Errors {
			fmt.Println("  " + e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "Worksheet to read (first sheet by default)")
	importCmd.Flags().Int("start-row", 0, "First row with data, 1-based (default 2, skipping the header)")
}
