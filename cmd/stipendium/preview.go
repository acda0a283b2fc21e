package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Validate the source file and show its first rows without processing",
	RunE:  runPreview,
}

var (
	previewSource string
	previewRows   int
)

func init() {
	previewCmd.Flags().StringVar(&previewSource, "source", "", "Source spreadsheet file ID (overrides config)")
	previewCmd.Flags().IntVar(&previewRows, "rows", 5, "Number of rows to show")
}

func runPreview(cmd *cobra.Command, args []string) error {
	sourceFileID := previewSource
	if sourceFileID == "" {
		sourceFileID = config.Drive.SourceFileID
	}
	if sourceFileID == "" {
		return fmt.Errorf("source file ID is required (set drive.source_file_id or pass --source)")
	}

	proc, closer, err := newProcessor()
	if err != nil {
		return err
	}
	defer closer()

	preview, err := proc.Preview(context.Background(), sourceFileID, previewRows)
	if err != nil {
		return err
	}

	fmt.Printf("Source file: %s\n", preview.OriginalName)
	if !preview.Validation.Valid {
		fmt.Printf("Validation FAILED: %s\n", preview.Validation.Error)
		if len(preview.Validation.MissingColumns) > 0 {
			fmt.Printf("  Missing columns: %v\n", preview.Validation.MissingColumns)
		}
		return nil
	}

	fmt.Printf("Validation OK: %d rows, %d with employee id\n\n",
		preview.Validation.TotalRows, preview.Validation.RowsWithID)

	for i, row := range preview.Rows {
		fmt.Printf("Row %d:\n", i+1)
		for _, col := range preview.Columns {
			if value := row[col]; value != "" {
				fmt.Printf("  %-22s %s\n", col+":", value)
			}
		}
	}

	return nil
}
