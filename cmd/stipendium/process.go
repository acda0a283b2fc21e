package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/processor"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one payroll batch: render and upload a slip per employee",
	RunE:  runProcess,
}

var (
	processSource string
	processFolder string
	processForce  bool
)

func init() {
	processCmd.Flags().StringVar(&processSource, "source", "", "Source spreadsheet file ID (overrides config)")
	processCmd.Flags().StringVar(&processFolder, "folder", "", "Destination Drive folder ID (overrides config)")
	processCmd.Flags().BoolVar(&processForce, "force", false, "Re-process employees that already have a slip")
}

func runProcess(cmd *cobra.Command, args []string) error {
	common.PrintBanner(common.GetVersion())

	sourceFileID := processSource
	if sourceFileID == "" {
		sourceFileID = config.Drive.SourceFileID
	}
	folderID := processFolder
	if folderID == "" {
		folderID = config.Drive.OutputFolderID
	}
	if sourceFileID == "" || folderID == "" {
		return fmt.Errorf("source file ID and output folder ID are required (set drive.source_file_id and drive.output_folder_id or pass --source/--folder)")
	}

	proc, closer, err := newProcessor()
	if err != nil {
		return err
	}
	defer closer()

	report, err := proc.Run(context.Background(), processor.Options{
		SourceFileID:   sourceFileID,
		OutputFolderID: folderID,
		ForceRecreate:  processForce || config.Processing.ForceRecreate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nSession %s completed in %s\n", report.SessionID, report.Duration.Round(100*time.Millisecond))
	fmt.Printf("  Source:    %s\n", report.SourceFileName)
	fmt.Printf("  Processed: %d\n", len(report.Processed))
	fmt.Printf("  Skipped:   %d\n", len(report.Skipped))
	fmt.Printf("  Failed:    %d\n", len(report.Failed))
	fmt.Printf("  Success:   %.1f%%\n", report.SuccessRate()*100)

	for _, f := range report.Failed {
		fmt.Printf("  FAILED %s (%s): %s\n", f.EmployeeID, f.EmployeeName, f.Error)
	}

	return nil
}
