package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [employee-id]",
	Short: "Show the processing summary, or one employee's record",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var (
	statusJSON      bool
	statusProcessed bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print raw JSON")
	statusCmd.Flags().BoolVar(&statusProcessed, "processed", false, "List every employee currently marked processed")
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, _, _ := newTracker()

	if len(args) == 1 {
		record := store.EmployeeHistory(args[0])
		if record == nil {
			fmt.Printf("No record for employee %s\n", args[0])
			return nil
		}
		return printJSON(record)
	}

	if statusProcessed {
		records := store.AllProcessedEmployees()
		if statusJSON {
			return printJSON(records)
		}
		for _, r := range records {
			fmt.Printf("%s  %-30s  %s\n", r.EmployeeID, r.EmployeeName, r.ProcessedAt)
		}
		fmt.Printf("%d employee(s) processed\n", len(records))
		return nil
	}

	summary := store.Summary()
	if statusJSON {
		return printJSON(summary)
	}

	fmt.Printf("Employees tracked:   %d\n", summary.TotalEmployeesEverProcessed)
	fmt.Printf("Processed:           %d\n", summary.SuccessfullyProcessed)
	fmt.Printf("Failed:              %d\n", summary.FailedProcessing)
	fmt.Printf("Total sessions:      %d\n", summary.TotalSessions)

	if len(summary.RecentSessions) > 0 {
		fmt.Println("\nRecent sessions:")
		for _, s := range summary.RecentSessions {
			fmt.Printf("  %s  %-12s  %s  processed=%d failed=%d\n",
				s.StartedAt, s.Status, s.ID, s.ProcessedCount, s.FailedCount)
		}
	}

	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
