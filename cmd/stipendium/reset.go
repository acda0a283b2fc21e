package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <employee-id>",
	Short: "Clear an employee's processed record so the next run re-creates their slip",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	employeeID := args[0]
	store, _, gate := newTracker()

	existed := store.GetEmployee(employeeID) != nil
	if err := gate.Reset(employeeID); err != nil {
		return err
	}

	if existed {
		fmt.Printf("Record for employee %s cleared\n", employeeID)
	} else {
		fmt.Printf("No record for employee %s, nothing to clear\n", employeeID)
	}
	return nil
}
