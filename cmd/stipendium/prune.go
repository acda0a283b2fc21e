package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions older than the retention window",
	Long: `Deletes every session whose start time is older than the cutoff.
Employee records are never touched by pruning.`,
	RunE: runPrune,
}

var pruneDays int

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Retention window in days (defaults to processing.session_retention_days)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	days := pruneDays
	if days <= 0 {
		days = config.Processing.SessionRetentionDays
	}

	_, sessions, _ := newTracker()

	removed, err := sessions.PruneOlderThan(days)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d session(s) older than %d days\n", removed, days)
	return nil
}
