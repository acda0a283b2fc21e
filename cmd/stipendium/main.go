package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
)

var (
	// Command-line flags
	configFiles []string

	// Global state shared by subcommands
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "stipendium",
	Short: "Payroll slip batch processor",
	Long: `Stipendium generates per-employee payroll PDF slips from a spreadsheet
stored in Google Drive, uploads the slips back to Drive, and tracks which
employees were already processed so reruns never duplicate work.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil,
		"Configuration file path (can be specified multiple times, later files override earlier ones)")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(versionCmd)
}

// initialize loads configuration and sets up the logger. Runs before every
// subcommand.
func initialize() error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("stipendium.toml"); err == nil {
			configFiles = append(configFiles, "stipendium.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger = common.InitLogger(config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("status_file", config.Storage.StatusFile).
		Str("environment", config.Environment).
		Msg("Configuration loaded")

	return nil
}

func main() {
	// A .version file next to the binary overrides the compiled-in version
	common.LoadVersionFromFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
