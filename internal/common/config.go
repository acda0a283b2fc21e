package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration so TOML string values like "30s" decode;
// go-toml only maps TOML integers onto a bare time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the wrapped time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Drive       DriveConfig      `toml:"drive"`
	Processing  ProcessingConfig `toml:"processing"`
	Report      ReportConfig     `toml:"report"`
	PDF         PDFConfig        `toml:"pdf"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
}

// DriveConfig contains Google Drive API configuration
type DriveConfig struct {
	CredentialsFile string   `toml:"credentials_file" validate:"required"` // Service account JSON key file
	SourceFileID    string   `toml:"source_file_id"`                       // Default source spreadsheet file ID
	OutputFolderID  string   `toml:"output_folder_id"`                     // Default Drive folder ID for generated slips
	RateLimit       Duration `toml:"rate_limit"`                           // Minimum time between Drive API requests
	RequestTimeout  Duration `toml:"request_timeout"`                      // HTTP request timeout
}

// ProcessingConfig contains batch processing behavior
type ProcessingConfig struct {
	ForceRecreate        bool `toml:"force_recreate"`         // Reprocess employees already marked processed
	SessionRetentionDays int  `toml:"session_retention_days"` // Sessions older than this are eligible for prune
}

// ReportConfig controls CSV run report generation
type ReportConfig struct {
	Enabled     bool   `toml:"enabled"`       // Generate and upload a CSV report after each run
	CSVFolderID string `toml:"csv_folder_id"` // Drive folder for CSV reports (falls back to output folder)
}

// PDFConfig contains payroll slip rendering settings
type PDFConfig struct {
	CompanyName     string `toml:"company_name"`     // Printed in the base-for-calculation block
	LocalCurrency   string `toml:"local_currency"`   // Label for local-currency amounts
	SLADescriptions string `toml:"sla_descriptions"` // YAML file with SLA methodology text keyed by SLA id
}

// StorageConfig contains status file and artifact archive paths
type StorageConfig struct {
	StatusFile string       `toml:"status_file" validate:"required"` // JSON processing status document
	TempDir    string       `toml:"temp_dir"`                        // Scratch directory ("" uses os.TempDir)
	Badger     BadgerConfig `toml:"badger"`
}

// BadgerConfig represents the artifact archive database configuration
type BadgerConfig struct {
	Path     string `toml:"path"`      // Database directory path ("" disables the archive)
	InMemory bool   `toml:"in_memory"` // In-memory mode for tests
}

// LoggingConfig controls arbor logger setup
type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in stipendium.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Drive: DriveConfig{
			CredentialsFile: "credentials.json",
			RateLimit:       Duration(1 * time.Second), // respects Drive API quotas
			RequestTimeout:  Duration(30 * time.Second),
		},
		Processing: ProcessingConfig{
			ForceRecreate:        false,
			SessionRetentionDays: 30,
		},
		Report: ReportConfig{
			Enabled: true,
		},
		PDF: PDFConfig{
			CompanyName:   "Company",
			LocalCurrency: "RUB",
		},
		Storage: StorageConfig{
			StatusFile: "processing_status.json",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// The in-memory archive loses its audit records on exit
	if config.IsProduction() && config.Storage.Badger.InMemory {
		return nil, fmt.Errorf("invalid configuration: in-memory artifact archive cannot be used in production")
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STIPENDIUM_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Drive configuration
	if creds := os.Getenv("STIPENDIUM_DRIVE_CREDENTIALS_FILE"); creds != "" {
		config.Drive.CredentialsFile = creds
	}
	if fileID := os.Getenv("STIPENDIUM_DRIVE_SOURCE_FILE_ID"); fileID != "" {
		config.Drive.SourceFileID = fileID
	}
	if folderID := os.Getenv("STIPENDIUM_DRIVE_OUTPUT_FOLDER_ID"); folderID != "" {
		config.Drive.OutputFolderID = folderID
	}
	if rateLimit := os.Getenv("STIPENDIUM_DRIVE_RATE_LIMIT"); rateLimit != "" {
		if rl, err := time.ParseDuration(rateLimit); err == nil {
			config.Drive.RateLimit = Duration(rl)
		}
	}
	if timeout := os.Getenv("STIPENDIUM_DRIVE_REQUEST_TIMEOUT"); timeout != "" {
		if rt, err := time.ParseDuration(timeout); err == nil {
			config.Drive.RequestTimeout = Duration(rt)
		}
	}

	// Processing configuration
	if force := os.Getenv("STIPENDIUM_FORCE_RECREATE"); force != "" {
		if f, err := strconv.ParseBool(force); err == nil {
			config.Processing.ForceRecreate = f
		}
	}
	if retention := os.Getenv("STIPENDIUM_SESSION_RETENTION_DAYS"); retention != "" {
		if days, err := strconv.Atoi(retention); err == nil {
			config.Processing.SessionRetentionDays = days
		}
	}

	// Storage configuration
	if statusFile := os.Getenv("STIPENDIUM_STATUS_FILE"); statusFile != "" {
		config.Storage.StatusFile = statusFile
	}
	if tempDir := os.Getenv("STIPENDIUM_TEMP_DIR"); tempDir != "" {
		config.Storage.TempDir = tempDir
	}
	if badgerPath := os.Getenv("STIPENDIUM_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("STIPENDIUM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("STIPENDIUM_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
