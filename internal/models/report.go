package models

import "time"

// ProcessedEntry records one successfully processed employee in a run report
type ProcessedEntry struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	DriveFileID  string `json:"drive_file_id"`
	DriveLink    string `json:"drive_link"`
}

// SkippedEntry records one employee skipped by the idempotency gate
type SkippedEntry struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

// FailedEntry records one employee whose render or upload failed
type FailedEntry struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Error        string `json:"error"`
}

// SkipReasonAlreadyProcessed is the reason attached to employees skipped
// because a processed record already exists
const SkipReasonAlreadyProcessed = "already_processed"

// RunReport is the structured summary returned from one batch run. The entry
// lists preserve source order; every employee in the source appears in
// exactly one of them.
type RunReport struct {
	SessionID      string           `json:"session_id"`
	SourceFileID   string           `json:"source_file_id"`
	SourceFileName string           `json:"source_file_name"`
	OutputFolderID string           `json:"output_folder_id"`
	TotalEmployees int              `json:"total_employees"`
	Processed      []ProcessedEntry `json:"processed"`
	Skipped        []SkippedEntry   `json:"skipped"`
	Failed         []FailedEntry    `json:"failed"`
	Duration       time.Duration    `json:"processing_time"`
}

// SuccessRate returns |processed| / totalEmployees, or 0 when the source was
// empty
func (r *RunReport) SuccessRate() float64 {
	if r.TotalEmployees == 0 {
		return 0
	}
	return float64(len(r.Processed)) / float64(r.TotalEmployees)
}

// Validation is the outcome of checking the source file structure. Valid is
// false both for structural problems (missing columns, no usable rows) and
// for read failures; Error describes which.
type Validation struct {
	Valid          bool     `json:"valid"`
	Error          string   `json:"error,omitempty"`
	MissingColumns []string `json:"missing_required_columns,omitempty"`
	FoundColumns   []string `json:"found_columns,omitempty"`
	TotalRows      int      `json:"total_rows"`
	RowsWithID     int      `json:"rows_with_id"`
}

// Preview holds the first rows of a source file for inspection before a run
type Preview struct {
	OriginalName string              `json:"original_name"`
	Validation   *Validation         `json:"validation"`
	Columns      []string            `json:"columns"`
	Rows         []map[string]string `json:"rows"`
}
