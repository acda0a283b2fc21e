package models

// SessionStatus represents the state of a processing session
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// Session represents one end-to-end batch run over a set of employees.
// Counters are monotonically non-decreasing for the session's lifetime and,
// at finish time, equal the count of employee records pointing at it with the
// corresponding status.
//
// A session with per-employee failures still completes; SessionStatusFailed
// is reserved for batch-level aborts (e.g. the source file could not be read
// or validated at all).
type Session struct {
	ID             string        `json:"session_id"`
	SourceFileID   string        `json:"source_file_id"`
	OutputFolderID string        `json:"output_folder_id"`
	SourceFileName string        `json:"source_file_name,omitempty"`
	// StartedAt / FinishedAt are RFC3339 timestamps. StartedAt is kept as a
	// string so retention pruning can treat an unparseable value as eligible
	// for deletion instead of failing.
	StartedAt      string        `json:"started_at"`
	FinishedAt     string        `json:"finished_at,omitempty"`
	Status         SessionStatus `json:"status"`
	TotalEmployees int           `json:"total_employees"`
	ProcessedCount int           `json:"processed_count"`
	FailedCount    int           `json:"failed_count"`
	Error          string        `json:"error,omitempty"`
}
