package models

// StatusData is the whole-document processing status persisted as a single
// JSON file. It is fully loaded at process start and fully rewritten on every
// mutation; the file is the single source of truth.
type StatusData struct {
	Employees   map[string]*EmployeeRecord `json:"employees"`
	Sessions    map[string]*Session        `json:"sessions"`
	CreatedAt   string                     `json:"created_at"`
	LastUpdated string                     `json:"last_updated"`
}

// NewStatusData creates an empty status document
func NewStatusData(now string) *StatusData {
	return &StatusData{
		Employees:   make(map[string]*EmployeeRecord),
		Sessions:    make(map[string]*Session),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Summary aggregates overall processing statistics for dashboards and the
// status command
type Summary struct {
	TotalEmployeesEverProcessed int        `json:"total_employees_ever_processed"`
	SuccessfullyProcessed       int        `json:"successfully_processed"`
	FailedProcessing            int        `json:"failed_processing"`
	TotalSessions               int        `json:"total_sessions"`
	RecentSessions              []*Session `json:"recent_sessions"`
	LastUpdated                 string     `json:"last_updated"`
	StatusFile                  string     `json:"status_file"`
}
