package models

import "time"

// ArtifactRecord is the audit entry kept for every slip uploaded to Drive.
// Unlike the status file, which only tracks the latest outcome per employee,
// the archive keeps one record per upload so historical runs stay queryable.
type ArtifactRecord struct {
	ID           string    `json:"id" badgerhold:"key"`
	EmployeeID   string    `json:"employee_id" badgerhold:"index"`
	EmployeeName string    `json:"employee_name"`
	SessionID    string    `json:"session_id" badgerhold:"index"`
	DriveFileID  string    `json:"drive_file_id"`
	FileName     string    `json:"file_name"`
	Size         int64     `json:"size"`
	SHA256       string    `json:"sha256"`
	CreatedAt    time.Time `json:"created_at"`
}
