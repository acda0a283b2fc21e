// Package tracker maintains the durable processing status document: which
// employees have been processed, which failed, and the sessions that
// produced those outcomes.
package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/models"
)

// recentSessionLimit caps the recent sessions slice in summaries
const recentSessionLimit = 5

// Store holds the whole-document processing status in memory and rewrites
// the backing JSON file on every save. Not safe for concurrent writers; the
// processor is strictly single-threaded and last-writer-wins is accepted for
// anything else touching the file.
type Store struct {
	path   string
	data   *models.StatusData
	logger arbor.ILogger
	now    func() time.Time
}

// NewStore creates a store bound to the given status file and loads it.
// A missing or corrupt file initializes an empty document; startup never
// fails on the status file.
func NewStore(path string, logger arbor.ILogger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	nowStr := s.now().Format(time.RFC3339)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to read status file, starting empty")
		}
		s.data = models.NewStatusData(nowStr)
		return
	}

	var status models.StatusData
	if err := json.Unmarshal(data, &status); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Status file is corrupt, starting empty")
		s.data = models.NewStatusData(nowStr)
		return
	}

	if status.Employees == nil {
		status.Employees = make(map[string]*models.EmployeeRecord)
	}
	if status.Sessions == nil {
		status.Sessions = make(map[string]*models.Session)
	}
	s.data = &status

	s.logger.Debug().
		Str("path", s.path).
		Int("employees", len(status.Employees)).
		Int("sessions", len(status.Sessions)).
		Msg("Status data loaded")
}

// Save serializes the entire document, updating last_updated, and replaces
// the status file via temp-file-plus-rename so a crash mid-write cannot
// truncate it. The in-memory state stays valid when the write fails.
func (s *Store) Save() error {
	s.data.LastUpdated = s.now().Format(time.RFC3339)

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return common.NewError(common.KindStorageIO, "failed to serialize status data", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".status-*.tmp")
	if err != nil {
		return common.NewError(common.KindStorageIO, "failed to create temp status file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return common.NewError(common.KindStorageIO, "failed to write status file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return common.NewError(common.KindStorageIO, "failed to close status file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return common.NewError(common.KindStorageIO, "failed to replace status file", err)
	}

	return nil
}

// GetEmployee returns the record for an employee, or nil when absent
func (s *Store) GetEmployee(employeeID string) *models.EmployeeRecord {
	return s.data.Employees[employeeID]
}

// GetSession returns a session by ID, or nil when absent
func (s *Store) GetSession(sessionID string) *models.Session {
	return s.data.Sessions[sessionID]
}

// UpsertEmployee inserts or replaces an employee record in memory.
// Persistence is the caller's responsibility.
func (s *Store) UpsertEmployee(record *models.EmployeeRecord) {
	s.data.Employees[record.EmployeeID] = record
}

// UpsertSession inserts or replaces a session in memory
func (s *Store) UpsertSession(session *models.Session) {
	s.data.Sessions[session.ID] = session
}

// DeleteEmployee removes an employee record in memory; absent IDs are a no-op
func (s *Store) DeleteEmployee(employeeID string) {
	delete(s.data.Employees, employeeID)
}

// Summary returns overall processing statistics with the most recent
// sessions first
func (s *Store) Summary() *models.Summary {
	processed := 0
	failed := 0
	for _, emp := range s.data.Employees {
		switch emp.Status {
		case models.EmployeeStatusProcessed:
			processed++
		case models.EmployeeStatusFailed:
			failed++
		}
	}

	recent := make([]*models.Session, 0, len(s.data.Sessions))
	for _, session := range s.data.Sessions {
		recent = append(recent, session)
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].StartedAt > recent[j].StartedAt
	})
	if len(recent) > recentSessionLimit {
		recent = recent[:recentSessionLimit]
	}

	return &models.Summary{
		TotalEmployeesEverProcessed: len(s.data.Employees),
		SuccessfullyProcessed:       processed,
		FailedProcessing:            failed,
		TotalSessions:               len(s.data.Sessions),
		RecentSessions:              recent,
		LastUpdated:                 s.data.LastUpdated,
		StatusFile:                  s.path,
	}
}

// EmployeeHistory returns the persisted record for one employee, or nil
func (s *Store) EmployeeHistory(employeeID string) *models.EmployeeRecord {
	return s.data.Employees[employeeID]
}

// AllProcessedEmployees returns every record currently in processed state,
// ordered by employee ID for deterministic output
func (s *Store) AllProcessedEmployees() []*models.EmployeeRecord {
	var result []*models.EmployeeRecord
	for _, emp := range s.data.Employees {
		if emp.Status == models.EmployeeStatusProcessed {
			result = append(result, emp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result
}
