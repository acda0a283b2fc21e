package tracker

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/models"
)

// Gate decides, per employee, whether slip generation should be skipped,
// forced, or attempted, and records outcomes. Skips, forces, and failures are
// normal business outcomes; only status file I/O surfaces as an error here.
type Gate struct {
	store  *Store
	logger arbor.ILogger
}

// NewGate creates an idempotency gate over the given store
func NewGate(store *Store, logger arbor.ILogger) *Gate {
	return &Gate{
		store:  store,
		logger: logger,
	}
}

// IsProcessed reports whether a processed record exists for the employee.
// Failed or absent records are not processed.
func (g *Gate) IsProcessed(employeeID string) bool {
	record := g.store.GetEmployee(employeeID)
	return record != nil && record.Status == models.EmployeeStatusProcessed
}

// ShouldSkip is the sole gating rule: skip iff already processed and not
// forced. Force always wins over a prior success; a prior failure never
// causes a skip.
func (g *Gate) ShouldSkip(employeeID string, forceRecreate bool) bool {
	return g.IsProcessed(employeeID) && !forceRecreate
}

// Reset deletes the employee record unconditionally so the next attempt
// starts clean. Absent records are a no-op.
func (g *Gate) Reset(employeeID string) error {
	if g.store.GetEmployee(employeeID) == nil {
		return nil
	}

	g.store.DeleteEmployee(employeeID)
	if err := g.store.Save(); err != nil {
		return err
	}

	g.logger.Info().Str("employee_id", employeeID).Msg("Employee status reset")
	return nil
}

// RecordSuccess upserts a processed record and bumps the owning session's
// processed counter when that session is still tracked
func (g *Gate) RecordSuccess(employeeID, employeeName, driveFileID, sessionID string) error {
	g.store.UpsertEmployee(&models.EmployeeRecord{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Status:       models.EmployeeStatusProcessed,
		DriveFileID:  driveFileID,
		ProcessedAt:  g.store.now().Format(time.RFC3339),
		SessionID:    sessionID,
	})

	if session := g.store.GetSession(sessionID); session != nil {
		session.ProcessedCount++
	}

	if err := g.store.Save(); err != nil {
		return err
	}

	g.logger.Info().
		Str("employee_id", employeeID).
		Str("employee_name", employeeName).
		Str("drive_file_id", driveFileID).
		Msg("Employee marked as processed")
	return nil
}

// RecordFailure upserts a failed record and bumps the owning session's
// failed counter when that session is still tracked
func (g *Gate) RecordFailure(employeeID, employeeName, errorMessage, sessionID string) error {
	g.store.UpsertEmployee(&models.EmployeeRecord{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Status:       models.EmployeeStatusFailed,
		Error:        errorMessage,
		FailedAt:     g.store.now().Format(time.RFC3339),
		SessionID:    sessionID,
	})

	if session := g.store.GetSession(sessionID); session != nil {
		session.FailedCount++
	}

	if err := g.store.Save(); err != nil {
		return err
	}

	g.logger.Warn().
		Str("employee_id", employeeID).
		Str("employee_name", employeeName).
		Str("error", errorMessage).
		Msg("Employee marked as failed")
	return nil
}
