package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/models"
)

func TestGate_UnknownEmployee(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())

	assert.False(t, gate.IsProcessed("EMP001"))
	assert.False(t, gate.ShouldSkip("EMP001", false))
	assert.False(t, gate.ShouldSkip("EMP001", true))
}

func TestGate_RecordSuccess(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "drive_file_123", sessionID))

	assert.True(t, gate.IsProcessed("EMP001"))
	assert.True(t, gate.ShouldSkip("EMP001", false))
	// Force always overrides a prior success
	assert.False(t, gate.ShouldSkip("EMP001", true))

	record := store.GetEmployee("EMP001")
	require.NotNil(t, record)
	assert.Equal(t, models.EmployeeStatusProcessed, record.Status)
	assert.Equal(t, "drive_file_123", record.DriveFileID)
	assert.Equal(t, sessionID, record.SessionID)
	assert.NotEmpty(t, record.ProcessedAt)
	assert.Empty(t, record.FailedAt)

	assert.Equal(t, 1, store.GetSession(sessionID).ProcessedCount)
}

func TestGate_RecordFailure(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, gate.RecordFailure("EMP002", "Jane Doe", "render error", sessionID))

	// A failed employee is not processed and is always retried
	assert.False(t, gate.IsProcessed("EMP002"))
	assert.False(t, gate.ShouldSkip("EMP002", false))

	record := store.GetEmployee("EMP002")
	require.NotNil(t, record)
	assert.Equal(t, models.EmployeeStatusFailed, record.Status)
	assert.Equal(t, "render error", record.Error)
	assert.NotEmpty(t, record.FailedAt)
	assert.Empty(t, record.ProcessedAt)

	assert.Equal(t, 1, store.GetSession(sessionID).FailedCount)
}

func TestGate_FailureOverwritesSuccess(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())

	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "art1", "ses_1"))
	require.NoError(t, gate.RecordFailure("EMP001", "John Smith", "upload error", "ses_2"))

	assert.False(t, gate.IsProcessed("EMP001"))
	record := store.GetEmployee("EMP001")
	assert.Equal(t, models.EmployeeStatusFailed, record.Status)
	assert.Equal(t, "ses_2", record.SessionID)
}

func TestGate_RecordForUntrackedSession(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())

	// Recording against a pruned/unknown session still writes the record
	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "art1", "ses_gone"))
	assert.True(t, gate.IsProcessed("EMP001"))
}

func TestGate_Reset(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())

	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "art1", "ses_1"))
	require.NoError(t, gate.Reset("EMP001"))

	assert.False(t, gate.IsProcessed("EMP001"))
	assert.Nil(t, store.GetEmployee("EMP001"))

	// Resetting an absent employee is a no-op
	assert.NoError(t, gate.Reset("EMP001"))
}

func TestGate_ForceRecreateOverwrites(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())

	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "art1", "ses_1"))
	firstTimestamp := store.GetEmployee("EMP001").ProcessedAt

	// The force path: gate does not skip, reset clears the prior record,
	// and a fresh success overwrites with a new timestamp and session
	assert.False(t, gate.ShouldSkip("EMP001", true))
	require.NoError(t, gate.Reset("EMP001"))

	clock = clock.Add(time.Hour)
	require.NoError(t, gate.RecordSuccess("EMP001", "John Smith", "art2", "ses_2"))

	record := store.GetEmployee("EMP001")
	assert.Equal(t, "art2", record.DriveFileID)
	assert.Equal(t, "ses_2", record.SessionID)
	assert.NotEqual(t, firstTimestamp, record.ProcessedAt)
}

func TestGate_SummaryScenario(t *testing.T) {
	store := newTestStore(t)
	gate := NewGate(store, arbor.NewLogger())
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, gate.RecordSuccess("E1", "Alice", "art1", sessionID))
	require.NoError(t, gate.RecordFailure("E2", "Bob", "render error", sessionID))
	require.NoError(t, sessions.Finish(sessionID))

	summary := store.Summary()
	assert.Equal(t, 1, summary.SuccessfullyProcessed)
	assert.Equal(t, 1, summary.FailedProcessing)
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 2, summary.TotalEmployeesEverProcessed)
}

func TestGate_RecordStorageFailurePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "processing_status.json")
	store := NewStore(path, arbor.NewLogger())
	gate := NewGate(store, arbor.NewLogger())

	err := gate.RecordSuccess("E1", "Alice", "file-1", "ses_x")
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindStorageIO))

	err = gate.RecordFailure("E2", "Bob", "upload failed", "ses_x")
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindStorageIO))

	// The failed write leaves the in-memory records intact
	assert.True(t, gate.IsProcessed("E1"))
	assert.NotNil(t, store.GetEmployee("E2"))
}
