package tracker

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/models"
)

func TestSessions_Start(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sessionID, "ses_"))

	session := store.GetSession(sessionID)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionStatusInProgress, session.Status)
	assert.Equal(t, "fileA", session.SourceFileID)
	assert.Equal(t, "folderB", session.OutputFolderID)
	assert.Zero(t, session.ProcessedCount)
	assert.Zero(t, session.FailedCount)
	assert.Zero(t, session.TotalEmployees)
	assert.NotEmpty(t, session.StartedAt)
	assert.Empty(t, session.FinishedAt)
}

func TestSessions_StartGeneratesUniqueIDs(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := sessions.Start("f", "d")
		require.NoError(t, err)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSessions_Finish(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, sessions.Finish(sessionID))

	session := store.GetSession(sessionID)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	assert.NotEmpty(t, session.FinishedAt)
}

func TestSessions_FinishUnknownIsNoop(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	assert.NoError(t, sessions.Finish("ses_unknown"))
}

func TestSessions_FinishTwiceRetainsFirstTimestamp(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	require.NoError(t, sessions.Finish(sessionID))
	first := store.GetSession(sessionID).FinishedAt

	clock = clock.Add(time.Hour)
	require.NoError(t, sessions.Finish(sessionID))

	session := store.GetSession(sessionID)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	assert.Equal(t, first, session.FinishedAt)
}

func TestSessions_MarkFailed(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, sessions.MarkFailed(sessionID, "source validation failed"))

	session := store.GetSession(sessionID)
	assert.Equal(t, models.SessionStatusFailed, session.Status)
	assert.Equal(t, "source validation failed", session.Error)
	assert.NotEmpty(t, session.FinishedAt)
}

func TestSessions_UpdateMetadata(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.NoError(t, err)

	require.NoError(t, sessions.UpdateMetadata(sessionID, 42, "payroll.csv"))

	session := store.GetSession(sessionID)
	assert.Equal(t, 42, session.TotalEmployees)
	assert.Equal(t, "payroll.csv", session.SourceFileName)

	// Unknown session is a no-op
	assert.NoError(t, sessions.UpdateMetadata("ses_unknown", 1, "x"))
}

func TestSessions_PruneOlderThan(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.UpsertSession(&models.Session{ID: "old", StartedAt: now.AddDate(0, 0, -45).Format(time.RFC3339)})
	store.UpsertSession(&models.Session{ID: "recent", StartedAt: now.AddDate(0, 0, -5).Format(time.RFC3339)})
	store.UpsertSession(&models.Session{ID: "garbage", StartedAt: "not-a-date"})
	store.UpsertEmployee(&models.EmployeeRecord{EmployeeID: "E1", Status: models.EmployeeStatusProcessed, SessionID: "old"})

	removed, err := sessions.PruneOlderThan(30)
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.Nil(t, store.GetSession("old"))
	assert.Nil(t, store.GetSession("garbage"))
	assert.NotNil(t, store.GetSession("recent"))
	// Employee records are never touched, even when their session is gone
	assert.NotNil(t, store.GetEmployee("E1"))
}

func TestSessions_PruneNothingToRemove(t *testing.T) {
	store := newTestStore(t)
	sessions := NewSessions(store, arbor.NewLogger())

	store.UpsertSession(&models.Session{ID: "recent", StartedAt: store.now().Format(time.RFC3339)})

	removed, err := sessions.PruneOlderThan(30)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.NotNil(t, store.GetSession("recent"))
}

func TestSessions_StartStorageFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone", "processing_status.json")
	store := NewStore(path, arbor.NewLogger())
	sessions := NewSessions(store, arbor.NewLogger())

	sessionID, err := sessions.Start("fileA", "folderB")
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindStorageIO))
	assert.Empty(t, sessionID)
}
