package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/models"
)

func newTestArchive(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(arbor.NewLogger(), &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { service.Close() })
	return service
}

func record(employeeID, sessionID string, createdAt time.Time) *models.ArtifactRecord {
	return &models.ArtifactRecord{
		EmployeeID:   employeeID,
		EmployeeName: "Employee " + employeeID,
		SessionID:    sessionID,
		DriveFileID:  "drive-" + employeeID,
		FileName:     "Payroll_2026-03_" + employeeID + ".pdf",
		Size:         2048,
		SHA256:       "deadbeef",
		CreatedAt:    createdAt,
	}
}

func TestSaveArtifact_AssignsID(t *testing.T) {
	service := newTestArchive(t)
	ctx := context.Background()

	rec := record("EMP001", "ses_1", time.Now())
	require.NoError(t, service.SaveArtifact(ctx, rec))

	assert.NotEmpty(t, rec.ID)
	assert.Contains(t, rec.ID, "art_")
}

func TestArtifactsBySession(t *testing.T) {
	service := newTestArchive(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, service.SaveArtifact(ctx, record("EMP002", "ses_1", base.Add(time.Minute))))
	require.NoError(t, service.SaveArtifact(ctx, record("EMP001", "ses_1", base)))
	require.NoError(t, service.SaveArtifact(ctx, record("EMP003", "ses_2", base.Add(2*time.Minute))))

	records, err := service.ArtifactsBySession(ctx, "ses_1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first
	assert.Equal(t, "EMP001", records[0].EmployeeID)
	assert.Equal(t, "EMP002", records[1].EmployeeID)
}

func TestArtifactsByEmployee(t *testing.T) {
	service := newTestArchive(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	// Same employee across two sessions: both records survive
	require.NoError(t, service.SaveArtifact(ctx, record("EMP001", "ses_1", base)))
	require.NoError(t, service.SaveArtifact(ctx, record("EMP001", "ses_2", base.AddDate(0, 1, 0))))
	require.NoError(t, service.SaveArtifact(ctx, record("EMP002", "ses_2", base)))

	records, err := service.ArtifactsByEmployee(ctx, "EMP001")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ses_1", records[0].SessionID)
	assert.Equal(t, "ses_2", records[1].SessionID)
}

func TestArtifacts_EmptyResults(t *testing.T) {
	service := newTestArchive(t)

	records, err := service.ArtifactsBySession(context.Background(), "ses_unknown")
	require.NoError(t, err)
	assert.Empty(t, records)
}
