package interfaces

import (
	"context"

	"github.com/ternarybob/stipendium/internal/models"
)

// ReportPublisher ships run reports to the remote folder after a batch
type ReportPublisher interface {
	// UploadProcessingReport uploads the per-employee CSV and returns its
	// remote file ID
	UploadProcessingReport(ctx context.Context, report *models.RunReport, folderID string) (string, error)

	// UploadSummaryReport uploads the run statistics CSV and returns its
	// remote file ID
	UploadSummaryReport(ctx context.Context, report *models.RunReport, folderID string) (string, error)
}
