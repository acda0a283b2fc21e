// Package report turns a batch run's outcome into CSV files and ships them
// to Drive for the payroll team to review.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/models"
)

// Service generates per-employee and summary CSV reports
type Service struct {
	logger   arbor.ILogger
	uploader interfaces.Uploader
	now      func() time.Time
}

// Compile-time assertion
var _ interfaces.ReportPublisher = (*Service)(nil)

// NewService creates a new report service
func NewService(logger arbor.ILogger, uploader interfaces.Uploader) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		logger:   logger,
		uploader: uploader,
		now:      time.Now,
	}
}

// UploadProcessingReport writes one CSV row per employee in the run and
// uploads it to the configured folder. Returns the Drive file ID.
func (s *Service) UploadProcessingReport(ctx context.Context, report *models.RunReport, folderID string) (string, error) {
	fileName := fmt.Sprintf("payroll_processing_report_%s.csv", s.now().Format("20060102_150405"))

	localPath, err := s.writeProcessingCSV(report, fileName)
	if err != nil {
		return "", err
	}
	defer os.Remove(localPath)

	fileID, err := s.uploader.UploadFile(ctx, localPath, fileName, folderID)
	if err != nil {
		return "", fmt.Errorf("failed to upload processing report: %w", err)
	}

	s.logger.Info().
		Str("file_name", fileName).
		Str("file_id", fileID).
		Int("records", len(report.Processed)+len(report.Skipped)+len(report.Failed)).
		Msg("Processing report uploaded")
	return fileID, nil
}

// UploadSummaryReport writes key run statistics as a metric/value CSV and
// uploads it. Returns the Drive file ID.
func (s *Service) UploadSummaryReport(ctx context.Context, report *models.RunReport, folderID string) (string, error) {
	fileName := fmt.Sprintf("payroll_summary_%s.csv", s.now().Format("20060102_150405"))

	localPath, err := s.writeSummaryCSV(report, fileName)
	if err != nil {
		return "", err
	}
	defer os.Remove(localPath)

	fileID, err := s.uploader.UploadFile(ctx, localPath, fileName, folderID)
	if err != nil {
		return "", fmt.Errorf("failed to upload summary report: %w", err)
	}

	s.logger.Info().Str("file_name", fileName).Str("file_id", fileID).Msg("Summary report uploaded")
	return fileID, nil
}

func (s *Service) writeProcessingCSV(report *models.RunReport, fileName string) (string, error) {
	timestamp := s.now().Format("2006-01-02 15:04:05")

	rows := [][]string{
		{"Employee ID", "Employee Name", "Status", "PDF Link", "Processing Date", "Session ID", "Error Message"},
	}

	for _, p := range report.Processed {
		rows = append(rows, []string{p.EmployeeID, p.EmployeeName, "Processed", p.DriveLink, timestamp, report.SessionID, ""})
	}
	for _, sk := range report.Skipped {
		reason := sk.Reason
		if reason == "" {
			reason = models.SkipReasonAlreadyProcessed
		}
		rows = append(rows, []string{sk.EmployeeID, sk.EmployeeName, "Skipped", "", timestamp, report.SessionID, reason})
	}
	for _, f := range report.Failed {
		rows = append(rows, []string{f.EmployeeID, f.EmployeeName, "Failed", "", timestamp, report.SessionID, f.Error})
	}

	return s.writeCSV(fileName, rows)
}

func (s *Service) writeSummaryCSV(report *models.RunReport, fileName string) (string, error) {
	rows := [][]string{
		{"Metric", "Value"},
		{"Processing Date", s.now().Format("2006-01-02 15:04:05")},
		{"Session ID", report.SessionID},
		{"Source File", report.SourceFileName},
		{"Total Employees", fmt.Sprintf("%d", report.TotalEmployees)},
		{"Successfully Processed", fmt.Sprintf("%d", len(report.Processed))},
		{"Skipped", fmt.Sprintf("%d", len(report.Skipped))},
		{"Failed", fmt.Sprintf("%d", len(report.Failed))},
		{"Processing Time (seconds)", fmt.Sprintf("%.1f", report.Duration.Seconds())},
		{"Success Rate (%)", fmt.Sprintf("%.1f", report.SuccessRate()*100)},
	}

	return s.writeCSV(fileName, rows)
}

func (s *Service) writeCSV(fileName string, rows [][]string) (string, error) {
	path := filepath.Join(os.TempDir(), fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write report rows: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}
