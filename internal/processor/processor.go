// Package processor drives one end-to-end payroll batch: download the
// source, parse it, render and upload a slip per employee, and record every
// outcome against the processing session.
package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/models"
	"github.com/ternarybob/stipendium/internal/tracker"
)

// Options selects the source and destination for one batch run
type Options struct {
	SourceFileID   string
	OutputFolderID string
	ForceRecreate  bool
}

// Processor orchestrates batch runs. Execution is strictly sequential: one
// employee finishes, including all external I/O, before the next begins, so
// status writes stay in a deterministic order for auditing.
type Processor struct {
	logger   arbor.ILogger
	config   *common.Config
	sessions *tracker.Sessions
	gate     *tracker.Gate
	fetcher  interfaces.SourceFetcher
	source   interfaces.SourceReader
	renderer interfaces.SlipRenderer
	uploader interfaces.Uploader
	archive  interfaces.ArtifactArchive // optional
	reporter interfaces.ReportPublisher // optional
	now      func() time.Time
}

// New creates a batch processor. archive and reporter may be nil; their
// work is skipped when absent.
func New(
	logger arbor.ILogger,
	config *common.Config,
	sessions *tracker.Sessions,
	gate *tracker.Gate,
	fetcher interfaces.SourceFetcher,
	source interfaces.SourceReader,
	renderer interfaces.SlipRenderer,
	uploader interfaces.Uploader,
	archive interfaces.ArtifactArchive,
	reporter interfaces.ReportPublisher,
) *Processor {
	return &Processor{
		logger:   logger,
		config:   config,
		sessions: sessions,
		gate:     gate,
		fetcher:  fetcher,
		source:   source,
		renderer: renderer,
		uploader: uploader,
		archive:  archive,
		reporter: reporter,
		now:      time.Now,
	}
}

// Run executes one batch over every employee in the source file. It either
// returns a fully populated report or, when the batch cannot begin at all,
// marks the session failed and returns the error.
func (p *Processor) Run(ctx context.Context, opts Options) (*models.RunReport, error) {
	started := p.now()

	sessionID, err := p.sessions.Start(opts.SourceFileID, opts.OutputFolderID)
	if err != nil {
		return nil, err
	}

	p.logger.Info().
		Str("session_id", sessionID).
		Str("source_file_id", opts.SourceFileID).
		Bool("force_recreate", opts.ForceRecreate).
		Msg("Batch run started")

	localPath, originalName, err := p.fetcher.DownloadToTemp(ctx, opts.SourceFileID)
	if err != nil {
		return nil, p.abort(sessionID, fmt.Errorf("failed to fetch source file: %w", err))
	}
	defer os.Remove(localPath)

	validation, err := p.source.Validate(localPath)
	if err != nil {
		return nil, p.abort(sessionID, fmt.Errorf("failed to validate source file: %w", err))
	}
	if !validation.Valid {
		return nil, p.abort(sessionID, common.NewError(common.KindValidation, "source validation failed: "+validation.Error, nil))
	}

	employees, err := p.source.Employees(localPath)
	if err != nil {
		return nil, p.abort(sessionID, fmt.Errorf("failed to parse employees: %w", err))
	}

	if err := p.sessions.UpdateMetadata(sessionID, len(employees), originalName); err != nil {
		return nil, p.abort(sessionID, err)
	}

	report := &models.RunReport{
		SessionID:      sessionID,
		SourceFileID:   opts.SourceFileID,
		SourceFileName: originalName,
		OutputFolderID: opts.OutputFolderID,
		TotalEmployees: len(employees),
		Processed:      []models.ProcessedEntry{},
		Skipped:        []models.SkippedEntry{},
		Failed:         []models.FailedEntry{},
	}

	for _, emp := range employees {
		if p.gate.ShouldSkip(emp.ID, opts.ForceRecreate) {
			p.logger.Debug().Str("employee_id", emp.ID).Msg("Skipping already processed employee")
			report.Skipped = append(report.Skipped, models.SkippedEntry{
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				Reason:       models.SkipReasonAlreadyProcessed,
			})
			continue
		}

		if opts.ForceRecreate {
			if err := p.gate.Reset(emp.ID); err != nil {
				return nil, p.abort(sessionID, err)
			}
		}

		fileID, link, procErr := p.processOne(ctx, emp, sessionID, opts.OutputFolderID)
		if procErr != nil {
			// One employee failing must not stop the rest of the batch
			p.logger.Warn().Str("employee_id", emp.ID).Err(procErr).Msg("Employee processing failed")
			if err := p.gate.RecordFailure(emp.ID, emp.Name, procErr.Error(), sessionID); err != nil {
				return nil, p.abort(sessionID, err)
			}
			report.Failed = append(report.Failed, models.FailedEntry{
				EmployeeID:   emp.ID,
				EmployeeName: emp.Name,
				Error:        procErr.Error(),
			})
			continue
		}

		if err := p.gate.RecordSuccess(emp.ID, emp.Name, fileID, sessionID); err != nil {
			return nil, p.abort(sessionID, err)
		}
		report.Processed = append(report.Processed, models.ProcessedEntry{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			DriveFileID:  fileID,
			DriveLink:    link,
		})
	}

	// Per-employee failures do not fail the session
	if err := p.sessions.Finish(sessionID); err != nil {
		return nil, err
	}

	report.Duration = p.now().Sub(started)

	p.publishReports(ctx, report)

	p.logger.Info().
		Str("session_id", sessionID).
		Int("processed", len(report.Processed)).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Str("duration", report.Duration.String()).
		Msg("Batch run completed")

	return report, nil
}

// processOne renders one slip to a scoped temp file, uploads it, and
// archives the artifact. The temp file is removed on every exit path.
func (p *Processor) processOne(ctx context.Context, emp *models.Employee, sessionID, folderID string) (fileID, link string, err error) {
	tempDir := p.config.Storage.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	slipPath := filepath.Join(tempDir, fmt.Sprintf("slip_%s_%s.pdf", sessionID, emp.ID))
	defer os.Remove(slipPath)

	if err := p.renderer.RenderSlip(emp, slipPath); err != nil {
		return "", "", common.NewError(common.KindPerEmployee, "slip rendering failed", err)
	}

	fileID, err = p.uploader.UploadSlip(ctx, slipPath, emp.ID, emp.Name, folderID)
	if err != nil {
		return "", "", common.NewError(common.KindPerEmployee, "slip upload failed", err)
	}

	link = p.uploader.FileLink(ctx, fileID)

	p.archiveArtifact(ctx, emp, sessionID, fileID, slipPath)

	return fileID, link, nil
}

// archiveArtifact stores an audit record for the upload. Archive problems
// are logged and swallowed: the slip already made it to Drive.
func (p *Processor) archiveArtifact(ctx context.Context, emp *models.Employee, sessionID, fileID, slipPath string) {
	if p.archive == nil {
		return
	}

	size, sum, err := fileDigest(slipPath)
	if err != nil {
		p.logger.Warn().Str("employee_id", emp.ID).Err(err).Msg("Failed to hash slip for archive")
		return
	}

	record := &models.ArtifactRecord{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		SessionID:    sessionID,
		DriveFileID:  fileID,
		FileName:     filepath.Base(slipPath),
		Size:         size,
		SHA256:       sum,
		CreatedAt:    p.now(),
	}
	if err := p.archive.SaveArtifact(ctx, record); err != nil {
		p.logger.Warn().Str("employee_id", emp.ID).Err(err).Msg("Failed to archive slip artifact")
	}
}

// publishReports uploads the CSV reports when reporting is enabled. Report
// delivery is best-effort and never fails the batch.
func (p *Processor) publishReports(ctx context.Context, report *models.RunReport) {
	if p.reporter == nil || !p.config.Report.Enabled {
		return
	}

	folderID := p.config.Report.CSVFolderID
	if folderID == "" {
		folderID = report.OutputFolderID
	}

	if _, err := p.reporter.UploadProcessingReport(ctx, report, folderID); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to upload processing report")
	}
	if _, err := p.reporter.UploadSummaryReport(ctx, report, folderID); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to upload summary report")
	}
}

// Preview downloads the source file and returns its validation outcome plus
// the first n raw rows, without touching any processing state.
func (p *Processor) Preview(ctx context.Context, sourceFileID string, n int) (*models.Preview, error) {
	localPath, originalName, err := p.fetcher.DownloadToTemp(ctx, sourceFileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source file: %w", err)
	}
	defer os.Remove(localPath)

	validation, err := p.source.Validate(localPath)
	if err != nil {
		return nil, err
	}

	preview := &models.Preview{
		OriginalName: originalName,
		Validation:   validation,
	}
	if !validation.Valid {
		return preview, nil
	}

	rows, err := p.source.Preview(localPath, n)
	if err != nil {
		return nil, err
	}
	preview.Columns = rows.Columns
	preview.Rows = rows.Rows

	return preview, nil
}

// abort marks the session failed and passes the batch-level error through.
// The mark itself is best-effort; the original error always wins.
func (p *Processor) abort(sessionID string, err error) error {
	if markErr := p.sessions.MarkFailed(sessionID, err.Error()); markErr != nil {
		p.logger.Warn().Str("session_id", sessionID).Err(markErr).Msg("Failed to mark session failed")
	}
	return err
}

// fileDigest returns size and hex SHA-256 of a file
func fileDigest(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}
