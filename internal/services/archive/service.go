// Package archive keeps an audit record for every slip uploaded to Drive.
// The status file only tracks the latest outcome per employee; the archive
// keeps one record per upload so historical runs stay queryable.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// Service implements interfaces.ArtifactArchive on BadgerDB
type Service struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ArtifactArchive = (*Service)(nil)

// NewService opens the archive database at the configured path. In-memory
// mode keeps everything in RAM for tests.
func NewService(logger arbor.ILogger, config *common.BadgerConfig) (*Service, error) {
	if logger == nil {
		logger = common.GetLogger()
	}
	options := badgerhold.DefaultOptions

	if config.InMemory {
		options.Options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
		options.Dir = config.Path
		options.ValueDir = config.Path
	}
	options.Logger = nil // arbor handles logging

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Bool("in_memory", config.InMemory).Msg("Artifact archive opened")

	return &Service{
		store:  store,
		logger: logger,
	}, nil
}

// SaveArtifact stores one archive record. Records with no ID get one.
func (s *Service) SaveArtifact(ctx context.Context, record *models.ArtifactRecord) error {
	if record.ID == "" {
		record.ID = common.NewArtifactID()
	}

	if err := s.store.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save artifact record: %w", err)
	}

	s.logger.Debug().
		Str("artifact_id", record.ID).
		Str("employee_id", record.EmployeeID).
		Str("session_id", record.SessionID).
		Msg("Artifact record saved")
	return nil
}

// ArtifactsBySession returns all records produced by one session, oldest first.
func (s *Service) ArtifactsBySession(ctx context.Context, sessionID string) ([]*models.ArtifactRecord, error) {
	return s.find(badgerhold.Where("SessionID").Eq(sessionID).Index("SessionID"))
}

// ArtifactsByEmployee returns all records for one employee, oldest first.
func (s *Service) ArtifactsByEmployee(ctx context.Context, employeeID string) ([]*models.ArtifactRecord, error) {
	return s.find(badgerhold.Where("EmployeeID").Eq(employeeID).Index("EmployeeID"))
}

func (s *Service) find(query *badgerhold.Query) ([]*models.ArtifactRecord, error) {
	var records []models.ArtifactRecord
	if err := s.store.Find(&records, query.SortBy("CreatedAt")); err != nil {
		return nil, fmt.Errorf("failed to query artifact records: %w", err)
	}

	result := make([]*models.ArtifactRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

// Close releases the underlying database
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
