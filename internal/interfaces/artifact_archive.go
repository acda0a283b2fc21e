package interfaces

import (
	"context"

	"github.com/ternarybob/stipendium/internal/models"
)

// ArtifactArchive keeps an audit record for every uploaded slip
type ArtifactArchive interface {
	// SaveArtifact stores one archive record
	SaveArtifact(ctx context.Context, record *models.ArtifactRecord) error

	// ArtifactsBySession returns all records produced by one session,
	// oldest first
	ArtifactsBySession(ctx context.Context, sessionID string) ([]*models.ArtifactRecord, error)

	// ArtifactsByEmployee returns all records for one employee, oldest first
	ArtifactsByEmployee(ctx context.Context, employeeID string) ([]*models.ArtifactRecord, error)

	// Close releases the underlying database
	Close() error
}
