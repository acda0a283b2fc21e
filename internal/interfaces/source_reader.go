package interfaces

import (
	"github.com/ternarybob/stipendium/internal/models"
)

// SourceReader parses a downloaded source file into employee records
type SourceReader interface {
	// Validate checks the file structure: required columns present, at least
	// one row with a non-empty id. A structurally broken file yields
	// Valid=false, not an error; errors are reserved for read failures.
	Validate(path string) (*models.Validation, error)

	// Employees extracts all rows with a non-empty id, with numeric fields
	// coerced (unparseable or missing values become zero)
	Employees(path string) ([]*models.Employee, error)

	// Preview returns the first n data rows as raw column/value maps
	Preview(path string, n int) (*models.Preview, error)
}
