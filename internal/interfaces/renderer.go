package interfaces

import (
	"github.com/ternarybob/stipendium/internal/models"
)

// SlipRenderer generates a payroll slip PDF for one employee
type SlipRenderer interface {
	// RenderSlip writes the slip document to outputPath
	RenderSlip(employee *models.Employee, outputPath string) error
}
