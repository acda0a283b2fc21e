// Package render generates payroll slip PDF documents. The layout mirrors
// the slip handed to employees: a header band, the bonus calculation table,
// the base used for the calculation, and the SLA methodology text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/models"
)

const (
	pageWidth  = 210.0 // A4 portrait, mm
	marginSide = 18.0
	contentW   = pageWidth - 2*marginSide
)

// Service implements interfaces.SlipRenderer using fpdf
type Service struct {
	logger       arbor.ILogger
	companyName  string
	currency     string
	descriptions *Descriptions
}

// Compile-time assertion
var _ interfaces.SlipRenderer = (*Service)(nil)

// NewService creates a new slip renderer service
func NewService(logger arbor.ILogger, companyName, currency string, descriptions *Descriptions) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	if descriptions == nil {
		descriptions = NewDescriptions(logger)
	}
	return &Service{
		logger:       logger,
		companyName:  companyName,
		currency:     currency,
		descriptions: descriptions,
	}
}

// RenderSlip writes the slip document for one employee to outputPath and
// validates the produced file.
func (s *Service) RenderSlip(employee *models.Employee, outputPath string) error {
	s.logger.Debug().
		Str("employee_id", employee.ID).
		Str("output", outputPath).
		Msg("Rendering payroll slip")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginSide, 18, marginSide)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	s.renderHeaderBand(pdf)
	pdf.Ln(12)
	s.renderEmployeeBlock(pdf, employee)
	pdf.Ln(12)
	s.renderBonusTable(pdf, employee)
	pdf.Ln(12)
	s.renderBaseBlock(pdf, employee)
	pdf.Ln(12)
	s.renderMethodology(pdf, employee.SLAID)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		s.logger.Error().Str("employee_id", employee.ID).Err(err).Msg("Failed to write slip PDF")
		return fmt.Errorf("failed to write slip PDF: %w", err)
	}

	// Catch malformed output before it reaches anyone's inbox
	if err := api.ValidateFile(outputPath, nil); err != nil {
		return fmt.Errorf("generated slip failed PDF validation: %w", err)
	}

	s.logger.Info().Str("employee_id", employee.ID).Str("output", outputPath).Msg("Payroll slip rendered")
	return nil
}

// renderHeaderBand draws the filled "Bonuses list" band across the page
func (s *Service) renderHeaderBand(pdf *fpdf.Fpdf) {
	pdf.SetFillColor(200, 200, 200)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(contentW, 16, "Bonuses list  ", "", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (s *Service) renderEmployeeBlock(pdf *fpdf.Fpdf, employee *models.Employee) {
	colW := contentW / 2

	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(colW, 7, "EMPLOYEE NAME", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colW, 7, "CALCULATION PERIOD", "B", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(colW, 10, employee.Name, "", 0, "L", false, 0, "")
	pdf.CellFormat(colW, 10, calculationPeriod(employee), "", 1, "L", false, 0, "")
}

func (s *Service) renderBonusTable(pdf *fpdf.Fpdf, employee *models.Employee) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentW, 9, "Bonus calculation", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	headers := []string{
		"Type of bonus",
		"% of SLA achievement*",
		"Bonus, $",
		"Bonus fin, $",
		"Bonus in " + s.currency,
		"Calculation period",
	}
	widths := []float64{36, 30, 22, 22, 36, 28}

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(128, 128, 128)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "B", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	values := []string{
		"Bonus from SLA",
		fmt.Sprintf("%.0f%%", employee.SLA*100),
		fmt.Sprintf("$%.0f", employee.BonusUSD),
		fmt.Sprintf("$%.0f", employee.BonusUSDFin),
		formatThousands(employee.TotalLocal) + " " + s.currency,
		"Quarter",
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for i, v := range values {
		pdf.CellFormat(widths[i], 8, v, "", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}

func (s *Service) renderBaseBlock(pdf *fpdf.Fpdf, employee *models.Employee) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentW, 9, "Base for calculation", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	company := s.companyName
	if company == "" {
		company = employee.Location
	}

	rows := [][2]string{
		{"BASE", company},
		{"% from the base", fmt.Sprintf("%.3f%%", employee.PercentFromBase*100)},
		{"Base in $", formatThousands(employee.Base)},
	}

	pdf.SetFont("Arial", "", 11)
	labelW := contentW * 0.4
	for i, row := range rows {
		border := "B"
		if i == len(rows)-1 {
			border = ""
		}
		pdf.CellFormat(labelW, 9, row[0], border, 0, "L", false, 0, "")
		pdf.CellFormat(contentW-labelW, 9, row[1], border, 1, "L", false, 0, "")
	}
}

func (s *Service) renderMethodology(pdf *fpdf.Fpdf, slaID int) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(contentW, 9, "SLA Descriptions", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	text := s.descriptions.ForID(slaID)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetDrawColor(200, 200, 200)
	pdf.MultiCell(contentW, 5, text, "1", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
}

// calculationPeriod returns the employee's period, defaulting to the
// current quarter
func calculationPeriod(employee *models.Employee) string {
	if employee.CalculationPeriod != "" {
		return employee.CalculationPeriod
	}
	now := time.Now()
	return fmt.Sprintf("Q%d, %d", (int(now.Month())-1)/3+1, now.Year())
}

// formatThousands renders a float with comma grouping and no decimals
func formatThousands(value float64) string {
	whole := fmt.Sprintf("%.0f", value)

	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	out := strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}
