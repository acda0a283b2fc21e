package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/models"
)

func testEmployee() *models.Employee {
	return &models.Employee{
		ID:                "EMP001",
		Name:              "John Smith",
		Base:              120000,
		Location:          "Remote",
		PercentFromBase:   0.00043,
		BonusUSD:          52,
		BonusUSDFin:       41,
		SLA:               0.75,
		SLAID:             2,
		Rate:              91.5,
		TotalLocal:        3766,
		TotalLocalRounded: 3766,
		CalculationPeriod: "Q1, 2026",
	}
}

func TestRenderSlip(t *testing.T) {
	service := NewService(arbor.NewLogger(), "Acme Corp", "RUB", nil)
	outputPath := filepath.Join(t.TempDir(), "slip.pdf")

	err := service.RenderSlip(testEmployee(), outputPath)
	require.NoError(t, err)

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))

	// %PDF magic number
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderSlip_BadOutputDir(t *testing.T) {
	service := NewService(arbor.NewLogger(), "Acme Corp", "RUB", nil)

	err := service.RenderSlip(testEmployee(), filepath.Join(t.TempDir(), "missing", "slip.pdf"))
	assert.Error(t, err)
}

func TestLoadDescriptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := `descriptions:
  1: "Standard quarterly SLA methodology."
  2: |
    Extended methodology.
    Second line.
  3: "   "
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	descriptions, err := LoadDescriptions(path, arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, "Standard quarterly SLA methodology.", descriptions.ForID(1))
	assert.Contains(t, descriptions.ForID(2), "Second line.")

	// Blank entries and unknown ids fall back to the default text
	assert.Equal(t, defaultMethodology, descriptions.ForID(3))
	assert.Equal(t, defaultMethodology, descriptions.ForID(99))
}

func TestLoadDescriptions_MissingFile(t *testing.T) {
	_, err := LoadDescriptions(filepath.Join(t.TempDir(), "nope.yaml"), arbor.NewLogger())
	assert.Error(t, err)
}

func TestLoadDescriptions_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	require.NoError(t, os.WriteFile(path, []byte("descriptions: [not a map"), 0644))

	_, err := LoadDescriptions(path, arbor.NewLogger())
	assert.Error(t, err)
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{3766, "3,766"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatThousands(tt.in))
	}
}

func TestCalculationPeriod(t *testing.T) {
	emp := testEmployee()
	assert.Equal(t, "Q1, 2026", calculationPeriod(emp))

	emp.CalculationPeriod = ""
	assert.Regexp(t, `^Q[1-4], \d{4}$`, calculationPeriod(emp))
}
