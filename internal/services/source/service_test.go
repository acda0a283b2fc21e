package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleCSV = `ID,Name,Base,Location,% from the base,Bonus USD,Bonus USD fin,SLA,SLA ID,Total USD,Rate,Bonus loc cur,Total RUB rounded
EMP001,John Smith,120000,Remote,0.00043,52,41,0.75,2,41,91.5,"3,766",3766
EMP002,Jane Doe,95000,Office,0.00039,48,38,1.0,1,38,91.5,"3,477",3477
,No ID Row,1000,,,,,,,,,,
`

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"payroll.csv", "csv"},
		{"payroll.CSV", "csv"},
		{"payroll.tsv", "tsv"},
		{"payroll.txt", "tsv"},
		{"payroll.xlsx", "unknown"},
		{"payroll", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path), tt.path)
	}
}

func TestNewService_NilLoggerUsesGlobal(t *testing.T) {
	service := NewService(nil)
	path := writeTempFile(t, "payroll.csv", sampleCSV)

	validation, err := service.Validate(path)
	require.NoError(t, err)
	assert.True(t, validation.Valid)
}

func TestValidate_ValidFile(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", sampleCSV)

	validation, err := service.Validate(path)
	require.NoError(t, err)

	assert.True(t, validation.Valid)
	assert.Equal(t, 3, validation.TotalRows)
	assert.Equal(t, 2, validation.RowsWithID)
	assert.Contains(t, validation.FoundColumns, "id")
	assert.Contains(t, validation.FoundColumns, "bonus usd")
}

func TestValidate_MissingColumns(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", "ID,Location\nEMP001,Remote\n")

	validation, err := service.Validate(path)
	require.NoError(t, err)

	assert.False(t, validation.Valid)
	assert.ElementsMatch(t, []string{"name", "base"}, validation.MissingColumns)
	assert.Contains(t, validation.Error, "missing required columns")
}

func TestValidate_EmptyFile(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", "ID,Name,Base\n")

	validation, err := service.Validate(path)
	require.NoError(t, err)

	assert.False(t, validation.Valid)
	assert.Equal(t, "file is empty", validation.Error)
}

func TestValidate_NoRowsWithID(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", "ID,Name,Base\n,Nobody,100\n")

	validation, err := service.Validate(path)
	require.NoError(t, err)

	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Error, "no rows with valid id")
}

func TestValidate_UnsupportedFormat(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.xlsx", "binary")

	validation, err := service.Validate(path)
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.Contains(t, validation.Error, "unsupported file format")
}

func TestValidate_MissingFileIsError(t *testing.T) {
	service := NewService(arbor.NewLogger())

	_, err := service.Validate(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestEmployees(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", sampleCSV)

	employees, err := service.Employees(path)
	require.NoError(t, err)
	require.Len(t, employees, 2)

	emp := employees[0]
	assert.Equal(t, "EMP001", emp.ID)
	assert.Equal(t, "John Smith", emp.Name)
	assert.Equal(t, 120000.0, emp.Base)
	assert.Equal(t, "Remote", emp.Location)
	assert.Equal(t, 52.0, emp.BonusUSD)
	assert.Equal(t, 41.0, emp.BonusUSDFin)
	assert.Equal(t, 0.75, emp.SLA)
	assert.Equal(t, 2, emp.SLAID)
	assert.Equal(t, 91.5, emp.Rate)
	assert.Equal(t, 3766.0, emp.TotalLocal)
}

func TestEmployees_TSV(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.tsv", "ID\tName\tBase\nEMP001\tJohn Smith\t500\n")

	employees, err := service.Employees(path)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, 500.0, employees[0].Base)
}

func TestEmployees_Defaults(t *testing.T) {
	service := NewService(arbor.NewLogger())
	// No rate column, no sla id, empty name
	path := writeTempFile(t, "payroll.csv", "ID,Name,Base\nEMP001,,not-a-number\n")

	employees, err := service.Employees(path)
	require.NoError(t, err)
	require.Len(t, employees, 1)

	emp := employees[0]
	assert.Equal(t, "Unknown Employee", emp.Name)
	assert.Equal(t, 0.0, emp.Base) // unparseable coerces to zero
	assert.Equal(t, 90.8, emp.Rate)
	assert.Equal(t, 1, emp.SLAID)
}

func TestEmployees_BaseAliasColumn(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", "ID,Name,Base,Base Jan-Mar\nEMP001,John,,750\n")

	employees, err := service.Employees(path)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	// Empty "base" falls back to zero, not the alias; alias only applies
	// when the primary column is absent
	assert.Equal(t, 0.0, employees[0].Base)
}

func TestPreview(t *testing.T) {
	service := NewService(arbor.NewLogger())
	path := writeTempFile(t, "payroll.csv", sampleCSV)

	preview, err := service.Preview(path, 1)
	require.NoError(t, err)

	assert.Contains(t, preview.Columns, "name")
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, "John Smith", preview.Rows[0]["name"])
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"42", 42},
		{"42.5", 42.5},
		{"3,766", 3766},
		{"$52", 52},
		{"75%", 75},
		{"garbage", 0},
		{" 12 ", 12},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFloat(tt.in), tt.in)
	}
}
