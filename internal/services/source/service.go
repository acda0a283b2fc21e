// Package source parses tabular payroll exports (CSV/TSV) into employee
// records with normalized numeric fields.
package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/interfaces"
	"github.com/ternarybob/stipendium/internal/models"
)

// Required columns for a usable payroll export
var requiredColumns = []string{"id", "name", "base"}

// defaultRate is used when the source has no exchange rate column at all
const defaultRate = 90.8

// Service implements interfaces.SourceReader for local CSV/TSV files
type Service struct {
	logger   arbor.ILogger
	validate *validator.Validate
}

// Compile-time assertion
var _ interfaces.SourceReader = (*Service)(nil)

// NewService creates a new source reader service
func NewService(logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		logger:   logger,
		validate: validator.New(),
	}
}

// DetectFormat returns "csv", "tsv", or "unknown" based on the file extension
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".tsv", ".txt":
		return "tsv"
	default:
		return "unknown"
	}
}

// table is a parsed source file: normalized header plus raw rows
type table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

func (s *Service) readFile(path string) (*table, error) {
	format := DetectFormat(path)
	if format == "unknown" {
		return nil, common.NewError(common.KindValidation, fmt.Sprintf("unsupported file format: %s", filepath.Ext(path)), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if format == "tsv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse source file: %w", err)
	}
	if len(records) == 0 {
		return &table{index: map[string]int{}}, nil
	}

	// Clean column names: trim and lowercase, as spreadsheet exports are
	// inconsistent about header casing
	columns := make([]string, len(records[0]))
	index := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		name := strings.ToLower(strings.TrimSpace(col))
		columns[i] = name
		index[name] = i
	}

	return &table{
		columns: columns,
		index:   index,
		rows:    records[1:],
	}, nil
}

// get returns the trimmed cell value for the first of the given column
// aliases present in the row, or ""
func (t *table) get(row []string, names ...string) string {
	for _, name := range names {
		if i, ok := t.index[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func (t *table) hasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Validate checks the file structure and required columns. Structural
// problems come back as Valid=false; only read failures are errors.
func (s *Service) Validate(path string) (*models.Validation, error) {
	tbl, err := s.readFile(path)
	if err != nil {
		if common.IsKind(err, common.KindValidation) {
			return &models.Validation{Valid: false, Error: err.Error()}, nil
		}
		return nil, err
	}

	if len(tbl.rows) == 0 {
		return &models.Validation{Valid: false, Error: "file is empty"}, nil
	}

	var missing []string
	for _, col := range requiredColumns {
		if !tbl.hasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &models.Validation{
			Valid:          false,
			Error:          fmt.Sprintf("missing required columns: %v", missing),
			MissingColumns: missing,
			FoundColumns:   tbl.columns,
			TotalRows:      len(tbl.rows),
		}, nil
	}

	rowsWithID := 0
	for _, row := range tbl.rows {
		if tbl.get(row, "id") != "" {
			rowsWithID++
		}
	}
	if rowsWithID == 0 {
		return &models.Validation{
			Valid:        false,
			Error:        "no rows with valid id found",
			FoundColumns: tbl.columns,
			TotalRows:    len(tbl.rows),
		}, nil
	}

	return &models.Validation{
		Valid:        true,
		FoundColumns: tbl.columns,
		TotalRows:    len(tbl.rows),
		RowsWithID:   rowsWithID,
	}, nil
}

// Employees extracts all rows with a non-empty id. Numeric values come
// straight from the sheet; nothing is recomputed here.
func (s *Service) Employees(path string) ([]*models.Employee, error) {
	tbl, err := s.readFile(path)
	if err != nil {
		return nil, err
	}

	var employees []*models.Employee
	for _, row := range tbl.rows {
		id := tbl.get(row, "id")
		if id == "" {
			continue
		}

		name := tbl.get(row, "name")
		if name == "" {
			name = "Unknown Employee"
		}

		rate := defaultRate
		if tbl.hasColumn("rate") {
			rate = safeFloat(tbl.get(row, "rate"))
		}

		slaID := 1
		if v := tbl.get(row, "sla id"); v != "" {
			slaID = int(safeFloat(v))
		}

		emp := &models.Employee{
			ID:                id,
			Name:              name,
			Base:              safeFloat(tbl.get(row, "base", "base jan-mar")),
			Location:          tbl.get(row, "location"),
			PercentFromBase:   safeFloat(tbl.get(row, "% from the base")),
			Payment:           safeFloat(tbl.get(row, "payment")),
			BasePeriods:       safeFloat(tbl.get(row, "base periods")),
			BonusUSD:          safeFloat(tbl.get(row, "bonus usd")),
			BonusUSDFin:       safeFloat(tbl.get(row, "bonus usd fin")),
			SLA:               safeFloat(tbl.get(row, "sla")),
			SLABonus:          safeFloat(tbl.get(row, "sla bonus")),
			SLAID:             slaID,
			TotalUSD:          safeFloat(tbl.get(row, "total usd")),
			Rate:              rate,
			TotalLocal:        safeFloat(tbl.get(row, "bonus loc cur")),
			TotalLocalRounded: safeFloat(tbl.get(row, "total rub rounded")),
		}

		if err := s.validate.Struct(emp); err != nil {
			s.logger.Warn().Str("employee_id", id).Err(err).Msg("Skipping invalid employee row")
			continue
		}

		employees = append(employees, emp)
	}

	s.logger.Info().Str("path", path).Int("employees", len(employees)).Msg("Extracted employees from source file")
	return employees, nil
}

// Preview returns the first n data rows as raw column/value maps
func (s *Service) Preview(path string, n int) (*models.Preview, error) {
	tbl, err := s.readFile(path)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, n)
	for i, row := range tbl.rows {
		if i >= n {
			break
		}
		m := make(map[string]string, len(tbl.columns))
		for j, col := range tbl.columns {
			if j < len(row) {
				m[col] = strings.TrimSpace(row[j])
			} else {
				m[col] = ""
			}
		}
		rows = append(rows, m)
	}

	return &models.Preview{
		Columns: tbl.columns,
		Rows:    rows,
	}, nil
}

// safeFloat converts a cell to float64, treating anything unparseable as 0.
// Thousands separators and currency symbols from spreadsheet formatting are
// stripped first.
func safeFloat(value string) float64 {
	if value == "" {
		return 0
	}

	cleaned := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(value)
	f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0
	}
	return f
}
