package models

// EmployeeStatus represents the persisted processing outcome for one employee
type EmployeeStatus string

const (
	EmployeeStatusProcessed EmployeeStatus = "processed"
	EmployeeStatusFailed    EmployeeStatus = "failed"
)

// EmployeeRecord is the persisted outcome of attempting to process one
// employee's payroll slip. Records are created by the idempotency gate,
// overwritten on re-attempts, and deleted only by an explicit reset.
type EmployeeRecord struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Status       EmployeeStatus `json:"status"`
	// DriveFileID references the uploaded slip (processed records only)
	DriveFileID string `json:"drive_file_id,omitempty"`
	// Error holds the failure message (failed records only)
	Error string `json:"error,omitempty"`
	// ProcessedAt / FailedAt are RFC3339 timestamps; exactly one is set
	// depending on Status
	ProcessedAt string `json:"processed_at,omitempty"`
	FailedAt    string `json:"failed_at,omitempty"`
	// SessionID references the session that produced this outcome. Sessions
	// may be pruned by retention without repairing this back-reference.
	SessionID string `json:"session_id"`
}

// Employee is one parsed row of the source spreadsheet with normalized
// numeric fields. Values come straight from the sheet; nothing is recomputed.
type Employee struct {
	ID                string  `json:"id" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Base              float64 `json:"base"`
	Location          string  `json:"location"`
	PercentFromBase   float64 `json:"percent_from_base"`
	Payment           float64 `json:"payment"`
	BasePeriods       float64 `json:"base_periods"`
	BonusUSD          float64 `json:"bonus_usd"`
	BonusUSDFin       float64 `json:"bonus_usd_fin"`
	SLA               float64 `json:"sla"`
	SLABonus          float64 `json:"sla_bonus"`
	SLAID             int     `json:"sla_id"`
	TotalUSD          float64 `json:"total_usd"`
	Rate              float64 `json:"rate"`
	TotalLocal        float64 `json:"total_local"`
	TotalLocalRounded float64 `json:"total_local_rounded"`
	CalculationPeriod string  `json:"calculation_period,omitempty"`
}
