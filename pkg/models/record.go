// Package models contains shared data models used across the attrition
// dashboard codebase.
package models

import (
	"strings"
	"time"
)

// Risk level values as they appear in the tracking sheet. Unknown values are
// preserved, never dropped; they sort after the known levels.
const (
	RiskSevere       = "Severe"
	RiskMoreLikely   = "More Likely"
	RiskIntermediate = "Intermediate Risk"
	RiskMild         = "Mild Risk"
)

// Prediction labels produced by the upstream attrition model.
const (
	PredictionPossibleAttrition = "Possible Attrition"
	PredictionInactive          = "Inactive"
)

// Record is one canonical row of the tracking table. All fields are already
// coerced: ReportDate parsed (zero time means the source value was
// unparseable), Probability a fraction in [0,1], comments never a missing
// placeholder.
type Record struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	ReportDate   time.Time `json:"report_date"`
	Prediction   string    `json:"prediction"`
	ActualStatus string    `json:"actual_status,omitempty"`
	Probability  float64   `json:"probability"`
	RiskLevel    string    `json:"risk_level"`
	CostCenter   string    `json:"cost_center,omitempty"`
	TenureBucket string    `json:"tenure_bucket,omitempty"`
	Triggers     string    `json:"triggers,omitempty"`
	Regrettable  string    `json:"regrettable,omitempty"`
	HRComment    string    `json:"hr_comment"`
	OpsComment   string    `json:"ops_comment"`
}

// RowKey is the composite identity used for reconciliation: employee plus
// the date portion of the report timestamp. It is the sole join key between
// an edited projection and the authoritative table.
type RowKey struct {
	EmployeeID string `json:"employee_id"`
	ReportDate string `json:"report_date"` // YYYY-MM-DD
}

// Key returns the record's composite identity. Time-of-day is discarded so
// that "2024-01-01" and "2024-01-01 09:30:00" identify the same row.
func (r Record) Key() RowKey {
	return RowKey{
		EmployeeID: strings.TrimSpace(r.EmployeeID),
		ReportDate: DateKey(r.ReportDate),
	}
}

// DateKey normalizes a timestamp to its date-only form. The zero time (the
// invalid-date sentinel) maps to an empty string, which never matches a
// parsed date.
func DateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// RiskRank maps a risk level to its display order. Higher is more severe;
// unrecognized levels rank 0 and therefore sort last.
func RiskRank(level string) int {
	switch level {
	case RiskSevere:
		return 4
	case RiskMoreLikely:
		return 3
	case RiskIntermediate:
		return 2
	case RiskMild:
		return 1
	default:
		return 0
	}
}

// CommentEdit carries the user-editable fields of one row back toward the
// authoritative store, addressed by composite identity.
type CommentEdit struct {
	Key         RowKey `json:"key"`
	HRComment   string `json:"hr_comment"`
	OpsComment  string `json:"ops_comment"`
	Regrettable string `json:"regrettable"`
}
