// Package normalize is the typing boundary of the system: it turns the
// weakly-typed tables that backends deliver into canonical records, and
// canonical records back into tables for saving. Nothing beyond this
// package handles untyped cells.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// ErrMissingColumn indicates a structural failure: the loaded header lacks
// a column required to identify rows. The table cannot be used at all.
var ErrMissingColumn = errors.New("required column missing")

// Date layouts accepted from the backing stores, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// Comment-cell values that mean "missing". The remote store stringifies
// missing cells, so these arrive as literal text.
var missingPlaceholders = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
}

// Table converts a raw table into canonical records. Individual bad cells
// degrade to defaults (zero-time date, 0.0 probability, empty comment);
// only a missing required column is fatal. An empty raw table yields an
// empty record slice.
func Table(raw sheetstore.RawTable) ([]models.Record, error) {
	if raw.Empty() {
		return []models.Record{}, nil
	}

	idx := raw.ColumnIndex()
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		records = append(records, models.Record{
			EmployeeID:   cell(row, models.ColEmployeeID),
			EmployeeName: cell(row, models.ColEmployeeName),
			ReportDate:   Date(cell(row, models.ColReportDate)),
			Prediction:   cell(row, models.ColPrediction),
			ActualStatus: cell(row, models.ColActualStatus),
			Probability:  Probability(cell(row, models.ColProbability)),
			RiskLevel:    cell(row, models.ColRiskLevel),
			CostCenter:   cell(row, models.ColCostCenter),
			TenureBucket: cell(row, models.ColTenureBucket),
			Triggers:     cell(row, models.ColTriggers),
			Regrettable:  Comment(cell(row, models.ColRegrettable)),
			HRComment:    Comment(cell(row, models.ColHRComment)),
			OpsComment:   Comment(cell(row, models.ColOpsComment)),
		})
	}
	return records, nil
}

// Date parses a report timestamp tolerantly. Unparseable values yield the
// zero time, the invalid-date sentinel, rather than an error.
func Date(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Probability canonicalizes an attrition probability to a fraction in
// [0,1]. The source may deliver "0.42", "42", or "42%"; all become 0.42.
// Missing or unparseable values become 0. A magnitude still above 1 after
// the percent heuristic (raw value > 100) clamps to 1.
func Probability(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		v /= 100
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Comment stringifies a comment cell, coalescing missing placeholders to
// the empty string. Canonical records never carry a "nan".
func Comment(s string) string {
	if missingPlaceholders[strings.ToLower(strings.TrimSpace(s))] {
		return ""
	}
	return s
}

// Serialize renders canonical records back into a raw table under the
// canonical header, ready for a full-table save. Dates serialize date-only
// (time-of-day is not round-tripped); probabilities as fractions.
func Serialize(records []models.Record) sheetstore.RawTable {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			models.DateKey(r.ReportDate),
			r.EmployeeID,
			r.EmployeeName,
			r.CostCenter,
			r.Prediction,
			r.ActualStatus,
			strconv.FormatFloat(r.Probability, 'f', -1, 64),
			r.RiskLevel,
			r.TenureBucket,
			r.Triggers,
			r.HRComment,
			r.OpsComment,
			r.Regrettable,
		})
	}
	return sheetstore.RawTable{
		Header: append([]string(nil), models.CanonicalHeader...),
		Rows:   rows,
	}
}
