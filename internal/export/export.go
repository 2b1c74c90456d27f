// Package export renders a filtered view as a downloadable CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// CSV renders the given view rows under the requested columns. Columns is
// an ordered subset of the canonical header; an empty selection means the
// full canonical header. Unknown column names are rejected so a typo in a
// request surfaces instead of silently producing an empty column.
func CSV(rows []view.Row, columns []string) ([]byte, error) {
	if len(columns) == 0 {
		columns = models.CanonicalHeader
	}
	for _, c := range columns {
		if !knownColumn(c) {
			return nil, fmt.Errorf("unknown export column %q", c)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("writing export header: %w", err)
	}
	for _, row := range rows {
		out := make([]string, len(columns))
		for i, c := range columns {
			out[i] = cellValue(row.Record, c)
		}
		if err := w.Write(out); err != nil {
			return nil, fmt.Errorf("writing export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing export: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for an export generated at the given
// time, e.g. attrition_tracking_20260901.csv.
func Filename(now time.Time) string {
	return fmt.Sprintf("attrition_tracking_%s.csv", now.Format("20060102"))
}

func knownColumn(name string) bool {
	for _, c := range models.CanonicalHeader {
		if c == name {
			return true
		}
	}
	return false
}

func cellValue(r models.Record, column string) string {
	switch column {
	case models.ColReportDate:
		return models.DateKey(r.ReportDate)
	case models.ColEmployeeID:
		return r.EmployeeID
	case models.ColEmployeeName:
		return r.EmployeeName
	case models.ColCostCenter:
		return r.CostCenter
	case models.ColPrediction:
		return r.Prediction
	case models.ColActualStatus:
		return r.ActualStatus
	case models.ColProbability:
		return strconv.FormatFloat(r.Probability, 'f', -1, 64)
	case models.ColRiskLevel:
		return r.RiskLevel
	case models.ColTenureBucket:
		return r.TenureBucket
	case models.ColTriggers:
		return r.Triggers
	case models.ColHRComment:
		return r.HRComment
	case models.ColOpsComment:
		return r.OpsComment
	case models.ColRegrettable:
		return r.Regrettable
	default:
		return ""
	}
}
