package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/normalize"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
)

const dateParamLayout = "2006-01-02"

// parseFilters reads the shared filter query parameters used by the
// records, export, and metrics endpoints. min_probability accepts the
// same forms as the stored column (fraction, percent number, "42%").
func parseFilters(r *http.Request) (view.Filters, error) {
	q := r.URL.Query()
	var f view.Filters

	if s := q.Get("start"); s != "" {
		t, err := time.Parse(dateParamLayout, s)
		if err != nil {
			return f, fmt.Errorf("start must be a YYYY-MM-DD date")
		}
		f.Start = t
	}
	if s := q.Get("end"); s != "" {
		t, err := time.Parse(dateParamLayout, s)
		if err != nil {
			return f, fmt.Errorf("end must be a YYYY-MM-DD date")
		}
		f.End = t
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, fmt.Errorf("end must not be before start")
	}

	for _, raw := range q["risk"] {
		for _, level := range strings.Split(raw, ",") {
			if level = strings.TrimSpace(level); level != "" {
				f.RiskLevels = append(f.RiskLevels, level)
			}
		}
	}

	f.CostCenter = strings.TrimSpace(q.Get("cost_center"))
	f.TenureBucket = strings.TrimSpace(q.Get("tenure"))

	if s := q.Get("min_probability"); s != "" {
		f.MinProbability = normalize.Probability(s)
	}

	return f, nil
}

// parseColumns reads the export column selection. Empty means all columns.
func parseColumns(r *http.Request) []string {
	var columns []string
	for _, raw := range r.URL.Query()["columns"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}
	return columns
}
