// Package view builds display-ready projections of the canonical table:
// filtered, sorted rows with sequence numbers, plus the aggregates the
// dashboard tiles and dropdowns are built from.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// Filters are independent and conjunctive: a record must satisfy every
// active filter. Zero values deactivate a filter.
type Filters struct {
	Start          time.Time // inclusive, date portion only
	End            time.Time // inclusive, date portion only
	RiskLevels     []string  // set membership; empty means all
	CostCenter     string    // equality
	TenureBucket   string    // equality
	MinProbability float64   // inclusive lower bound
}

// Row is one display row: a canonical record plus its 1-based sequence
// number, assigned after filtering and sorting and recomputed on every
// build.
type Row struct {
	Seq int `json:"seq"`
	models.Record
}

// Build applies the filters, sorts by probability descending (stable, so
// equal probabilities keep their original relative order), and numbers the
// survivors from 1. Returns an empty slice, never nil, when nothing
// matches; an empty result is not an error.
func Build(records []models.Record, f Filters) []Row {
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Probability > kept[j].Probability
	})

	rows := make([]Row, len(kept))
	for i, r := range kept {
		rows[i] = Row{Seq: i + 1, Record: r}
	}
	return rows
}

// Matches reports whether a record passes every active filter.
func Matches(r models.Record, f Filters) bool {
	if !f.Start.IsZero() || !f.End.IsZero() {
		if r.ReportDate.IsZero() {
			return false
		}
		day := truncateToDay(r.ReportDate)
		if !f.Start.IsZero() && day.Before(truncateToDay(f.Start)) {
			return false
		}
		if !f.End.IsZero() && day.After(truncateToDay(f.End)) {
			return false
		}
	}

	if len(f.RiskLevels) > 0 && !containsFold(f.RiskLevels, r.RiskLevel) {
		return false
	}
	if f.CostCenter != "" && !strings.EqualFold(r.CostCenter, f.CostCenter) {
		return false
	}
	if f.TenureBucket != "" && !strings.EqualFold(r.TenureBucket, f.TenureBucket) {
		return false
	}
	if r.Probability < f.MinProbability {
		return false
	}
	return true
}

// Options are the distinct filterable values present in the canonical
// table, for populating the UI's dropdowns and date pickers.
type Options struct {
	CostCenters   []string  `json:"cost_centers"`
	TenureBuckets []string  `json:"tenure_buckets"`
	RiskLevels    []string  `json:"risk_levels"`
	MinDate       time.Time `json:"min_date"`
	MaxDate       time.Time `json:"max_date"`
}

// Discover collects the filter options from the full canonical table.
// Risk levels come out in display order (most severe first, unknown
// values last); the rest sort alphabetically. Empty cells are skipped.
func Discover(records []models.Record) Options {
	costCenters := map[string]bool{}
	tenures := map[string]bool{}
	risks := map[string]bool{}
	var minDate, maxDate time.Time

	for _, r := range records {
		if r.CostCenter != "" {
			costCenters[r.CostCenter] = true
		}
		if r.TenureBucket != "" {
			tenures[r.TenureBucket] = true
		}
		if r.RiskLevel != "" {
			risks[r.RiskLevel] = true
		}
		if !r.ReportDate.IsZero() {
			if minDate.IsZero() || r.ReportDate.Before(minDate) {
				minDate = r.ReportDate
			}
			if maxDate.IsZero() || r.ReportDate.After(maxDate) {
				maxDate = r.ReportDate
			}
		}
	}

	riskList := sortedKeys(risks)
	sort.SliceStable(riskList, func(i, j int) bool {
		ri, rj := models.RiskRank(riskList[i]), models.RiskRank(riskList[j])
		if ri != rj {
			return ri > rj
		}
		return riskList[i] < riskList[j]
	})

	return Options{
		CostCenters:   sortedKeys(costCenters),
		TenureBuckets: sortedKeys(tenures),
		RiskLevels:    riskList,
		MinDate:       minDate,
		MaxDate:       maxDate,
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
