package view

import (
	"sort"
	"strings"

	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// Metrics are the aggregates behind the dashboard's headline tiles and
// distribution charts, computed over an already-filtered view.
type Metrics struct {
	TotalRows      int               `json:"total_rows"`
	TotalInactive  int               `json:"total_inactive"`
	Regrettable    int               `json:"regrettable"`
	RiskBreakdown  []RiskCount       `json:"risk_breakdown"`
	TopCostCenters []CostCenterCount `json:"top_cost_centers"`
}

type RiskCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

type CostCenterCount struct {
	CostCenter string `json:"cost_center"`
	Count      int    `json:"count"`
}

const topCostCenterLimit = 5

// Summarize computes dashboard metrics from view rows. Risk levels appear
// in display order with unknown values kept at the end; the cost-center
// distribution covers inactive employees only, top five centers.
func Summarize(rows []Row) Metrics {
	m := Metrics{TotalRows: len(rows)}

	riskCounts := map[string]int{}
	inactiveCenters := map[string]int{}

	for _, row := range rows {
		if row.RiskLevel != "" {
			riskCounts[row.RiskLevel]++
		}
		if strings.EqualFold(row.Regrettable, "Yes") {
			m.Regrettable++
		}
		if strings.EqualFold(row.Prediction, models.PredictionInactive) {
			m.TotalInactive++
			if row.CostCenter != "" {
				inactiveCenters[row.CostCenter]++
			}
		}
	}

	for level := range riskCounts {
		m.RiskBreakdown = append(m.RiskBreakdown, RiskCount{Level: level, Count: riskCounts[level]})
	}
	sort.SliceStable(m.RiskBreakdown, func(i, j int) bool {
		ri, rj := models.RiskRank(m.RiskBreakdown[i].Level), models.RiskRank(m.RiskBreakdown[j].Level)
		if ri != rj {
			return ri > rj
		}
		return m.RiskBreakdown[i].Level < m.RiskBreakdown[j].Level
	})

	for center, count := range inactiveCenters {
		m.TopCostCenters = append(m.TopCostCenters, CostCenterCount{CostCenter: center, Count: count})
	}
	sort.SliceStable(m.TopCostCenters, func(i, j int) bool {
		if m.TopCostCenters[i].Count != m.TopCostCenters[j].Count {
			return m.TopCostCenters[i].Count > m.TopCostCenters[j].Count
		}
		return m.TopCostCenters[i].CostCenter < m.TopCostCenters[j].CostCenter
	})
	if len(m.TopCostCenters) > topCostCenterLimit {
		m.TopCostCenters = m.TopCostCenters[:topCostCenterLimit]
	}

	return m
}
