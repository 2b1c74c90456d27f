package export_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/export"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

func exportRows() []view.Row {
	return []view.Row{
		{Seq: 1, Record: models.Record{
			EmployeeID:  "E2",
			ReportDate:  time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
			Probability: 0.9,
			RiskLevel:   models.RiskSevere,
			HRComment:   "flagged, manager informed",
		}},
		{Seq: 2, Record: models.Record{
			EmployeeID:  "E1",
			ReportDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Probability: 0.3,
			RiskLevel:   models.RiskMild,
		}},
	}
}

func parseCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSV_AllColumns(t *testing.T) {
	b, err := export.CSV(exportRows(), nil)
	require.NoError(t, err)

	records := parseCSV(t, b)
	require.Len(t, records, 3)
	assert.Equal(t, models.CanonicalHeader, records[0])

	// rows come out in view order, dates date-only
	assert.Equal(t, "2024-03-10", records[1][0])
	assert.Equal(t, "E2", records[1][1])
	assert.Equal(t, "2024-03-01", records[2][0])
}

func TestCSV_ColumnSelection(t *testing.T) {
	b, err := export.CSV(exportRows(), []string{models.ColEmployeeID, models.ColProbability})
	require.NoError(t, err)

	records := parseCSV(t, b)
	assert.Equal(t, []string{models.ColEmployeeID, models.ColProbability}, records[0])
	assert.Equal(t, []string{"E2", "0.9"}, records[1])
	assert.Equal(t, []string{"E1", "0.3"}, records[2])
}

func TestCSV_UnknownColumn(t *testing.T) {
	_, err := export.CSV(exportRows(), []string{"Select"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Select")
}

func TestCSV_CommaInCell(t *testing.T) {
	b, err := export.CSV(exportRows(), []string{models.ColEmployeeID, models.ColHRComment})
	require.NoError(t, err)

	records := parseCSV(t, b)
	assert.Equal(t, "flagged, manager informed", records[1][1])
}

func TestCSV_NoRows(t *testing.T) {
	b, err := export.CSV(nil, nil)
	require.NoError(t, err)

	records := parseCSV(t, b)
	require.Len(t, records, 1)
	assert.Equal(t, models.CanonicalHeader, records[0])
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "attrition_tracking_20240315.csv", export.Filename(now))
}
