package handler

import (
	"net/http"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/response"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/export"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
)

// NewExportHandler returns the handler for GET /api/v1/records/export.
// It renders exactly the filtered view as CSV, honoring an optional
// ordered column selection, and names the download after the export date.
func NewExportHandler(svc TableLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		columns := parseColumns(r)

		records, err := svc.LoadTable(r.Context())
		if err != nil {
			writeLoadError(w, err)
			return
		}

		rows := view.Build(records, filters)
		body, err := export.CSV(rows, columns)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		response.Download(w, export.Filename(time.Now()), "text/csv", body)
	}
}
