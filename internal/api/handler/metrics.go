package handler

import (
	"net/http"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/response"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
)

// NewMetricsHandler returns the handler for GET /api/v1/metrics. Metrics
// are computed over the same filtered view the records endpoint serves,
// so the tiles always agree with the visible table.
func NewMetricsHandler(svc TableLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseFilters(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		records, err := svc.LoadTable(r.Context())
		if err != nil {
			writeLoadError(w, err)
			return
		}

		response.JSON(w, view.Summarize(view.Build(records, filters)))
	}
}
