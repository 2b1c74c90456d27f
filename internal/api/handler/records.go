package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/response"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/normalize"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/view"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// TableLoader is the read side of the reconciliation service.
type TableLoader interface {
	LoadTable(ctx context.Context) ([]models.Record, error)
}

type recordsResponse struct {
	Rows    []view.Row   `json:"rows"`
	Total   int          `json:"total"`
	Options view.Options `json:"options"`
}

// NewListRecordsHandler returns the handler for GET /api/v1/records.
// The response carries the filtered, ranked view plus the filter options
// derived from the full table, so a client can render its controls from
// one call. An empty view is a normal 200 with zero rows.
func NewListRecordsHandler(svc TableLoader) http.HandlerFunc {
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

		rows := view.Build(records, filters)
		response.JSON(w, recordsResponse{
			Rows:    rows,
			Total:   len(rows),
			Options: view.Discover(records),
		})
	}
}

// writeLoadError maps table-load failures onto the error envelope. Store
// trouble is an upstream failure, not ours; a malformed table (missing
// identity column) is reported as such instead of surfacing as a panic or
// an empty view.
func writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sheetstore.ErrStoreTimeout):
		response.Error(w, http.StatusGatewayTimeout, "STORE_TIMEOUT",
			"The backing store took too long to respond", nil)
	case errors.Is(err, sheetstore.ErrStoreUnreachable):
		response.Error(w, http.StatusBadGateway, "STORE_UNREACHABLE",
			"The backing store is not reachable", nil)
	case errors.Is(err, sheetstore.ErrStoreRejected):
		response.Error(w, http.StatusBadGateway, "STORE_REJECTED",
			"The backing store rejected the request", nil)
	case errors.Is(err, normalize.ErrMissingColumn):
		response.Error(w, http.StatusBadGateway, "TABLE_MALFORMED",
			"The tracking table is missing a required column", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
