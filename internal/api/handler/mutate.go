package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/response"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/reconcile"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// Reconciler is the write side of the reconciliation service.
type Reconciler interface {
	SaveComments(ctx context.Context, edits []models.CommentEdit) (reconcile.Result, error)
	DeleteRows(ctx context.Context, keys []models.RowKey) (reconcile.Result, error)
}

// NewSaveCommentsHandler returns the handler for POST /api/v1/records/comments.
// The body carries only edited rows; rows whose identity no longer exists
// in the authoritative table are dropped silently, reflected in the
// returned rows_affected count.
func NewSaveCommentsHandler(svc Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Edits []models.CommentEdit `json:"edits"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		for _, edit := range req.Edits {
			if edit.Key.EmployeeID == "" || edit.Key.ReportDate == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"every edit needs employee_id and report_date", nil)
				return
			}
		}

		result, err := svc.SaveComments(r.Context(), req.Edits)
		if err != nil {
			writeLoadError(w, err)
			return
		}
		response.JSON(w, result)
	}
}

// NewDeleteRowsHandler returns the handler for POST /api/v1/records/delete.
// An empty selection is not an error: the service answers with a notice
// and touches nothing.
func NewDeleteRowsHandler(svc Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Keys []models.RowKey `json:"keys"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		for _, key := range req.Keys {
			if key.EmployeeID == "" || key.ReportDate == "" {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"every key needs employee_id and report_date", nil)
				return
			}
		}

		result, err := svc.DeleteRows(r.Context(), req.Keys)
		if err != nil {
			writeLoadError(w, err)
			return
		}
		response.JSON(w, result)
	}
}
