// Package reconcile merges user edits back into the authoritative table.
// Every mutating operation is a fresh two-phase cycle against the backing
// store: re-read the full table, match edited rows by composite identity,
// rewrite the full table. The copy the user edited may be stale, so it is
// never written back directly.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/cache"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/normalize"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// Result is the caller-facing outcome of a mutating operation. Message is
// a transient notice for the user; it is shown once and never persisted.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RowsAffected int    `json:"rows_affected"`
}

// Service orchestrates table loads and the read-match-write cycles.
type Service struct {
	store sheetstore.Store
	table *cache.TableCache
}

// NewService creates a reconciliation service over the given store and
// table cache.
func NewService(store sheetstore.Store, table *cache.TableCache) *Service {
	return &Service{store: store, table: table}
}

// LoadTable returns the canonical table, serving from the TTL cache when
// fresh and reading through to the store otherwise. Shape warnings from
// the store are logged, not fatal.
func (s *Service) LoadTable(ctx context.Context) ([]models.Record, error) {
	if records, ok := s.table.Get(ctx); ok {
		return records, nil
	}

	records, err := s.readAuthoritative(ctx)
	if err != nil {
		return nil, err
	}
	s.table.Set(ctx, records)
	return records, nil
}

// SaveComments merges edited comment fields into the authoritative table.
// Edits whose identity matches nothing (the row was deleted or filtered
// away between load and edit) are silent no-ops; when an identity matches
// several rows the edit is applied to all of them.
func (s *Service) SaveComments(ctx context.Context, edits []models.CommentEdit) (Result, error) {
	if len(edits) == 0 {
		return Result{Success: false, Message: "no edits submitted"}, nil
	}

	slog.Debug("save comments: reading authoritative table", "edits", len(edits))
	records, err := s.readAuthoritative(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}

	slog.Debug("save comments: matching", "rows", len(records))
	index := indexByKey(records)
	affected := 0
	for _, edit := range edits {
		for _, i := range index[edit.Key] {
			records[i].HRComment = normalize.Comment(edit.HRComment)
			records[i].OpsComment = normalize.Comment(edit.OpsComment)
			records[i].Regrettable = normalize.Comment(edit.Regrettable)
			affected++
		}
	}

	slog.Debug("save comments: writing", "rows", len(records), "affected", affected)
	if err := s.store.Save(ctx, normalize.Serialize(records)); err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}

	s.table.Invalidate(ctx)
	return Result{
		Success:      true,
		Message:      fmt.Sprintf("comments saved (%d row(s) updated)", affected),
		RowsAffected: affected,
	}, nil
}

// DeleteRows removes every authoritative row matching one of the given
// identities and rewrites the table without them. An empty selection is a
// pure notice: no store I/O happens at all.
func (s *Service) DeleteRows(ctx context.Context, keys []models.RowKey) (Result, error) {
	if len(keys) == 0 {
		return Result{Success: false, Message: "no rows selected for deletion"}, nil
	}

	slog.Debug("delete rows: reading authoritative table", "selected", len(keys))
	records, err := s.readAuthoritative(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}

	doomed := make(map[models.RowKey]bool, len(keys))
	for _, k := range keys {
		doomed[k] = true
	}

	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !doomed[r.Key()] {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)

	slog.Debug("delete rows: writing", "kept", len(kept), "removed", removed)
	if err := s.store.Save(ctx, normalize.Serialize(kept)); err != nil {
		return Result{Success: false, Message: err.Error()}, err
	}

	s.table.Invalidate(ctx)
	return Result{
		Success:      true,
		Message:      fmt.Sprintf("selected rows deleted (%d row(s) removed)", removed),
		RowsAffected: removed,
	}, nil
}

// Ping reports backing store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// readAuthoritative loads and normalizes the current store contents,
// bypassing the cache.
func (s *Service) readAuthoritative(ctx context.Context) ([]models.Record, error) {
	raw, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading table: %w", err)
	}
	for _, w := range raw.Warnings {
		slog.Warn("table shape warning", "warning", w)
	}
	records, err := normalize.Table(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing table: %w", err)
	}
	return records, nil
}

// indexByKey maps each composite identity to the positions of every row
// carrying it. Duplicate identities should not occur but are not enforced;
// keeping all positions makes edits and deletes broadcast to duplicates.
func indexByKey(records []models.Record) map[models.RowKey][]int {
	index := make(map[models.RowKey][]int, len(records))
	for i, r := range records {
		k := r.Key()
		index[k] = append(index[k], i)
	}
	return index
}
