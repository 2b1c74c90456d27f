package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// TableCache shields the store adapter's load path behind a TTL-bounded
// copy of the canonical table. Cache trouble is never fatal: a failed get
// reads through to the store, a failed set just means the next load does.
type TableCache struct {
	cache Cache
	ttl   time.Duration
}

// NewTableCache creates a table cache with the given TTL.
func NewTableCache(c Cache, ttl time.Duration) *TableCache {
	return &TableCache{cache: c, ttl: ttl}
}

// Get returns the cached canonical table, if present and fresh.
func (t *TableCache) Get(ctx context.Context) ([]models.Record, bool) {
	data, found, err := t.cache.Get(ctx, TableKey())
	if err != nil {
		slog.Warn("table cache get failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("table cache entry corrupt, dropping", "error", err)
		t.Invalidate(ctx)
		return nil, false
	}
	return records, true
}

// Set stores the canonical table for the configured TTL.
func (t *TableCache) Set(ctx context.Context, records []models.Record) {
	data, err := json.Marshal(records)
	if err != nil {
		slog.Warn("table cache encode failed", "error", err)
		return
	}
	if err := t.cache.Set(ctx, TableKey(), data, t.ttl); err != nil {
		slog.Warn("table cache set failed", "error", err)
	}
}

// Invalidate drops the cached table so the next load re-reads the store.
// Mutating operations call this on success; without it a reload inside the
// TTL window would serve pre-edit data.
func (t *TableCache) Invalidate(ctx context.Context) {
	if err := t.cache.Delete(ctx, TableKey()); err != nil {
		slog.Warn("table cache invalidate failed", "error", err)
	}
}
