package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/cache"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/reconcile"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
)

// ─── mock store ──────────────────────────────────────────────────────────────

type testStore struct {
	pingErr error
}

func (s *testStore) Load(_ context.Context) (sheetstore.RawTable, error) {
	return sheetstore.RawTable{}, nil
}
func (s *testStore) Save(_ context.Context, _ sheetstore.RawTable) error { return nil }
func (s *testStore) Ping(_ context.Context) error                        { return s.pingErr }

var _ sheetstore.Store = (*testStore)(nil)

// ─── mock cache ──────────────────────────────────────────────────────────────

type testCache struct {
	pingErr error
}

func (c *testCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *testCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *testCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *testCache) Ping(_ context.Context) error                                     { return c.pingErr }
func (c *testCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

var _ cache.Cache = (*testCache)(nil)

func testService(store sheetstore.Store, c cache.Cache) *reconcile.Service {
	return reconcile.NewService(store, cache.NewTableCache(c, time.Minute))
}

// ─── health handler tests ───────────────────────────────────────────────────

func TestHealthHandler_AllOK(t *testing.T) {
	c := &testCache{}
	h := healthHandler(testService(&testStore{}, c), c)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	services := data["services"].(map[string]any)
	assert.Equal(t, "ok", services["store"])
	assert.Equal(t, "ok", services["cache"])
}

func TestHealthHandler_StoreDegraded(t *testing.T) {
	c := &testCache{}
	h := healthHandler(testService(&testStore{pingErr: errors.New("connection refused")}, c), c)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "DEGRADED", errBody["code"])
	details := errBody["details"].(map[string]any)
	assert.Equal(t, "degraded", details["store"])
	assert.Equal(t, "ok", details["cache"])
}

func TestHealthHandler_CacheDegraded(t *testing.T) {
	c := &testCache{pingErr: errors.New("redis down")}
	h := healthHandler(testService(&testStore{}, c), c)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
