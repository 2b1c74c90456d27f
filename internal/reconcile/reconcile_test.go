package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/cache"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/normalize"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/reconcile"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
	"github.com/pradeeprawatbgo/attrition-dashboard/pkg/models"
)

// --- mock store ---

type mockStore struct {
	table sheetstore.RawTable

	loadErr error
	saveErr error

	loads int
	saves int
}

func (m *mockStore) Load(ctx context.Context) (sheetstore.RawTable, error) {
	m.loads++
	if m.loadErr != nil {
		return sheetstore.RawTable{}, m.loadErr
	}
	return m.table, nil
}

func (m *mockStore) Save(ctx context.Context, table sheetstore.RawTable) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.table = table
	return nil
}

func (m *mockStore) Ping(ctx context.Context) error { return nil }

// --- in-memory cache ---

type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

func (c *memCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

// --- helpers ---

func trackingTable() sheetstore.RawTable {
	return normalize.Serialize([]models.Record{
		{EmployeeID: "E1", ReportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Probability: 0.3, HRComment: "old note"},
		{EmployeeID: "E2", ReportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Probability: 0.9},
		{EmployeeID: "E3", ReportDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Probability: 0.5},
	})
}

func newService(store *mockStore) (*reconcile.Service, *memCache) {
	mc := newMemCache()
	return reconcile.NewService(store, cache.NewTableCache(mc, time.Minute)), mc
}

func key(id, date string) models.RowKey {
	return models.RowKey{EmployeeID: id, ReportDate: date}
}

// --- LoadTable ---

func TestLoadTable_ReadsThroughAndCaches(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)
	ctx := context.Background()

	records, err := svc.LoadTable(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 1, store.loads)

	// second load is served from cache
	records, err = svc.LoadTable(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 1, store.loads)
}

func TestLoadTable_StoreError(t *testing.T) {
	store := &mockStore{loadErr: sheetstore.ErrStoreUnreachable}
	svc, _ := newService(store)

	_, err := svc.LoadTable(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sheetstore.ErrStoreUnreachable)
}

// --- SaveComments ---

func TestSaveComments_UpdatesMatchingRow(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)
	ctx := context.Background()

	result, err := svc.SaveComments(ctx, []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "spoke today", OpsComment: "backfill open", Regrettable: "Yes"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RowsAffected)

	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "spoke today", saved[0].HRComment)
	assert.Equal(t, "backfill open", saved[0].OpsComment)
	assert.Equal(t, "Yes", saved[0].Regrettable)
	// untouched rows survive the full rewrite unchanged
	assert.Equal(t, "", saved[1].HRComment)
}

func TestSaveComments_StaleIdentityIsSilentNoOp(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)

	result, err := svc.SaveComments(context.Background(), []models.CommentEdit{
		{Key: key("E99", "2024-03-01"), HRComment: "ghost"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.RowsAffected)

	// table rewritten without the ghost row appearing anywhere
	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestSaveComments_BroadcastsToDuplicateIdentities(t *testing.T) {
	dup := normalize.Serialize([]models.Record{
		{EmployeeID: "E1", ReportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{EmployeeID: "E1", ReportDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	})
	store := &mockStore{table: dup}
	svc, _ := newService(store)

	result, err := svc.SaveComments(context.Background(), []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "applies twice"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsAffected)

	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	assert.Equal(t, "applies twice", saved[0].HRComment)
	assert.Equal(t, "applies twice", saved[1].HRComment)
}

func TestSaveComments_NormalizesPlaceholders(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)

	_, err := svc.SaveComments(context.Background(), []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "nan"},
	})
	require.NoError(t, err)

	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	assert.Equal(t, "", saved[0].HRComment)
}

func TestSaveComments_EmptyEditsNoIO(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)

	result, err := svc.SaveComments(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, store.loads)
	assert.Zero(t, store.saves)
}

func TestSaveComments_ReadsFreshNotCache(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)
	ctx := context.Background()

	// populate the cache, then mutate the store behind its back
	_, err := svc.LoadTable(ctx)
	require.NoError(t, err)
	store.table = normalize.Serialize([]models.Record{
		{EmployeeID: "E7", ReportDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	})

	result, err := svc.SaveComments(ctx, []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "stale target"},
	})
	require.NoError(t, err)
	// E1 no longer exists in the authoritative table, so nothing matched
	assert.Equal(t, 0, result.RowsAffected)
}

func TestSaveComments_InvalidatesCache(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, mc := newService(store)
	ctx := context.Background()

	_, err := svc.LoadTable(ctx)
	require.NoError(t, err)
	require.Contains(t, mc.data, cache.TableKey())

	_, err = svc.SaveComments(ctx, []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "note"},
	})
	require.NoError(t, err)
	assert.NotContains(t, mc.data, cache.TableKey())
}

func TestSaveComments_SaveFailure(t *testing.T) {
	store := &mockStore{table: trackingTable(), saveErr: sheetstore.ErrStoreRejected}
	svc, _ := newService(store)

	result, err := svc.SaveComments(context.Background(), []models.CommentEdit{
		{Key: key("E1", "2024-03-01"), HRComment: "note"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sheetstore.ErrStoreRejected)
	assert.False(t, result.Success)
}

// --- DeleteRows ---

func TestDeleteRows_RemovesSelectedRows(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)

	result, err := svc.DeleteRows(context.Background(), []models.RowKey{
		key("E1", "2024-03-01"),
		key("E3", "2024-03-02"),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RowsAffected)

	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "E2", saved[0].EmployeeID)
}

func TestDeleteRows_EmptySelectionNoIO(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)

	result, err := svc.DeleteRows(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no rows selected for deletion", result.Message)
	assert.Zero(t, store.loads)
	assert.Zero(t, store.saves)
}

func TestDeleteRows_IdempotentForMissingIdentity(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, _ := newService(store)
	ctx := context.Background()

	keys := []models.RowKey{key("E1", "2024-03-01")}

	first, err := svc.DeleteRows(ctx, keys)
	require.NoError(t, err)
	assert.Equal(t, 1, first.RowsAffected)

	// deleting again matches nothing but still succeeds
	second, err := svc.DeleteRows(ctx, keys)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.RowsAffected)

	saved, err := normalize.Table(store.table)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestDeleteRows_InvalidatesCache(t *testing.T) {
	store := &mockStore{table: trackingTable()}
	svc, mc := newService(store)
	ctx := context.Background()

	_, err := svc.LoadTable(ctx)
	require.NoError(t, err)

	_, err = svc.DeleteRows(ctx, []models.RowKey{key("E2", "2024-03-01")})
	require.NoError(t, err)
	assert.NotContains(t, mc.data, cache.TableKey())
}

func TestDeleteRows_LoadFailureLeavesTableAlone(t *testing.T) {
	store := &mockStore{loadErr: errors.New("boom")}
	svc, _ := newService(store)

	result, err := svc.DeleteRows(context.Background(), []models.RowKey{key("E1", "2024-03-01")})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, store.saves)
}
