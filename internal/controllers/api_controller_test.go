package controllers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"seedvault/internal/seed"
	"seedvault/internal/services"
	"seedvault/internal/testutil"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSeedService struct {
	stored      map[string]services.StoreSeedInput
	cleared     []string
	statusCalls int
	storeErr    error
	statusErr   error
	clearErr    error
	resolved    services.ResolvedSeed
	pending     bool
}

func newMockSeedService() *mockSeedService {
	return &mockSeedService{stored: make(map[string]services.StoreSeedInput)}
}

func (m *mockSeedService) StoreSeed(kind string, input services.StoreSeedInput) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored[kind] = input
	return nil
}

func (m *mockSeedService) ClearSeed(kind string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = append(m.cleared, kind)
	return nil
}

func (m *mockSeedService) Status(kind string) (services.SeedStatus, error) {
	m.statusCalls++
	if m.statusErr != nil {
		return services.SeedStatus{}, m.statusErr
	}
	return services.SeedStatus{Kind: kind, Backend: "preferences", HasSeed: true}, nil
}

func (m *mockSeedService) ResolveLatest() services.ResolvedSeed { return m.resolved }
func (m *mockSeedService) HasPendingWrites() bool               { return m.pending }
func (m *mockSeedService) Close()                               {}

type memCache struct {
	values map[string][]byte
}

func newMemCache() *memCache { return &memCache{values: make(map[string][]byte)} }

func (c *memCache) Get(key string) ([]byte, bool) {
	v, ok := c.values[key]
	return v, ok
}
func (c *memCache) Set(key string, value []byte) { c.values[key] = value }
func (c *memCache) Del(key string)               { delete(c.values, key) }

func newTestController() (*ApiController, *mockSeedService, *memCache) {
	service := newMockSeedService()
	cache := newMemCache()
	return NewApiController(&testutil.MockLogger{}, service, cache), service, cache
}

func TestLatestStatus_ServesAndCaches(t *testing.T) {
	ac, service, cache := newTestController()

	rec := httptest.NewRecorder()
	ac.LatestStatus(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status services.SeedStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, services.LatestSeed, status.Kind)
	assert.True(t, status.HasSeed)

	_, ok := cache.Get("status:latest")
	assert.True(t, ok)

	// A second request is served from cache without touching the service.
	rec = httptest.NewRecorder()
	ac.LatestStatus(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, service.statusCalls)
}

func TestSafeStatus(t *testing.T) {
	ac, _, _ := newTestController()

	rec := httptest.NewRecorder()
	ac.SafeStatus(rec, httptest.NewRequest(http.MethodGet, "/safe-seed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.SeedStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, services.SafeSeed, status.Kind)
}

func TestStatus_ServiceError(t *testing.T) {
	ac, service, _ := newTestController()
	service.statusErr = errors.New("boom")

	rec := httptest.NewRecorder()
	ac.LatestStatus(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResolveSeed_Success(t *testing.T) {
	ac, service, _ := newTestController()
	service.resolved = services.ResolvedSeed{
		Data:         "decoded payload",
		Signature:    "sig",
		Result:       seed.LoadSuccess,
		FromSafeSeed: true,
	}

	rec := httptest.NewRecorder()
	ac.ResolveSeed(rec, httptest.NewRequest(http.MethodGet, "/resolve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Result)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("decoded payload")), resp.Data)
	assert.Equal(t, "sig", resp.Signature)
	assert.True(t, resp.FromSafeSeed)
}

func TestResolveSeed_Empty(t *testing.T) {
	ac, service, _ := newTestController()
	service.resolved = services.ResolvedSeed{Result: seed.LoadEmpty}

	rec := httptest.NewRecorder()
	ac.ResolveSeed(rec, httptest.NewRequest(http.MethodGet, "/resolve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty", resp.Result)
	assert.Empty(t, resp.Data)
	assert.Empty(t, resp.Signature)
}

func storeBody(t *testing.T, payload string) string {
	t.Helper()
	body, err := json.Marshal(storeSeedRequest{
		Data:             base64.StdEncoding.EncodeToString([]byte(payload)),
		Signature:        "sig",
		Milestone:        130,
		SeedDate:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		SessionCountry:   "de",
		PermanentCountry: "us",
	})
	require.NoError(t, err)
	return string(body)
}

func TestStoreLatest(t *testing.T) {
	ac, service, cache := newTestController()
	cache.Set("status:latest", []byte("stale"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader(storeBody(t, "raw payload")))
	ac.StoreLatest(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	input, ok := service.stored[services.LatestSeed]
	require.True(t, ok)
	assert.Equal(t, []byte("raw payload"), input.Payload)
	assert.Equal(t, "sig", input.Signature)
	assert.Equal(t, 130, input.Milestone)
	assert.Equal(t, "us", input.PermanentCountry)

	// The cached status is stale now.
	_, ok = cache.Get("status:latest")
	assert.False(t, ok)
}

func TestStoreSafe(t *testing.T) {
	ac, service, _ := newTestController()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/safe-seed", strings.NewReader(storeBody(t, "safe payload")))
	ac.StoreSafe(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	input, ok := service.stored[services.SafeSeed]
	require.True(t, ok)
	assert.Equal(t, []byte("safe payload"), input.Payload)
}

func TestStoreSeed_BadJSON(t *testing.T) {
	ac, _, _ := newTestController()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader("{ not json"))
	ac.StoreLatest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreSeed_BadBase64(t *testing.T) {
	ac, _, _ := newTestController()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader(`{"data":"!!not base64!!"}`))
	ac.StoreLatest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreSeed_ServiceError(t *testing.T) {
	ac, service, _ := newTestController()
	service.storeErr = errors.New("disk full")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/seed", strings.NewReader(storeBody(t, "payload")))
	ac.StoreLatest(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestClearLatest(t *testing.T) {
	ac, service, cache := newTestController()
	cache.Set("status:latest", []byte("stale"))

	rec := httptest.NewRecorder()
	ac.ClearLatest(rec, httptest.NewRequest(http.MethodDelete, "/seed", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{services.LatestSeed}, service.cleared)
	_, ok := cache.Get("status:latest")
	assert.False(t, ok)
}

func TestClearSafe_ServiceError(t *testing.T) {
	ac, service, _ := newTestController()
	service.clearErr = errors.New("boom")

	rec := httptest.NewRecorder()
	ac.ClearSafe(rec, httptest.NewRequest(http.MethodDelete, "/safe-seed", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
