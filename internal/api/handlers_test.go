package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/product-scraper/internal/config"
	"github.com/user/product-scraper/internal/domain"
	"github.com/user/product-scraper/internal/storage"
	"go.uber.org/zap"
)

type fakeExtractor struct {
	fetched [][]string
	records []domain.ProductRecord
}

func (f *fakeExtractor) Fetch(_ context.Context, asins []string) []domain.ProductRecord {
	f.fetched = append(f.fetched, asins)
	return f.records
}

type fakeStore struct {
	schemaErr error
	stored    [][]domain.ProductRecord
	result    storage.StoreResult
	product   *domain.Product
}

func (f *fakeStore) EnsureSchema(_ context.Context) error { return f.schemaErr }

func (f *fakeStore) StoreProducts(_ context.Context, records []domain.ProductRecord) storage.StoreResult {
	f.stored = append(f.stored, records)
	return f.result
}

func (f *fakeStore) GetProduct(_ context.Context, asin string) (*domain.Product, error) {
	if f.product != nil && f.product.ASIN == asin {
		return f.product, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }

type fakeCache struct {
	recent map[string]bool
	marked []string
}

func (f *fakeCache) IsRecentlyScraped(_ context.Context, asin string) (bool, error) {
	return f.recent[asin], nil
}

func (f *fakeCache) MarkScraped(_ context.Context, asin string, _ time.Duration) error {
	f.marked = append(f.marked, asin)
	return nil
}

func (f *fakeCache) Ping(_ context.Context) error { return nil }

func newTestServer(ex Fetcher, st Store, cache DedupCache) *Server {
	cfg := &config.Config{ServerPort: "0", DedupDays: 2}
	return NewServer(cfg, ex, st, cache, nil, zap.NewNop())
}

func postScrape(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleScrapeRequestDeduplicatesInput(t *testing.T) {
	ex := &fakeExtractor{records: []domain.ProductRecord{{ASIN: "B000000001", Title: "Widget"}}}
	st := &fakeStore{result: storage.StoreResult{Stored: 1}}
	cache := &fakeCache{}
	s := newTestServer(ex, st, cache)

	rec := postScrape(t, s, domain.ScrapeRequest{ASINs: []string{"B000000001", "B000000001", "B000000002"}})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Success", resp.Message)
	assert.Equal(t, []string{"B000000001", "B000000002"}, resp.ASINs)

	require.Len(t, ex.fetched, 1)
	assert.Equal(t, []string{"B000000001", "B000000002"}, ex.fetched[0])
	require.Len(t, st.stored, 1)
	assert.Equal(t, []string{"B000000001"}, cache.marked)
}

func TestHandleScrapeRequestSkipsRecentlyScraped(t *testing.T) {
	ex := &fakeExtractor{}
	s := newTestServer(ex, &fakeStore{}, &fakeCache{recent: map[string]bool{"B000000001": true}})

	rec := postScrape(t, s, domain.ScrapeRequest{ASINs: []string{"B000000001", "B000000002"}})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ex.fetched, 1)
	assert.Equal(t, []string{"B000000002"}, ex.fetched[0])
}

func TestHandleScrapeRequestForceBypassesCache(t *testing.T) {
	ex := &fakeExtractor{}
	s := newTestServer(ex, &fakeStore{}, &fakeCache{recent: map[string]bool{"B000000001": true}})

	rec := postScrape(t, s, domain.ScrapeRequest{ASINs: []string{"B000000001"}, Force: true})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ex.fetched, 1)
	assert.Equal(t, []string{"B000000001"}, ex.fetched[0])
}

func TestHandleScrapeRequestRejectsBadBody(t *testing.T) {
	s := newTestServer(&fakeExtractor{}, &fakeStore{}, &fakeCache{})

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScrapeRequestRejectsEmptyList(t *testing.T) {
	s := newTestServer(&fakeExtractor{}, &fakeStore{}, &fakeCache{})

	rec := postScrape(t, s, domain.ScrapeRequest{ASINs: []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScrapeRequestSchemaFailureIsFatal(t *testing.T) {
	ex := &fakeExtractor{}
	st := &fakeStore{schemaErr: assert.AnError}
	s := newTestServer(ex, st, &fakeCache{})

	rec := postScrape(t, s, domain.ScrapeRequest{ASINs: []string{"B000000001"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, ex.fetched, "no scraping when the database is unavailable")
}

func TestHandleGetProduct(t *testing.T) {
	st := &fakeStore{product: &domain.Product{
		ProductID:  7,
		ASIN:       "B000123456",
		Title:      "Widget",
		ImageLinks: []string{"https://img.test/1.jpg"},
	}}
	s := newTestServer(&fakeExtractor{}, st, &fakeCache{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/B000123456", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Widget", got.Title)
}

func TestHandleGetProductNotFound(t *testing.T) {
	s := newTestServer(&fakeExtractor{}, &fakeStore{}, &fakeCache{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/B000404404", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
