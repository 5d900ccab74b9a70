package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/user/product-scraper/internal/config"
	"github.com/user/product-scraper/internal/domain"
	"github.com/user/product-scraper/internal/monitoring"
	"github.com/user/product-scraper/internal/storage"
	"go.uber.org/zap"
)

// Fetcher is the extractor surface the API depends on.
type Fetcher interface {
	Fetch(ctx context.Context, asins []string) []domain.ProductRecord
}

// Store is the persistence surface the API depends on.
type Store interface {
	EnsureSchema(ctx context.Context) error
	StoreProducts(ctx context.Context, records []domain.ProductRecord) storage.StoreResult
	GetProduct(ctx context.Context, asin string) (*domain.Product, error)
	Ping(ctx context.Context) error
}

// DedupCache filters identifiers scraped within the dedup window.
type DedupCache interface {
	IsRecentlyScraped(ctx context.Context, asin string) (bool, error)
	MarkScraped(ctx context.Context, asin string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	extractor  Fetcher
	store      Store
	cache      DedupCache
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, ex Fetcher, st Store, cache DedupCache, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:    cfg,
		extractor: ex,
		store:     st,
		cache:     cache,
		metrics:   m,
		logger:    l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// Scrape batches run synchronously inside the request, so the write
		// side has to stay open as long as the router timeout allows.
		WriteTimeout: scrapeRequestTimeout + 30*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
