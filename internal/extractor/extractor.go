package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/product-scraper/internal/domain"
	"github.com/user/product-scraper/internal/monitoring"
	"go.uber.org/zap"
)

// Extractor drives a page-fetching session across a batch of identifiers.
type Extractor struct {
	fetcher PageFetcher
	parser  *Parser
	baseURL string
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func New(fetcher PageFetcher, baseURL string, m *monitoring.Metrics, l *zap.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		parser:  NewParser(l),
		baseURL: baseURL,
		metrics: m,
		logger:  l,
	}
}

// Fetch scrapes each identifier's detail page in turn, best-effort. A failure
// on one identifier never aborts the rest, so the returned slice may be
// shorter than asins. Output order follows processing order, not input order.
func (e *Extractor) Fetch(ctx context.Context, asins []string) []domain.ProductRecord {
	start := time.Now()
	records := make([]domain.ProductRecord, 0, len(asins))

	for _, asin := range asins {
		rec, err := e.fetchOne(ctx, asin)
		if err != nil {
			switch {
			case errors.Is(err, ErrProductNotFound):
				e.logger.Warn("product not found or invalid ASIN", zap.String("asin", asin))
				e.metrics.IncScraped("invalid_asin")
			default:
				e.logger.Error("failed to scrape product", zap.String("asin", asin), zap.Error(err))
				e.metrics.IncScraped("failed")
				e.metrics.IncErrorsTotal("scrape_failed")
			}
			continue
		}

		records = append(records, *rec)
		e.metrics.IncScraped("success")
		e.logger.Info("product scraped",
			zap.String("asin", asin),
			zap.Int("images", len(rec.ImageLinks)),
			zap.Int("detail_attrs", len(rec.Details)),
			zap.Int("overview_attrs", len(rec.Overview)))
	}

	e.logger.Info("scrape batch finished",
		zap.Int("attempted", len(asins)),
		zap.Int("succeeded", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records
}

func (e *Extractor) fetchOne(ctx context.Context, asin string) (*domain.ProductRecord, error) {
	pageStart := time.Now()
	url := fmt.Sprintf("%s/dp/%s", e.baseURL, asin)

	htmlContent, err := e.fetcher.ProductPage(ctx, url)
	if err != nil {
		return nil, err
	}

	rec, err := e.parser.ParseProductPage(asin, htmlContent)
	if err != nil {
		return nil, err
	}
	rec.ScrapedAt = time.Now()

	e.metrics.ObserveScrapeDuration(time.Since(pageStart))
	return rec, nil
}
