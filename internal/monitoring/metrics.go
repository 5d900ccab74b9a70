package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScrapedTotal   *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	StoredTotal    prometheus.Counter
	ColumnsAdded   *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScrapedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_products_scraped_total",
			Help: "The total number of product pages processed, by outcome",
		}, []string{"outcome"}), // 'success', 'invalid_asin', 'failed'
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_page_duration_seconds",
			Help:    "Time spent extracting a single product page",
			Buckets: []float64{1, 2.5, 5, 10, 15, 30, 60},
		}),
		StoredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_products_stored_total",
			Help: "The total number of products written to the database",
		}),
		ColumnsAdded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_dynamic_columns_added_total",
			Help: "The total number of columns added to the dynamic attribute tables",
		}, []string{"table"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'field_extraction', 'db_store_failed'
	}
}

func (m *Metrics) IncScraped(outcome string) {
	if m == nil {
		return
	}
	m.ScrapedTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

func (m *Metrics) IncStored() {
	if m == nil {
		return
	}
	m.StoredTotal.Inc()
}

func (m *Metrics) IncColumnsAdded(table string, n int) {
	if m == nil {
		return
	}
	m.ColumnsAdded.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
