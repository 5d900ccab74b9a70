package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scrapeRequestTimeout bounds a whole scrape-and-store batch. Each page fetch
// is itself bounded, so this mostly guards against very large batches.
const scrapeRequestTimeout = 15 * time.Minute

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(scrapeRequestTimeout))

	r.Get("/metrics", promhttp.Handler().(http.HandlerFunc))
	r.Get("/api/health", s.handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/products", s.handleScrapeRequest)
		r.Get("/products/{asin}", s.handleGetProduct)
	})

	return r
}
