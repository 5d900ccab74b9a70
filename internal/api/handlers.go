package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/product-scraper/internal/domain"
	"github.com/user/product-scraper/internal/export"
	"github.com/user/product-scraper/internal/storage"
	"go.uber.org/zap"
)

// handleScrapeRequest runs the extract-and-persist pipeline synchronously for
// a batch of ASINs and reports which identifiers were processed. Per-ASIN
// failure detail is not returned; it lives in the log stream.
func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.ASINs) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "ASIN list cannot be empty")
		return
	}

	ctx := r.Context()
	toScrape := s.filterASINs(ctx, dedupe(req.ASINs), req.Force)
	if len(toScrape) == 0 {
		s.logger.Info("no new ASINs to scrape")
		s.respondWithJSON(w, http.StatusOK, domain.ScrapeResponse{Message: "Success", ASINs: []string{}})
		return
	}

	if err := s.store.EnsureSchema(ctx); err != nil {
		s.logger.Error("failed to ensure schema", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Database unavailable")
		return
	}

	records := s.extractor.Fetch(ctx, toScrape)

	if len(records) > 0 {
		res := s.store.StoreProducts(ctx, records)
		s.logger.Info("store batch finished",
			zap.Int("stored", res.Stored),
			zap.Int("duplicates", res.Duplicates),
			zap.Int("skipped_invalid", res.SkippedInvalid),
			zap.Int("failed", res.Failed))

		if s.config.ExportFile != "" {
			if err := export.WriteCSV(s.config.ExportFile, records); err != nil {
				s.logger.Error("csv export failed", zap.Error(err))
				s.metrics.IncErrorsTotal("csv_export_failed")
			}
		}
	}

	ttl := time.Duration(s.config.DedupDays) * 24 * time.Hour
	for i := range records {
		if err := s.cache.MarkScraped(ctx, records[i].ASIN, ttl); err != nil {
			s.logger.Warn("failed to mark ASIN as scraped",
				zap.String("asin", records[i].ASIN), zap.Error(err))
		}
	}

	s.respondWithJSON(w, http.StatusOK, domain.ScrapeResponse{Message: "Success", ASINs: toScrape})
}

// filterASINs drops identifiers scraped within the dedup window unless the
// request forces a re-scrape. Cache errors fail open.
func (s *Server) filterASINs(ctx context.Context, asins []string, force bool) []string {
	if force {
		return asins
	}
	kept := make([]string, 0, len(asins))
	for _, asin := range asins {
		recent, err := s.cache.IsRecentlyScraped(ctx, asin)
		if err != nil {
			s.logger.Error("failed to check scraped cache",
				zap.String("asin", asin), zap.Error(err))
		}
		if recent {
			s.logger.Info("skipping recently scraped ASIN", zap.String("asin", asin))
			continue
		}
		kept = append(kept, asin)
	}
	return kept
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	asin := chi.URLParam(r, "asin")

	product, err := s.store.GetProduct(r.Context(), asin)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		s.logger.Error("failed to get product", zap.String("asin", asin), zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve product")
		return
	}

	s.respondWithJSON(w, http.StatusOK, product)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.store.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.cache.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// dedupe removes repeated identifiers, first occurrence wins.
func dedupe(asins []string) []string {
	seen := make(map[string]struct{}, len(asins))
	unique := make([]string, 0, len(asins))
	for _, asin := range asins {
		if _, ok := seen[asin]; ok {
			continue
		}
		seen[asin] = struct{}{}
		unique = append(unique, asin)
	}
	return unique
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
