package domain

import "time"

// ScrapeRequest is the payload for the API
type ScrapeRequest struct {
	ASINs []string `json:"asins"`
	Force bool     `json:"force"` // Bypass the recently-scraped rule
}

// ScrapeResponse reports which identifiers were attempted. Per-identifier
// failure detail lives in the log stream, not in the response.
type ScrapeResponse struct {
	Message string   `json:"message"`
	ASINs   []string `json:"asins"`
}

// ProductRecord holds the fields extracted from one product detail page.
// Title and Description are empty strings when the page element was absent;
// a record with an empty Title is dropped at persistence time.
type ProductRecord struct {
	ASIN        string
	Title       string
	Description string
	ImageLinks  []string
	Details     map[string]string // specification table, free-form keys
	Overview    map[string]string // overview table, free-form keys
	ScrapedAt   time.Time
}

// Product is the persisted view returned by the lookup endpoint.
type Product struct {
	ProductID   int64     `json:"product_id"`
	ASIN        string    `json:"asin"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageLinks  []string  `json:"image_links"`
	ScrapedAt   time.Time `json:"scraped_at"`
}
