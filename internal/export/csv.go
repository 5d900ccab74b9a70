// Package export provides the optional delimited-text sink for scraped records.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/user/product-scraper/internal/domain"
)

// naSentinel is written for empty or absent values.
const naSentinel = "NA"

var header = []string{"asin", "title", "description", "image_links", "details", "overview"}

// WriteCSV writes one header line plus one line per record to filename,
// overwriting any previous export.
func WriteCSV(filename string, records []domain.ProductRecord) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range records {
		if err := w.Write(recordRow(&records[i])); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func recordRow(rec *domain.ProductRecord) []string {
	return []string{
		orNA(rec.ASIN),
		orNA(rec.Title),
		orNA(rec.Description),
		orNA(strings.Join(rec.ImageLinks, "; ")),
		orNA(renderAttrs(rec.Details)),
		orNA(renderAttrs(rec.Overview)),
	}
}

// renderAttrs flattens an attribute map as "key=value" pairs in key order.
func renderAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+attrs[key])
	}
	return strings.Join(pairs, "; ")
}

func orNA(s string) string {
	if s == "" {
		return naSentinel
	}
	return s
}
