package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/product-scraper/internal/domain"
	"go.uber.org/zap"
)

const (
	titleSelector         = "#productTitle"
	descriptionSelector   = "#productDescription"
	thumbnailSelector     = "li.imageThumbnail"
	detailTableSelector   = "#productDetails_detailBullets_sections1"
	overviewTableSelector = "#productOverview_feature_div div table"
)

// Parser turns a product detail page snapshot into a ProductRecord.
// Field-level extraction failures degrade to empty values and a warning;
// only a missing title element invalidates the whole page.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseProductPage parses htmlContent for the given ASIN. It returns
// ErrProductNotFound when the title element is absent.
func (p *Parser) ParseProductPage(asin, htmlContent string) (*domain.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	title := doc.Find(titleSelector)
	if title.Length() == 0 {
		return nil, ErrProductNotFound
	}

	rec := &domain.ProductRecord{
		ASIN:       asin,
		Title:      strings.TrimSpace(title.First().Text()),
		ImageLinks: []string{},
	}

	description := doc.Find(descriptionSelector)
	if description.Length() == 0 {
		p.logger.Warn("could not fetch description", zap.String("asin", asin))
	} else {
		rec.Description = strings.TrimSpace(description.First().Text())
	}

	rec.ImageLinks = p.parseImages(doc, asin)
	rec.Details = p.parseDetailTable(doc, asin)
	rec.Overview = p.parseOverviewTable(doc, asin)

	return rec, nil
}

// parseImages collects thumbnail image sources. A single broken thumbnail is
// skipped, not the whole list.
func (p *Parser) parseImages(doc *goquery.Document, asin string) []string {
	links := []string{}
	doc.Find(thumbnailSelector).Each(func(i int, s *goquery.Selection) {
		src, ok := s.Find("img").First().Attr("src")
		if !ok || src == "" {
			p.logger.Warn("thumbnail without image source",
				zap.String("asin", asin), zap.Int("index", i))
			return
		}
		links = append(links, src)
	})
	return links
}

// parseDetailTable reads the detail-bullets table, one th/td pair per row.
func (p *Parser) parseDetailTable(doc *goquery.Document, asin string) map[string]string {
	details := make(map[string]string)
	table := doc.Find(detailTableSelector)
	if table.Length() == 0 {
		return details
	}
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		if key == "" || value == "" {
			p.logger.Warn("malformed detail table row",
				zap.String("asin", asin), zap.Int("row", i))
			return
		}
		details[key] = value
	})
	return details
}

// parseOverviewTable reads the overview table, whose rows carry the key and
// value in the first two cells. Absence of the table is not an error.
func (p *Parser) parseOverviewTable(doc *goquery.Document, asin string) map[string]string {
	overview := make(map[string]string)
	table := doc.Find(overviewTableSelector)
	if table.Length() == 0 {
		return overview
	}
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			p.logger.Warn("malformed overview table row",
				zap.String("asin", asin), zap.Int("row", i))
			return
		}
		key := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(1).Text())
		if key == "" {
			return
		}
		overview[key] = value
	})
	return overview
}
