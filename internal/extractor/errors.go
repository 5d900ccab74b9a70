package extractor

import "errors"

var (
	// ErrProductNotFound means the detail page loaded but carried no title
	// element, which is how the catalog renders an unknown identifier.
	ErrProductNotFound = errors.New("product not found or invalid ASIN")

	// ErrNavigation means the page could not be fetched at all.
	ErrNavigation = errors.New("page navigation failed")
)
