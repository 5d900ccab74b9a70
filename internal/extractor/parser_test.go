package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const productPageHTML = `<html><body>
<span id="productTitle"> Widget </span>
<div id="productDescription"><p>A fine widget.</p></div>
<ul>
  <li class="imageThumbnail"><img src="https://img.test/1.jpg"></li>
  <li class="imageThumbnail"><img src="https://img.test/2.jpg"></li>
  <li class="imageThumbnail"><span>broken thumbnail</span></li>
</ul>
<table id="productDetails_detailBullets_sections1">
  <tr><th>Color</th><td>Red</td></tr>
  <tr><th>Item Weight</th><td>2 pounds</td></tr>
  <tr><td>row without header cell</td></tr>
</table>
<div id="productOverview_feature_div"><div><table>
  <tr><td>Brand</td><td>Acme</td></tr>
  <tr><td>row with one cell</td></tr>
</table></div></div>
</body></html>`

func newTestParser() *Parser {
	return NewParser(zap.NewNop())
}

func TestParseProductPage(t *testing.T) {
	rec, err := newTestParser().ParseProductPage("B000123456", productPageHTML)
	require.NoError(t, err)

	assert.Equal(t, "B000123456", rec.ASIN)
	assert.Equal(t, "Widget", rec.Title)
	assert.Equal(t, "A fine widget.", rec.Description)
	assert.Equal(t, []string{"https://img.test/1.jpg", "https://img.test/2.jpg"}, rec.ImageLinks)
	assert.Equal(t, map[string]string{"Color": "Red", "Item Weight": "2 pounds"}, rec.Details)
	assert.Equal(t, map[string]string{"Brand": "Acme"}, rec.Overview)
}

func TestParseProductPageMissingTitle(t *testing.T) {
	html := `<html><body><div id="productDescription">orphan page</div></body></html>`

	rec, err := newTestParser().ParseProductPage("B000000404", html)
	require.Nil(t, rec)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestParseProductPageMissingDescription(t *testing.T) {
	html := `<html><body><span id="productTitle">Widget</span></body></html>`

	rec, err := newTestParser().ParseProductPage("B000123456", html)
	require.NoError(t, err)

	assert.Equal(t, "Widget", rec.Title)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.ImageLinks)
	assert.Empty(t, rec.Details)
	assert.Empty(t, rec.Overview)
}

func TestParseProductPageBrokenThumbnailIsSkipped(t *testing.T) {
	html := `<html><body>
<span id="productTitle">Widget</span>
<li class="imageThumbnail"><img src="https://img.test/ok.jpg"></li>
<li class="imageThumbnail"><img></li>
</body></html>`

	rec, err := newTestParser().ParseProductPage("B000123456", html)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.test/ok.jpg"}, rec.ImageLinks)
}

func TestParseProductPageMalformedDetailRowIsSkipped(t *testing.T) {
	html := `<html><body>
<span id="productTitle">Widget</span>
<table id="productDetails_detailBullets_sections1">
  <tr><th>Color</th><td>Red</td></tr>
  <tr><th>Empty Value</th><td></td></tr>
</table>
</body></html>`

	rec, err := newTestParser().ParseProductPage("B000123456", html)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Color": "Red"}, rec.Details)
}
