package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingColumns(t *testing.T) {
	existing := map[string]struct{}{
		"id":         {},
		"product_id": {},
		"Color":      {},
	}
	attrs := map[string]string{
		"Color":       "Red",
		"Item Weight": "2 pounds",
		"Brand":       "Acme",
	}

	missing := missingColumns(existing, attrs)
	assert.Equal(t, []string{"Brand", "Item Weight"}, missing)
}

func TestMissingColumnsIdempotent(t *testing.T) {
	// Once every key is a column, a re-run with the same keys is a schema no-op.
	existing := map[string]struct{}{
		"id": {}, "product_id": {}, "Color": {}, "Brand": {},
	}
	attrs := map[string]string{"Color": "Blue", "Brand": "Acme"}

	assert.Empty(t, missingColumns(existing, attrs))
}

func TestBuildDynamicInsert(t *testing.T) {
	sql, args := buildDynamicInsert("product_details", 7, map[string]string{
		"Color": "Red",
		"Brand": "Acme",
	})

	assert.Equal(t,
		`INSERT INTO "product_details" (product_id, "Brand", "Color") VALUES ($1, $2, $3)`,
		sql)
	require.Len(t, args, 3)
	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, "Acme", args[1])
	assert.Equal(t, "Red", args[2])
}

func TestQuoteIdentEscapesQuotes(t *testing.T) {
	assert.Equal(t, `"Display ""Size"""`, quoteIdent(`Display "Size"`))
	assert.Equal(t, `"Item Weight"`, quoteIdent("Item Weight"))
}
