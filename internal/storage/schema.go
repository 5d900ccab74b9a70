package storage

import (
	"context"
	"fmt"
)

// The two attribute tables start with only their fixed columns; attribute
// columns are added at write time as new keys are observed.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
    product_id BIGSERIAL PRIMARY KEY,
    asin VARCHAR(10) UNIQUE NOT NULL,
    title TEXT,
    description TEXT,
    scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS images (
    image_id BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(product_id),
    position INT NOT NULL,
    image_link TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_product ON images(product_id);

CREATE TABLE IF NOT EXISTS product_details (
    id BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(product_id)
);

CREATE TABLE IF NOT EXISTS product_overview (
    id BIGSERIAL PRIMARY KEY,
    product_id BIGINT NOT NULL REFERENCES products(product_id)
);
`

// EnsureSchema creates the four tables if they do not exist yet. Safe to call
// on every request.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
