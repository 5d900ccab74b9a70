package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/product-scraper/internal/domain"
	"github.com/user/product-scraper/internal/monitoring"
	"go.uber.org/zap"
)

// ErrNotFound is returned by GetProduct for an unknown ASIN.
var ErrNotFound = errors.New("product not found")

var errDuplicate = errors.New("asin already stored")

// DB is the subset of pgxpool.Pool the store uses, factored out so tests can
// substitute a fake.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db      DB
	pool    *pgxpool.Pool
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewPostgresStore connects to the database. A connection failure here is
// fatal for the caller and is never retried.
func NewPostgresStore(ctx context.Context, connStr string, m *monitoring.Metrics, l *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: pool, pool: pool, metrics: m, logger: l}, nil
}

func newStoreWithDB(db DB, m *monitoring.Metrics, l *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, metrics: m, logger: l}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// StoreResult summarizes one persistence batch.
type StoreResult struct {
	Stored         int
	Duplicates     int
	SkippedInvalid int
	Failed         int
}

// StoreProducts writes each record across the four tables inside its own
// transaction. One record's failure is rolled back and logged, then the batch
// moves on; partial persistence of a record is never left behind.
func (s *PostgresStore) StoreProducts(ctx context.Context, records []domain.ProductRecord) StoreResult {
	var res StoreResult
	for i := range records {
		rec := &records[i]

		if rec.ASIN == "" || rec.Title == "" {
			s.logger.Warn("missing required fields, skipping insertion",
				zap.String("asin", rec.ASIN))
			res.SkippedInvalid++
			continue
		}

		err := s.storeOne(ctx, rec)
		switch {
		case errors.Is(err, errDuplicate):
			s.logger.Info("ASIN already exists in the database, skipping insertion",
				zap.String("asin", rec.ASIN))
			res.Duplicates++
		case err != nil:
			s.logger.Error("failed to insert product",
				zap.String("asin", rec.ASIN), zap.Error(err))
			s.metrics.IncErrorsTotal("db_store_failed")
			res.Failed++
		default:
			s.metrics.IncStored()
			s.logger.Info("product stored",
				zap.String("asin", rec.ASIN), zap.Int("images", len(rec.ImageLinks)))
			res.Stored++
		}
	}
	return res
}

func (s *PostgresStore) storeOne(ctx context.Context, rec *domain.ProductRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingID int64
	err = tx.QueryRow(ctx, `SELECT product_id FROM products WHERE asin = $1`, rec.ASIN).Scan(&existingID)
	if err == nil {
		return errDuplicate
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check existing asin: %w", err)
	}

	var productID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO products (asin, title, description, scraped_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING product_id`,
		rec.ASIN, rec.Title, nullable(rec.Description), rec.ScrapedAt,
	).Scan(&productID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if len(rec.ImageLinks) > 0 {
		batch := &pgx.Batch{}
		for pos, link := range rec.ImageLinks {
			batch.Queue(`INSERT INTO images (product_id, position, image_link) VALUES ($1, $2, $3)`,
				productID, pos, link)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert images: %w", err)
		}
	}

	if err := s.writeDynamic(ctx, tx, "product_details", productID, rec.Details); err != nil {
		return err
	}
	if err := s.writeDynamic(ctx, tx, "product_overview", productID, rec.Overview); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetProduct retrieves the root row and its image links, extraction order
// preserved by the position column.
func (s *PostgresStore) GetProduct(ctx context.Context, asin string) (*domain.Product, error) {
	var p domain.Product
	var description *string
	err := s.db.QueryRow(ctx,
		`SELECT product_id, asin, title, description, scraped_at FROM products WHERE asin = $1`,
		asin,
	).Scan(&p.ProductID, &p.ASIN, &p.Title, &description, &p.ScrapedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	if description != nil {
		p.Description = *description
	}

	rows, err := s.db.Query(ctx,
		`SELECT image_link FROM images WHERE product_id = $1 ORDER BY position`, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("select images: %w", err)
	}
	defer rows.Close()

	p.ImageLinks = []string{}
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, err
		}
		p.ImageLinks = append(p.ImageLinks, link)
	}
	return &p, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
