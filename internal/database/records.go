package database

import (
	"context"
	"fmt"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS product_records (
	keyword             TEXT        NOT NULL,
	asin                TEXT        NOT NULL,
	country             TEXT        NOT NULL,
	title               TEXT        NOT NULL,
	brand               TEXT,
	product_url         TEXT        NOT NULL,
	image_url           TEXT,
	price               DOUBLE PRECISION,
	price_text          TEXT,
	original_price_text TEXT,
	currency            TEXT,
	rating              DOUBLE PRECISION,
	reviews_count       INTEGER,
	is_prime            BOOLEAN     NOT NULL DEFAULT FALSE,
	is_sponsored        BOOLEAN     NOT NULL DEFAULT FALSE,
	badges              TEXT[]      NOT NULL DEFAULT '{}',
	page_index          INTEGER     NOT NULL,
	category_path       TEXT[],
	feature_bullets     TEXT[],
	scraped_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (keyword, country, asin)
)`

// EnsureSchema creates the records table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, recordsSchema); err != nil {
		return fmt.Errorf("failed to create product_records table: %w", err)
	}
	return nil
}

// RecordSink writes emitted records to Postgres, upserting on the
// (keyword, country, asin) natural key.
type RecordSink struct {
	db *DB
}

func NewRecordSink(db *DB) *RecordSink {
	return &RecordSink{db: db}
}

func (s *RecordSink) Write(ctx context.Context, rec *models.ProductRecord) error {
	query := `
		INSERT INTO product_records
		(keyword, asin, country, title, brand, product_url, image_url,
		 price, price_text, original_price_text, currency, rating,
		 reviews_count, is_prime, is_sponsored, badges, page_index,
		 category_path, feature_bullets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19)
		ON CONFLICT (keyword, country, asin) DO UPDATE SET
			title               = EXCLUDED.title,
			brand               = EXCLUDED.brand,
			price               = EXCLUDED.price,
			price_text          = EXCLUDED.price_text,
			original_price_text = EXCLUDED.original_price_text,
			currency            = EXCLUDED.currency,
			rating              = EXCLUDED.rating,
			reviews_count       = EXCLUDED.reviews_count,
			is_prime            = EXCLUDED.is_prime,
			is_sponsored        = EXCLUDED.is_sponsored,
			badges              = EXCLUDED.badges,
			page_index          = EXCLUDED.page_index,
			category_path       = COALESCE(EXCLUDED.category_path, product_records.category_path),
			feature_bullets     = COALESCE(EXCLUDED.feature_bullets, product_records.feature_bullets),
			scraped_at          = NOW()
	`

	_, err := s.db.pool.Exec(ctx, query,
		rec.Keyword, rec.ASIN, string(rec.Country), rec.Title, rec.Brand,
		rec.ProductURL, rec.ImageURL, rec.Price, rec.PriceText,
		rec.OriginalPriceText, rec.Currency, rec.Rating, rec.ReviewsCount,
		rec.IsPrime, rec.IsSponsored, rec.Badges, rec.PageIndex,
		rec.CategoryPath, rec.FeatureBullets)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ASIN, err)
	}
	return nil
}

func (s *RecordSink) Close() error {
	return nil
}
