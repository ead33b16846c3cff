// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction results and their line items in
// SQLite so they can be reviewed, corrected and summarized later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pdiddy/billscan/pkg/types"
)

// ErrNotFound is returned when no stored result has the requested ID.
var ErrNotFound = errors.New("result not found")

const defaultMaxResults = 20

// Store manages the results database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.DBPath, creating its parent
// directory and schema when missing.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS receipts (
			id TEXT PRIMARY KEY,
			source_file TEXT NOT NULL,
			extracted_at TEXT NOT NULL,
			ocr_engine TEXT NOT NULL,
			ocr_confidence REAL,
			vendor TEXT,
			date TEXT,
			total_amount TEXT,
			currency TEXT NOT NULL,
			raw_text TEXT,
			pages TEXT,
			validation TEXT NOT NULL,
			quality_score REAL NOT NULL,
			confidence_score REAL NOT NULL,
			needs_review INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS line_items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			receipt_id TEXT NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			category TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_receipt ON line_items(receipt_id)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_category ON line_items(category)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_review ON receipts(needs_review)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_date ON receipts(date)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts res, or replaces the stored result with the same ID
// together with all of its line items.
func (s *Store) Save(ctx context.Context, res *types.ExtractionResult) error {
	if res.ID == "" {
		return errors.New("saving result: empty ID")
	}

	validation, err := json.Marshal(res.Validation)
	if err != nil {
		return fmt.Errorf("encoding validation report: %w", err)
	}
	pages, err := json.Marshal(res.Pages)
	if err != nil {
		return fmt.Errorf("encoding pages: %w", err)
	}
	var total sql.NullString
	if res.TotalAmount != nil {
		total = sql.NullString{String: res.TotalAmount.String(), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, source_file, extracted_at, ocr_engine, ocr_confidence,
			vendor, date, total_amount, currency, raw_text, pages, validation,
			quality_score, confidence_score, needs_review)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source_file=excluded.source_file, extracted_at=excluded.extracted_at,
			ocr_engine=excluded.ocr_engine, ocr_confidence=excluded.ocr_confidence,
			vendor=excluded.vendor, date=excluded.date, total_amount=excluded.total_amount,
			currency=excluded.currency, raw_text=excluded.raw_text, pages=excluded.pages,
			validation=excluded.validation, quality_score=excluded.quality_score,
			confidence_score=excluded.confidence_score, needs_review=excluded.needs_review`,
		res.ID, res.SourceFile, res.ExtractedAt.UTC().Format(time.RFC3339Nano),
		res.OCREngine, res.OCRConfidence,
		nullable(res.Vendor), nullable(res.Date), total, res.Currency, res.RawText,
		string(pages), string(validation),
		res.Validation.QualityScore, res.Summary.ConfidenceScore, res.Validation.NeedsReview,
	)
	if err != nil {
		return fmt.Errorf("upserting receipt: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_items WHERE receipt_id = ?`, res.ID); err != nil {
		return fmt.Errorf("deleting old line items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO line_items (receipt_id, position, quantity, description, amount, category)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range res.LineItems {
		_, err := stmt.ExecContext(ctx,
			res.ID, i, item.Quantity, item.Description, item.Amount.String(), item.Category,
		)
		if err != nil {
			return fmt.Errorf("inserting line item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get loads the result with the given ID, line items included.
func (s *Store) Get(ctx context.Context, id string) (*types.ExtractionResult, error) {
	rows, err := s.db.QueryContext(ctx, selectReceipts+` WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying receipt %s: %w", id, err)
	}
	results, err := s.scanReceipts(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &results[0], nil
}

// Delete removes the result with the given ID and its line items.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting receipt %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectReceipts = `SELECT id, source_file, extracted_at, ocr_engine, ocr_confidence,
	vendor, date, total_amount, currency, raw_text, pages, validation,
	quality_score, confidence_score, needs_review
	FROM receipts`

// scanReceipts reads receipt rows, closes them, then attaches line items.
func (s *Store) scanReceipts(ctx context.Context, rows *sql.Rows) ([]types.ExtractionResult, error) {
	var results []types.ExtractionResult
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading receipts: %w", err)
	}
	rows.Close()

	for i := range results {
		items, err := s.lineItems(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].LineItems = items
		results[i].Summary = types.Summary{
			TotalItems:      len(items),
			CategoriesFound: results[i].Categories(),
			ConfidenceScore: results[i].Summary.ConfidenceScore,
			QualityScore:    results[i].Validation.QualityScore,
			NeedsReview:     results[i].Validation.NeedsReview,
		}
	}
	return results, nil
}

func scanReceipt(rows *sql.Rows) (types.ExtractionResult, error) {
	var (
		r           types.ExtractionResult
		extractedAt string
		vendor      sql.NullString
		date        sql.NullString
		total       sql.NullString
		rawText     sql.NullString
		pages       sql.NullString
		validation  string
	)
	if err := rows.Scan(
		&r.ID, &r.SourceFile, &extractedAt, &r.OCREngine, &r.OCRConfidence,
		&vendor, &date, &total, &r.Currency, &rawText, &pages, &validation,
		&r.Validation.QualityScore, &r.Summary.ConfidenceScore, &r.Validation.NeedsReview,
	); err != nil {
		return r, fmt.Errorf("scanning receipt: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, extractedAt)
	if err != nil {
		return r, fmt.Errorf("receipt %s: parsing extraction time %q: %w", r.ID, extractedAt, err)
	}
	r.ExtractedAt = ts
	r.Vendor = fromNullable(vendor)
	r.Date = fromNullable(date)
	r.RawText = rawText.String
	if total.Valid {
		d, err := decimal.NewFromString(total.String)
		if err != nil {
			return r, fmt.Errorf("receipt %s: parsing total %q: %w", r.ID, total.String, err)
		}
		r.TotalAmount = &d
	}
	if pages.Valid {
		if err := json.Unmarshal([]byte(pages.String), &r.Pages); err != nil {
			return r, fmt.Errorf("receipt %s: decoding pages: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(validation), &r.Validation); err != nil {
		return r, fmt.Errorf("receipt %s: decoding validation: %w", r.ID, err)
	}
	return r, nil
}

func (s *Store) lineItems(ctx context.Context, receiptID string) ([]types.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT quantity, description, amount, category FROM line_items
		 WHERE receipt_id = ? ORDER BY position`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("querying line items: %w", err)
	}
	defer rows.Close()

	items := []types.LineItem{}
	for rows.Next() {
		var (
			item   types.LineItem
			amount string
		)
		if err := rows.Scan(&item.Quantity, &item.Description, &amount, &item.Category); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing line item amount %q: %w", amount, err)
		}
		item.Amount = d
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
