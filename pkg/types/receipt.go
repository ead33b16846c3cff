// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are written as JSON numbers, not quoted strings, so downstream
	// consumers can read them without a decimal-aware decoder.
	decimal.MarshalJSONWithoutQuotes = true
}

// Uncategorized is the category assigned to a line item that matched no
// taxonomy keyword.
const Uncategorized = "Uncategorized"

// EnginePDFMultiPage is reported as the OCR engine for PDF documents; the
// per-page engines are listed in ExtractionResult.Pages.
const EnginePDFMultiPage = "pdf_multi_page"

// ExtractionAttempt is one OCR engine's output for one image. Attempts are
// compared by Confidence and discarded once the best one is selected.
type ExtractionAttempt struct {
	Engine     string  `json:"engine" yaml:"engine"`
	Text       string  `json:"text" yaml:"text"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// LineItem is one purchased good or service parsed from a receipt body.
type LineItem struct {
	// Quantity is at least 1; lines without a leading quantity default to 1.
	Quantity int `json:"quantity" yaml:"quantity"`

	Description string `json:"description" yaml:"description"`

	// Amount is strictly positive.
	Amount decimal.Decimal `json:"amount" yaml:"amount"`

	// Category is a taxonomy key or Uncategorized.
	Category string `json:"category" yaml:"category"`
}

// ValidationReport is derived from an ExtractionResult's fields. It carries
// no identity of its own.
type ValidationReport struct {
	IsValid      bool     `json:"is_valid" yaml:"is_valid"`
	Warnings     []string `json:"warnings" yaml:"warnings"`
	Errors       []string `json:"errors" yaml:"errors"`
	Suggestions  []string `json:"suggestions" yaml:"suggestions"`
	QualityScore float64  `json:"quality_score" yaml:"quality_score"`
	NeedsReview  bool     `json:"needs_review" yaml:"needs_review"`
}

// Summary condenses an ExtractionResult for list views and review queues.
type Summary struct {
	TotalItems      int      `json:"total_items" yaml:"total_items"`
	CategoriesFound []string `json:"categories_found" yaml:"categories_found"`
	ConfidenceScore float64  `json:"confidence_score" yaml:"confidence_score"`
	QualityScore    float64  `json:"quality_score" yaml:"quality_score"`
	NeedsReview     bool     `json:"needs_review" yaml:"needs_review"`
}

// PageInfo records which engine produced a PDF page's text.
type PageInfo struct {
	// Index is the 1-based page number.
	Index      int     `json:"index" yaml:"index"`
	Engine     string  `json:"engine,omitempty" yaml:"engine,omitempty"`
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Extracted is false when every engine failed for the page.
	Extracted bool `json:"extracted" yaml:"extracted"`
}

// ExtractionResult is the pipeline's output for one input file. Multi-page
// documents are aggregated into a single result.
type ExtractionResult struct {
	ID          string    `json:"id" yaml:"id"`
	SourceFile  string    `json:"source_file" yaml:"source_file"`
	ExtractedAt time.Time `json:"extraction_timestamp" yaml:"extraction_timestamp"`
	OCREngine   string    `json:"ocr_engine_used" yaml:"ocr_engine_used"`

	// OCRConfidence is the confidence of the selected attempt (or the mean
	// over extracted pages for PDFs).
	OCRConfidence float64 `json:"ocr_confidence" yaml:"ocr_confidence"`

	Vendor      *string          `json:"vendor" yaml:"vendor"`
	Date        *string          `json:"date" yaml:"date"`
	TotalAmount *decimal.Decimal `json:"total_amount" yaml:"total_amount"`
	Currency    string           `json:"currency" yaml:"currency"`
	LineItems   []LineItem       `json:"line_items" yaml:"line_items"`
	RawText     string           `json:"raw_text" yaml:"raw_text"`
	Pages       []PageInfo       `json:"pages,omitempty" yaml:"pages,omitempty"`

	Validation ValidationReport `json:"validation" yaml:"validation"`
	Summary    Summary          `json:"summary" yaml:"summary"`
}

// VendorOr returns the vendor, or fallback when none was extracted.
func (r *ExtractionResult) VendorOr(fallback string) string {
	if r.Vendor == nil {
		return fallback
	}
	return *r.Vendor
}

// DateOr returns the ISO date, or fallback when none was extracted.
func (r *ExtractionResult) DateOr(fallback string) string {
	if r.Date == nil {
		return fallback
	}
	return *r.Date
}

// Categories returns the distinct line-item categories in sorted order.
func (r *ExtractionResult) Categories() []string {
	seen := make(map[string]bool, len(r.LineItems))
	out := make([]string, 0, len(r.LineItems))
	for _, item := range r.LineItems {
		if seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	sort.Strings(out)
	return out
}
