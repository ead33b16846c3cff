// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate cross-checks the fields of an extraction result and
// computes its quality score and manual-review flag.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/billscan/pkg/types"
)

// Messages recorded in a ValidationReport.
const (
	MsgVendorMissing = "Vendor not detected"
	MsgDateMissing   = "Date not detected"
	MsgTotalInvalid  = "Invalid or missing total amount"
	MsgNoLineItems   = "No line items detected"
	MsgHighAmount    = "High amount detected - please verify"

	// msgPageUnread is formatted with the 1-based page number.
	msgPageUnread = "Page %d could not be read"
)

// Penalties subtracted from a starting quality of 1.0.
const (
	penaltyVendor = 0.2
	penaltyDate   = 0.2
	penaltyTotal  = 0.3
	penaltyItems  = 0.2
)

// maxWarnings is the warning count above which review is forced.
const maxWarnings = 2

// Overall confidence blends OCR confidence with extraction quality.
const (
	ocrWeight     = 0.6
	qualityWeight = 0.4
)

// Validate derives a ValidationReport from r's current fields. It reads
// nothing but the fields, so calling it again after an edit always yields
// a report consistent with the edited record.
func Validate(r *types.ExtractionResult, cfg types.ValidationConfig) types.ValidationReport {
	rep := types.ValidationReport{
		Warnings:    []string{},
		Errors:      []string{},
		Suggestions: []string{},
	}
	quality := 1.0

	if vendorMissing(r.Vendor) {
		rep.Warnings = append(rep.Warnings, MsgVendorMissing)
		quality -= penaltyVendor
	}
	if r.Date == nil || strings.TrimSpace(*r.Date) == "" {
		rep.Warnings = append(rep.Warnings, MsgDateMissing)
		quality -= penaltyDate
	}
	if r.TotalAmount == nil || !r.TotalAmount.IsPositive() {
		rep.Errors = append(rep.Errors, MsgTotalInvalid)
		quality -= penaltyTotal
	} else if r.TotalAmount.GreaterThan(decimal.NewFromFloat(cfg.HighAmountThreshold)) {
		rep.Suggestions = append(rep.Suggestions, MsgHighAmount)
	}
	if len(r.LineItems) == 0 {
		rep.Warnings = append(rep.Warnings, MsgNoLineItems)
		quality -= penaltyItems
	}

	for _, pg := range r.Pages {
		if !pg.Extracted {
			rep.Warnings = append(rep.Warnings, PageUnread(pg.Index))
		}
	}

	rep.QualityScore = round2(math.Max(0, quality))
	rep.IsValid = len(rep.Errors) == 0
	rep.NeedsReview = !rep.IsValid ||
		rep.QualityScore < cfg.ReviewThreshold ||
		len(rep.Warnings) > maxWarnings
	return rep
}

// PageUnread is the warning recorded for a document page whose OCR failed.
// It carries no quality penalty but counts toward the review warning limit.
func PageUnread(page int) string {
	return fmt.Sprintf(msgPageUnread, page)
}

// Summarize condenses r into a Summary using the given report.
func Summarize(r *types.ExtractionResult, rep types.ValidationReport) types.Summary {
	return types.Summary{
		TotalItems:      len(r.LineItems),
		CategoriesFound: r.Categories(),
		ConfidenceScore: round2(ocrWeight*r.OCRConfidence + qualityWeight*rep.QualityScore),
		QualityScore:    rep.QualityScore,
		NeedsReview:     rep.NeedsReview,
	}
}

// Revalidate recomputes r's report and summary from its current fields.
// Call it after correcting a result by hand.
func Revalidate(r *types.ExtractionResult, cfg types.ValidationConfig) {
	r.Validation = Validate(r, cfg)
	r.Summary = Summarize(r, r.Validation)
}

func vendorMissing(v *string) bool {
	if v == nil {
		return true
	}
	s := strings.TrimSpace(*v)
	return s == "" || strings.EqualFold(s, "unknown")
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
