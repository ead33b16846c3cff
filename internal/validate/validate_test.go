// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/billscan/pkg/types"
)

func ptr[T any](v T) *T { return &v }

var cfg = types.ValidationConfig{HighAmountThreshold: 100000, ReviewThreshold: 0.7}

func complete() *types.ExtractionResult {
	return &types.ExtractionResult{
		Vendor:      ptr("KTM MART"),
		Date:        ptr("2024-03-01"),
		TotalAmount: ptr(decimal.RequireFromString("1240")),
		Currency:    "NPR",
		LineItems: []types.LineItem{
			{Quantity: 2, Description: "Rice", Amount: decimal.RequireFromString("240"), Category: "Groceries"},
		},
		OCRConfidence: 0.9,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *types.ExtractionResult)
		quality     float64
		valid       bool
		review      bool
		warnings    []string
		errors      []string
		suggestions []string
	}{
		{
			name:    "complete",
			mutate:  func(*types.ExtractionResult) {},
			quality: 1, valid: true,
			warnings: []string{}, errors: []string{}, suggestions: []string{},
		},
		{
			name:    "vendor placeholder",
			mutate:  func(r *types.ExtractionResult) { r.Vendor = ptr("Unknown") },
			quality: 0.8, valid: true,
			warnings: []string{MsgVendorMissing}, errors: []string{}, suggestions: []string{},
		},
		{
			name: "vendor and date missing drop below review threshold",
			mutate: func(r *types.ExtractionResult) {
				r.Vendor = nil
				r.Date = nil
			},
			quality: 0.6, valid: true, review: true,
			warnings: []string{MsgVendorMissing, MsgDateMissing}, errors: []string{}, suggestions: []string{},
		},
		{
			name:    "missing total is an error",
			mutate:  func(r *types.ExtractionResult) { r.TotalAmount = nil },
			quality: 0.7, valid: false, review: true,
			warnings: []string{}, errors: []string{MsgTotalInvalid}, suggestions: []string{},
		},
		{
			name:    "zero total is an error",
			mutate:  func(r *types.ExtractionResult) { r.TotalAmount = ptr(decimal.Zero) },
			quality: 0.7, valid: false, review: true,
			warnings: []string{}, errors: []string{MsgTotalInvalid}, suggestions: []string{},
		},
		{
			name:    "no line items",
			mutate:  func(r *types.ExtractionResult) { r.LineItems = nil },
			quality: 0.8, valid: true,
			warnings: []string{MsgNoLineItems}, errors: []string{}, suggestions: []string{},
		},
		{
			name:    "high amount is only a suggestion",
			mutate:  func(r *types.ExtractionResult) { r.TotalAmount = ptr(decimal.NewFromInt(250000)) },
			quality: 1, valid: true,
			warnings: []string{}, errors: []string{}, suggestions: []string{MsgHighAmount},
		},
		{
			name: "everything missing",
			mutate: func(r *types.ExtractionResult) {
				r.Vendor, r.Date, r.TotalAmount, r.LineItems = nil, nil, nil, nil
			},
			quality: 0.1, valid: false, review: true,
			warnings: []string{MsgVendorMissing, MsgDateMissing, MsgNoLineItems},
			errors:   []string{MsgTotalInvalid}, suggestions: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := complete()
			tt.mutate(r)
			rep := Validate(r, cfg)
			assert.InDelta(t, tt.quality, rep.QualityScore, 1e-9)
			assert.Equal(t, tt.valid, rep.IsValid)
			assert.Equal(t, tt.review, rep.NeedsReview)
			assert.Equal(t, tt.warnings, rep.Warnings)
			assert.Equal(t, tt.errors, rep.Errors)
			assert.Equal(t, tt.suggestions, rep.Suggestions)
		})
	}
}

func TestValidateMissingTotalAlwaysNeedsReview(t *testing.T) {
	lenient := types.ValidationConfig{HighAmountThreshold: 100000, ReviewThreshold: 0}
	r := complete()
	r.TotalAmount = nil
	rep := Validate(r, lenient)
	assert.True(t, rep.NeedsReview)
	assert.Contains(t, rep.Errors, MsgTotalInvalid)
}

func TestValidateWarningCountForcesReview(t *testing.T) {
	lenient := types.ValidationConfig{HighAmountThreshold: 100000, ReviewThreshold: 0}
	r := complete()
	r.Vendor, r.Date, r.LineItems = nil, nil, nil
	rep := Validate(r, lenient)
	assert.True(t, rep.IsValid)
	assert.True(t, rep.NeedsReview)
}

func TestValidateConfigurableThreshold(t *testing.T) {
	r := complete()
	r.TotalAmount = ptr(decimal.NewFromInt(5000))
	rep := Validate(r, types.ValidationConfig{HighAmountThreshold: 1000, ReviewThreshold: 0.7})
	assert.Equal(t, []string{MsgHighAmount}, rep.Suggestions)
	assert.False(t, rep.NeedsReview)
}

func TestValidateUnreadPages(t *testing.T) {
	r := complete()
	r.Pages = []types.PageInfo{
		{Index: 1, Extracted: true},
		{Index: 2},
		{Index: 3, Extracted: true},
	}
	rep := Validate(r, cfg)
	assert.Equal(t, []string{PageUnread(2)}, rep.Warnings)
	assert.Equal(t, 1.0, rep.QualityScore)
	assert.False(t, rep.NeedsReview)
	assert.Equal(t, "Page 2 could not be read", PageUnread(2))
}

func TestRevalidate(t *testing.T) {
	r := complete()
	r.TotalAmount = nil
	Revalidate(r, cfg)
	require.True(t, r.Summary.NeedsReview)
	assert.Equal(t, 0.7, r.Summary.QualityScore)

	r.TotalAmount = ptr(decimal.RequireFromString("1240"))
	Revalidate(r, cfg)
	assert.True(t, r.Validation.IsValid)
	assert.False(t, r.Summary.NeedsReview)
	assert.Equal(t, 1.0, r.Validation.QualityScore)
	assert.Equal(t, 1, r.Summary.TotalItems)
	assert.Equal(t, []string{"Groceries"}, r.Summary.CategoriesFound)
	assert.InDelta(t, 0.6*0.9+0.4*1.0, r.Summary.ConfidenceScore, 1e-9)
}
