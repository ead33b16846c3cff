// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/billscan/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "data", "billscan.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func receipt(id, vendor, date, currency string, review bool, at time.Time, items ...types.LineItem) *types.ExtractionResult {
	r := &types.ExtractionResult{
		ID:            id,
		SourceFile:    id + ".jpg",
		ExtractedAt:   at,
		OCREngine:     "tesseract",
		OCRConfidence: 0.8,
		Currency:      currency,
		LineItems:     items,
		RawText:       "raw " + id,
		Validation: types.ValidationReport{
			IsValid:      !review,
			Warnings:     []string{},
			Errors:       []string{},
			Suggestions:  []string{},
			QualityScore: 1,
			NeedsReview:  review,
		},
		Summary: types.Summary{ConfidenceScore: 0.88},
	}
	if vendor != "" {
		r.Vendor = strPtr(vendor)
	}
	if date != "" {
		r.Date = strPtr(date)
	}
	if review {
		r.Validation.Errors = []string{"Invalid or missing total amount"}
		r.Validation.QualityScore = 0.5
	} else {
		r.TotalAmount = decPtr("100.50")
	}
	return r
}

func item(desc, amount, category string) types.LineItem {
	return types.LineItem{Quantity: 1, Description: desc, Amount: dec(amount), Category: category}
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := receipt("r1", "KTM MART", "2024-03-01", "NPR", false, t0,
		item("Rice", "240", "Groceries"),
		item("Soap", "80.50", "Shopping"),
	)
	in.Pages = []types.PageInfo{{Index: 1, Engine: "tesseract", Confidence: 0.8, Extracted: true}}
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, "KTM MART", *got.Vendor)
	assert.Equal(t, "2024-03-01", *got.Date)
	assert.True(t, got.TotalAmount.Equal(dec("100.50")))
	assert.Equal(t, "NPR", got.Currency)
	assert.True(t, got.ExtractedAt.Equal(t0))
	assert.Equal(t, in.Pages, got.Pages)
	assert.Equal(t, in.Validation, got.Validation)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Rice", got.LineItems[0].Description)
	assert.True(t, got.LineItems[1].Amount.Equal(dec("80.5")))
	assert.Equal(t, 2, got.Summary.TotalItems)
	assert.Equal(t, []string{"Groceries", "Shopping"}, got.Summary.CategoriesFound)
	assert.Equal(t, 0.88, got.Summary.ConfidenceScore)
}

func TestGetNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCorruptRow(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  string
		want   string
	}{
		{"extraction time", "extracted_at", "yesterday", "parsing extraction time"},
		{"pages", "pages", "{not json", "decoding pages"},
		{"validation", "validation", "[]", "decoding validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, receipt("r1", "KTM MART", "2024-03-01", "NPR", false, t0)))

			_, err := s.db.ExecContext(ctx, "UPDATE receipts SET "+tt.column+" = ? WHERE id = ?", tt.value, "r1")
			require.NoError(t, err)

			_, err = s.Get(ctx, "r1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveReplacesItems(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := receipt("r1", "", "", "NPR", true, t0, item("Rice", "240", "Groceries"), item("Tea", "60", "Groceries"))
	require.NoError(t, s.Save(ctx, r))

	r.Vendor = strPtr("KTM MART")
	r.LineItems = []types.LineItem{item("Rice", "250", "Groceries")}
	r.Validation.NeedsReview = false
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "KTM MART", *got.Vendor)
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.LineItems[0].Amount.Equal(dec("250")))
	assert.False(t, got.Validation.NeedsReview)
	assert.Nil(t, got.TotalAmount)
}

func TestSaveRequiresID(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.Save(context.Background(), &types.ExtractionResult{}))
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, receipt("r1", "A MART", "2024-03-01", "NPR", false, t0, item("Rice", "1", "Groceries"))))

	require.NoError(t, s.Delete(ctx, "r1"))
	_, err := s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "r1"), ErrNotFound)

	totals, err := s.Totals(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, r := range []*types.ExtractionResult{
		receipt("r1", "KTM MART", "2024-03-01", "NPR", false, t0, item("Rice", "240", "Groceries")),
		receipt("r2", "Daraz", "2024-03-15", "NPR", true, t0.Add(time.Hour), item("Headphones", "2000", "Shopping")),
		receipt("r3", "Pathao", "2024-04-02", "NPR", true, t0.Add(2*time.Hour), item("Taxi fare", "350", "Transportation")),
		receipt("r4", "", "", "USD", true, t0.Add(3*time.Hour)),
	} {
		require.NoError(t, s.Save(ctx, r))
	}

	ids := func(rs []types.ExtractionResult) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name string
		opts QueryOptions
		want []string
	}{
		{"all newest first", QueryOptions{}, []string{"r4", "r3", "r2", "r1"}},
		{"review only", QueryOptions{ReviewOnly: true}, []string{"r4", "r3", "r2"}},
		{"limit", QueryOptions{ReviewOnly: true, MaxResults: 2}, []string{"r4", "r3"}},
		{"vendor substring", QueryOptions{Vendor: "mart"}, []string{"r1"}},
		{"category", QueryOptions{Category: "Shopping"}, []string{"r2"}},
		{"month", QueryOptions{Month: "2024-03"}, []string{"r2", "r1"}},
		{"nothing matches", QueryOptions{Category: "Travel"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, err := s.List(ctx, QueryOptions{Month: "March"})
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, receipt("r1", "KTM MART", "2024-03-01", "NPR", false, t0,
		item("Rice", "240.10", "Groceries"), item("Milk", "0.20", "Groceries"), item("Soap", "80", "Shopping"))))
	require.NoError(t, s.Save(ctx, receipt("r2", "Walmart", "2024-03-05", "USD", false, t0,
		item("Milk", "3.99", "Groceries"))))
	require.NoError(t, s.Save(ctx, receipt("r3", "Pathao", "2024-04-02", "NPR", false, t0,
		item("Taxi fare", "350", "Transportation"))))

	all, err := s.Totals(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Transportation", all[0].Category)
	assert.Equal(t, "Groceries", all[1].Category)
	assert.Equal(t, "NPR", all[1].Currency)
	assert.True(t, all[1].Total.Equal(dec("240.30")), all[1].Total.String())
	assert.Equal(t, 2, all[1].Items)

	march, err := s.Totals(ctx, "2024-03")
	require.NoError(t, err)
	require.Len(t, march, 3)
	for _, ct := range march {
		assert.NotEqual(t, "Transportation", ct.Category)
	}

	_, err = s.Totals(ctx, "2024/03")
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billscan.db")
	s1, err := Open(types.StoreConfig{DBPath: path})
	require.NoError(t, err)
	require.NoError(t, s1.Save(context.Background(), receipt("r1", "A MART", "", "NPR", false, t0)))
	require.NoError(t, s1.Close())

	s2, err := Open(types.StoreConfig{DBPath: path})
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, got.LineItems)
}
