// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers structured receipt fields (vendor, date, total,
// currency, line items) from cleaned OCR text. Each field is resolved by an
// ordered list of matchers; the first matcher that succeeds wins and a
// field no matcher can resolve is left absent.
package extract

import (
	"github.com/shopspring/decimal"

	"github.com/pdiddy/billscan/pkg/types"
)

// Fields holds the values recovered from one receipt's text. Absent fields
// are nil.
type Fields struct {
	Vendor    *string
	Date      *string
	Total     *decimal.Decimal
	Currency  string
	LineItems []types.LineItem
}

// Extract runs every field extractor over cleaned text. It is a pure
// function: the same input always yields the same Fields. Line items come
// back without categories.
func Extract(cleaned, defaultCurrency string) Fields {
	f := Fields{
		Currency:  Currency(cleaned, defaultCurrency),
		LineItems: LineItems(cleaned),
	}
	if v, ok := Vendor(cleaned); ok {
		f.Vendor = &v
	}
	if d, ok := Date(cleaned); ok {
		f.Date = &d
	}
	if t, ok := TotalAmount(cleaned); ok {
		f.Total = &t
	}
	return f
}

// matcher tries to resolve one field from text.
type matcher[T any] func(text string) (T, bool)

// firstMatch returns the result of the first matcher that succeeds. A
// matcher that panics is treated as a miss so one bad pattern never aborts
// the cascade.
func firstMatch[T any](text string, matchers []matcher[T]) (T, bool) {
	for _, m := range matchers {
		if v, ok := try(m, text); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func try[T any](m matcher[T], text string) (v T, ok bool) {
	defer func() {
		if recover() != nil {
			var zero T
			v, ok = zero, false
		}
	}()
	return m(text)
}
