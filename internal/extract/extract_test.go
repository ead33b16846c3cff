// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf and blank lines", "A\r\n\r\n  B  \r\nC", "A\nB\nC"},
		{"collapses blanks per line", "TOTAL:\t\t $ 5", "TOTAL: $ 5"},
		{"garbage replaced", "Milk ~ $3.99 |", "Milk $3.99"},
		{"numeric confusions", "TOTAL 1O.5O", "TOTAL 10.50"},
		{"lower l in number", "l2 Eggs", "12 Eggs"},
		{"words untouched", "Olive Oil", "Olive Oil"},
		{"mixed token untouched", "Hello2", "Hello2"},
		{"devanagari digits", "कुल रू १,२५०", "कुल रू 1,250"},
		{"currency glyphs kept", "₹10 €5 £2 ¥9", "₹10 €5 £2 ¥9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	in := "WALMART  \r\n\nTOTAL:  $34.2O\n1 Milk ~ $3.99\n"
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}

func TestTotalAmountWellFormed(t *testing.T) {
	glyphs := []string{"$", "Rs.", "रू", "₹", "€", "£", ""}
	amounts := []struct {
		raw  string
		want string
	}{
		{"34.23", "34.23"},
		{"1,234.56", "1234.56"},
		{"250000", "250000"},
		{"7", "7"},
	}
	for _, g := range glyphs {
		for _, a := range amounts {
			text := "SHOP\nBread $2.00\nTOTAL: " + g + a.raw + "\nThank you"
			got, ok := TotalAmount(text)
			require.True(t, ok, text)
			assert.True(t, decimal.RequireFromString(a.want).Equal(got), "%s: got %s", text, got)
		}
	}
}

func TestTotalAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"skips subtotal", "SUBTOTAL: $30.00\nTAX: $4.23\nTOTAL: $34.23", "34.23"},
		{"skips spaced subtotal", "SUB TOTAL 30.00\nTOTAL 34.23", "34.23"},
		{"grand total first", "TOTAL: 10\nGRAND TOTAL: 12.50", "12.50"},
		{"net total amount", "Net Total Amount: Rs 1,500", "1500"},
		{"amount due", "AMOUNT DUE $45.00", "45.00"},
		{"balance", "Balance Due: 99.99", "99.99"},
		{"nepali label", "कुल रकम: रू 2,500", "2500"},
		{"nepali short label", "जम्मा 800", "800"},
		{"glyph before label", "$ 18.40 TOTAL", "18.40"},
		{"trailing glyph amount", "Coffee\n$ 4.50", "4.50"},
		{"zero total falls through", "TOTAL: 0.00\nAMOUNT DUE: 12", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TotalAmount(tt.text)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTotalAmountAbsent(t *testing.T) {
	for _, text := range []string{"", "no amounts here", "TOTAL: 0", "SUBTOTAL: 30"} {
		_, ok := TotalAmount(text)
		assert.False(t, ok, text)
	}
}

func TestParseAmount(t *testing.T) {
	d, ok := ParseAmount("1,000.")
	require.True(t, ok)
	assert.Equal(t, "1000", d.String())

	for _, s := range []string{"", "0", "0.00", ",", "abc"} {
		_, ok := ParseAmount(s)
		assert.False(t, ok, s)
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"TOTAL: $5", "USD"},
		{"Rs. 500", "NPR"},
		{"रू 500", "NPR"},
		{"₹ 20", "NPR"},
		{"500 NPR", "NPR"},
		{"€5 then $6", "EUR"},
		{"£1", "GBP"},
		{"¥300", "JPY"},
		{"no glyph 5.00", "NPR"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.text, "NPR"))
		})
	}
	assert.Equal(t, "INR", Currency("plain", "INR"))
}

func TestVendor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"labelled", "Invoice 22\nSTORE: BHATBHATENI SUPERMARKET\nMilk 90", "BHATBHATENI SUPERMARKET", true},
		{"line alone", "WALMART\nTOTAL: $34.23", "WALMART", true},
		{"devanagari line", "भाटभटेनी सुपरमार्केट\nकुल 500", "भाटभटेनी सुपरमार्केट", true},
		{"company suffix", "ACME CORP 123 Main St", "ACME", true},
		{"receipt from", "receipt\nBILL FROM: KTM MART, Baneshwor", "KTM MART", true},
		{"too short", "AB\n12.00", "", false},
		{"no candidate", "thank you for shopping", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Vendor(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"month first", "Date: 12/25/2024", "2024-12-25", true},
		{"day first when first exceeds 12", "Date: 25/12/2024", "2024-12-25", true},
		{"ambiguous reads month first", "05/03/2024", "2024-05-03", true},
		{"two digit year", "1-7-24", "2024-01-07", true},
		{"iso", "2024-01-15 10:30", "2024-01-15", true},
		{"english month", "15 Jan 2024", "2024-01-15", true},
		{"long english month", "5 January, 2024", "2024-01-05", true},
		{"nepali month", "मिति 15 बैशाख 2081", "2081-01-15", true},
		{"nepali month variant", "3 साउन 81", "2081-04-03", true},
		{"impossible date", "31/02/2024", "", false},
		{"none", "no date here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineItems(t *testing.T) {
	text := "2 Bread रू 80\nCoffee $4.50\n3 Eggs 12\nX $0.00\n1000 Widgets 5\nThank you"
	items := LineItems(text)
	require.Len(t, items, 3)

	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Bread", items[0].Description)
	assert.Equal(t, "80", items[0].Amount.String())

	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, "Coffee", items[1].Description)
	assert.Equal(t, "4.5", items[1].Amount.String())

	assert.Equal(t, 3, items[2].Quantity)
	assert.Equal(t, "Eggs", items[2].Description)
	assert.Equal(t, "12", items[2].Amount.String())

	for _, item := range items {
		assert.Empty(t, item.Category)
	}
}

func TestExtractScenario(t *testing.T) {
	f := Extract(Clean("WALMART\nTOTAL: $34.23\n1 Milk $3.99"), "NPR")

	if f.Vendor != nil {
		assert.Equal(t, "WALMART", *f.Vendor)
	}
	require.NotNil(t, f.Total)
	assert.Equal(t, "34.23", f.Total.String())
	assert.Equal(t, "USD", f.Currency)
	assert.Nil(t, f.Date)

	var milk bool
	for _, item := range f.LineItems {
		if item.Description == "Milk" && item.Amount.Equal(decimal.RequireFromString("3.99")) {
			milk = true
		}
	}
	assert.True(t, milk, "expected a Milk line item, got %+v", f.LineItems)
}

func TestExtractIdempotent(t *testing.T) {
	cleaned := Clean("STORE: KTM MART\n2024-03-01\n2 Rice रू 240\nTOTAL: रू 1,240")
	assert.Equal(t, Extract(cleaned, "NPR"), Extract(cleaned, "NPR"))
}
