// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// currencyGlyph matches the currency markers that may precede an amount.
	currencyGlyph = `(?:रू\.?|रु\.?|Rs\.?|₹|\$|€|£|¥)`

	// number matches an amount with optional thousands separators and decimals.
	number = `(\d+[,\d]*\.?\d*)`

	// labelStart keeps a label from matching inside a longer word
	// (TOTAL inside SUBTOTAL).
	labelStart = `(?:^|[^\p{L}])`
)

// labelled builds a total-amount matcher for "<label> [:] [glyph] <amount>".
// Labels prefixed with SUB (SUBTOTAL, SUB TOTAL) are skipped.
func labelled(label string) matcher[decimal.Decimal] {
	re := regexp.MustCompile(`(?im)` + labelStart + `(SUB[ \t-]*)?(?:` + label + `)[ \t]*:?[ \t]*` + currencyGlyph + `?[ \t]*` + number)
	return func(text string) (decimal.Decimal, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if m[1] != "" {
				continue
			}
			if d, ok := ParseAmount(m[2]); ok {
				return d, true
			}
		}
		return decimal.Decimal{}, false
	}
}

// amountMatcher returns the first positive amount captured by re's first
// group. A non-positive or unparsable capture moves on to the next match.
func amountMatcher(re *regexp.Regexp) matcher[decimal.Decimal] {
	return func(text string) (decimal.Decimal, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if d, ok := ParseAmount(m[1]); ok {
				return d, true
			}
		}
		return decimal.Decimal{}, false
	}
}

var totalMatchers = []matcher[decimal.Decimal]{
	labelled(`GRAND[ \t]*TOTAL`),
	labelled(`(?:NET[ \t]+)?TOTAL(?:[ \t]+AMOUNT)?`),
	labelled(`AMOUNT[ \t]+DUE`),
	labelled(`BALANCE(?:[ \t]+DUE)?`),
	labelled(`कुल[ \t]*रकम|कुल|जम्मा[ \t]*रकम|जम्मा`),
	amountMatcher(regexp.MustCompile(`(?im)` + currencyGlyph + `[ \t]*` + number + `[ \t]*(?:TOTAL|DUE|कुल)`)),
	amountMatcher(regexp.MustCompile(`(?m)` + currencyGlyph + `[ \t]*` + number + `[ \t]*$`)),
}

// TotalAmount returns the receipt total found by the first label-anchored
// pattern that yields a positive amount.
func TotalAmount(text string) (decimal.Decimal, bool) {
	return firstMatch(text, totalMatchers)
}

// ParseAmount parses a captured amount, dropping thousands separators. It
// rejects values that are not strictly positive.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimRight(strings.ReplaceAll(s, ",", ""), ".")
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}
