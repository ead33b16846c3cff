// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

var reCurrency = regexp.MustCompile(`रू|रु|Rs\.?|NPR|₹|\$|€|£|¥`)

// Currency returns the ISO code of the first currency glyph in text, or
// fallback when the text carries none.
func Currency(text, fallback string) string {
	m := reCurrency.FindString(text)
	switch {
	case m == "":
		return fallback
	case m == "$":
		return "USD"
	case m == "€":
		return "EUR"
	case m == "£":
		return "GBP"
	case m == "¥":
		return "JPY"
	case m == "₹", m == "रू", m == "रु", m == "NPR", strings.HasPrefix(m, "Rs"):
		return "NPR"
	}
	return fallback
}
