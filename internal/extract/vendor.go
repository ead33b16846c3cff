// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// vendorName matches an upper-case or Devanagari business name on a single line.
const vendorName = `([A-Z\x{0900}-\x{097F}][A-Z \t\x{0900}-\x{097F}&'.-]{2,})`

var vendorMatchers = []matcher[string]{
	// STORE: NAME, FROM NAME, स्टोर: NAME
	vendorPattern(`(?m)(?:\b(?:STORE|VENDOR|MERCHANT|FROM|AT)\b|दोकान|स्टोर)[ \t]*:?[ \t]*` + vendorName),
	// NAME alone on its line
	vendorPattern(`(?m)^` + vendorName + `[ \t]*$`),
	// NAME followed by a company suffix
	vendorPattern(`(?m)` + vendorName + `[ \t]*(?:\b(?:INC|LLC|LTD|CORP|CO)\b|प्रा\.?[ \t]*लि\.?|लि\.)`),
	// RECEIPT FROM NAME, बिल बाट NAME
	vendorPattern(`(?m)(?:RECEIPT FROM|BILL FROM|बिल बाट)[ \t]*:?[ \t]*` + vendorName),
}

func vendorPattern(expr string) matcher[string] {
	re := regexp.MustCompile(expr)
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(v) <= 2 {
			return "", false
		}
		return v, true
	}
}

// Vendor returns the merchant name found by the first vendor pattern that
// yields more than two characters.
func Vendor(text string) (string, bool) {
	return firstMatch(text, vendorMatchers)
}
