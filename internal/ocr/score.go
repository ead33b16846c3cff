// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/billscan/pkg/types"
)

// A receipt-like signal and its weight in the confidence score. The
// weights sum to 1.
type signal struct {
	weight float64
	re     *regexp.Regexp
}

const (
	// lengthWeight scales the text-length signal.
	lengthWeight = 0.10

	// fullLength is the rune count at which the length signal saturates.
	fullLength = 100
)

var signals = []signal{
	// amount with a currency glyph on either side
	{0.30, regexp.MustCompile(`(?:रू|रु|Rs\.?|₹|\$|€|£|¥)[ \t]*\d+[,\d]*\.?\d*|\d+[,\d]*\.?\d*[ \t]*(?:रू|रु)`)},
	// date
	{0.20, regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{1,2}-\d{1,2}`)},
	// upper-case or Devanagari run, the shape of a merchant name
	{0.20, regexp.MustCompile(`[A-Z][A-Z \t]{2,}|[\x{0905}-\x{0939}][\x{0900}-\x{097F} \t]{2,}`)},
	// quantity followed by a description
	{0.15, regexp.MustCompile(`\d+[ \t]+[A-Za-z\x{0900}-\x{097F}]{2,}`)},
	// any currency marker
	{0.05, regexp.MustCompile(`रू|रु|₹|\$|€|£|¥|Rs\.?|NPR`)},
}

// Score estimates how much text looks like a genuine receipt
// transcription, in [0, 1]. Blank text scores 0. Each signal only ever
// adds to the score, so adding receipt content to text never lowers it.
func Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	var s float64
	for _, sig := range signals {
		if sig.re.MatchString(text) {
			s += sig.weight
		}
	}
	s += lengthWeight * min(float64(utf8.RuneCountInString(text))/fullLength, 1)
	return min(s, 1)
}

// Select returns the attempt with the highest confidence. Attempts must be
// in engine priority order; ties go to the earlier attempt. It reports
// false when attempts is empty.
func Select(attempts []types.ExtractionAttempt) (types.ExtractionAttempt, bool) {
	if len(attempts) == 0 {
		return types.ExtractionAttempt{}, false
	}
	best := attempts[0]
	for _, a := range attempts[1:] {
		if a.Confidence > best.Confidence {
			best = a
		}
	}
	return best, true
}
