// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reCRLF    = regexp.MustCompile(`\r\n?`)
	reSpaces  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	reGarbage = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_ \n.,:;$\-+/@#&*()\[\]{}%'₹€£¥]`)

	// reNumericToken finds tokens that may be numbers with OCR letter
	// confusions inside them, e.g. "1O.5O" or "l2".
	reNumericToken = regexp.MustCompile(`[\p{L}\p{N}.,]+`)
)

// ocrDigitFixes maps letters OCR commonly confuses with digits. They are
// applied only inside tokens that already contain a digit and no other
// letters.
var ocrDigitFixes = map[rune]rune{
	'O': '0',
	'o': '0',
	'l': '1',
	'I': '1',
}

// Clean normalizes OCR output for field extraction. It keeps line breaks,
// collapses runs of blanks, replaces garbage characters with spaces while
// preserving Devanagari and currency glyphs, maps Devanagari digits to ASCII,
// and repairs letter/digit confusions in numeric tokens. Blank lines are
// dropped.
func Clean(text string) string {
	text = reCRLF.ReplaceAllString(text, "\n")
	text = strings.Map(devanagariDigit, text)
	text = reGarbage.ReplaceAllString(text, " ")
	text = reNumericToken.ReplaceAllStringFunc(text, fixNumericToken)

	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, ln := range lines {
		ln = strings.TrimSpace(reSpaces.ReplaceAllString(ln, " "))
		if ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

func devanagariDigit(r rune) rune {
	if r >= '०' && r <= '९' {
		return '0' + (r - '०')
	}
	return r
}

func fixNumericToken(tok string) string {
	hasDigit := false
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			if _, ok := ocrDigitFixes[r]; !ok {
				return tok
			}
		}
	}
	if !hasDigit {
		return tok
	}
	return strings.Map(func(r rune) rune {
		if d, ok := ocrDigitFixes[r]; ok {
			return d
		}
		return r
	}, tok)
}
