// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !gosseract

package pipeline

import (
	"errors"

	"github.com/pdiddy/billscan/internal/ocr"
)

var errNoLibrary = errors.New("built without libtesseract (use -tags gosseract)")

func linkedTesseract(string, []string) (ocr.Backend, error) {
	return nil, errNoLibrary
}

// LibraryVersion reports the linked libtesseract version. This build has
// none.
func LibraryVersion() (string, bool) {
	return "", false
}
