// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build gosseract

package pipeline

import (
	"github.com/pdiddy/billscan/internal/ocr"
	"github.com/pdiddy/billscan/internal/ocr/tesseract"
)

// linkedTesseract returns the gosseract driver once libtesseract and the
// configured language data have answered a probe.
func linkedTesseract(name string, langs []string) (ocr.Backend, error) {
	e := tesseract.New(name, langs)
	if err := e.Probe(); err != nil {
		return nil, err
	}
	return e, nil
}

// LibraryVersion reports the linked libtesseract version.
func LibraryVersion() (string, bool) {
	return tesseract.New("", nil).Version(), true
}
