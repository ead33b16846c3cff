// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Fatal pipeline errors. Callers match them with errors.Is; the concrete
// error returned by the pipeline wraps one of these with file context.
var (
	// ErrFileNotFound means the input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat means the input extension is not an image or PDF.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrOCRUnavailable means every OCR engine failed for an image (or for
	// every page of a document).
	ErrOCRUnavailable = errors.New("all OCR engines failed")

	// ErrPDFConversion means a PDF page could not be rasterized.
	ErrPDFConversion = errors.New("PDF conversion failed")

	// ErrUnreadableImage means the input image bytes could not be decoded.
	ErrUnreadableImage = errors.New("unreadable image")
)
