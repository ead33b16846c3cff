// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr runs OCR backends over an image, scores each backend's text
// for how receipt-like it is, and selects the best candidate.
//
// Backends are registered at startup according to what is installed and
// configured; an engine that is not available is simply not registered.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Engine names, in priority order.
const (
	EngineTesseract         = "tesseract"
	EngineTesseractEnhanced = "tesseract_enhanced"
	EngineMultilingual      = "easyocr_multilingual"
)

// Backend converts the image at imagePath into text. Backends are not
// expected to be preemptible; ctx is checked before work starts and passed
// to any subprocess or network call.
type Backend interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// EngineError is a single backend's failure on a single image. The runner
// recovers from it by moving on to the next backend.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("OCR engine %s: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Registry holds backends in priority order. Registration happens once at
// startup; the registry is read-only afterwards and safe to share between
// page workers.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a registry holding backends in the given order.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register appends b at the lowest priority. A nil backend is ignored.
func (r *Registry) Register(b Backend) {
	if b != nil {
		r.backends = append(r.backends, b)
	}
}

// Backends returns the registered backends in priority order.
func (r *Registry) Backends() []Backend {
	return r.backends
}

// Names returns the registered engine names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Len returns the number of registered backends.
func (r *Registry) Len() int { return len(r.backends) }

// Close releases backends that hold resources (those implementing
// io.Closer). Errors from all backends are joined.
func (r *Registry) Close() error {
	var errs []error
	for _, b := range r.backends {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", b.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
