// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"os"
)

// Enhancer writes an OCR-ready version of the image at src to dst.
type Enhancer interface {
	EnhanceFile(src, dst string) error
}

// Enhanced runs an inner backend over a preprocessed copy of the image.
// The copy lives in a temporary file removed once recognition returns.
type Enhanced struct {
	name     string
	inner    Backend
	enhancer Enhancer
}

// NewEnhanced wraps inner so it sees enhanced images.
func NewEnhanced(name string, inner Backend, enhancer Enhancer) *Enhanced {
	return &Enhanced{name: name, inner: inner, enhancer: enhancer}
}

func (e *Enhanced) Name() string { return e.name }

func (e *Enhanced) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "billscan-enhanced-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := e.enhancer.EnhanceFile(imagePath, tmpPath); err != nil {
		return "", fmt.Errorf("preprocessing: %w", err)
	}
	return e.inner.Recognize(ctx, tmpPath)
}
