// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build gosseract

// Package tesseract is the linked Tesseract OCR driver built on gosseract.
// It needs the tesseract and leptonica headers, so it is only compiled with
// the gosseract build tag.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text with libtesseract. A new client is created per
// image, so an Engine can be shared between page workers.
type Engine struct {
	name          string
	langs         []string
	clientFactory func() *gosseract.Client
	languages     func() ([]string, error)
}

// New returns an Engine reporting itself as name and recognizing langs
// (Tesseract codes such as "eng" or "nep").
func New(name string, langs []string) *Engine {
	return &Engine{
		name:          name,
		langs:         langs,
		clientFactory: gosseract.NewClient,
		languages:     gosseract.GetAvailableLanguages,
	}
}

func (e *Engine) Name() string { return e.name }

// Version reports the linked libtesseract version. Callers use it to probe
// that the library is present before registering the engine.
func (e *Engine) Version() string {
	c := e.clientFactory()
	defer c.Close()
	return c.Version()
}

// Probe checks that libtesseract answers and has trained data for every
// configured language.
func (e *Engine) Probe() error {
	if e.Version() == "" {
		return errors.New("libtesseract reported no version")
	}
	if len(e.langs) == 0 {
		return nil
	}
	have, err := e.languages()
	if err != nil {
		return fmt.Errorf("listing tesseract languages: %w", err)
	}
	var missing []string
	for _, l := range e.langs {
		if !slices.Contains(have, l) {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tesseract language data: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Recognize runs OCR on the image at imagePath. The call is not
// preemptible; ctx is only checked before work starts.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if len(e.langs) > 0 {
		if err := c.SetLanguage(e.langs...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
