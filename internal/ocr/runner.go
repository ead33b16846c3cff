// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/pkg/types"
)

// Runner invokes every registered backend on an image, one after another
// in priority order.
type Runner struct {
	registry *Registry
	timeout  time.Duration
	logger   *log.Logger
}

// NewRunner returns a Runner over registry. Each backend invocation is
// bounded by timeout; zero disables the bound.
func NewRunner(registry *Registry, timeout time.Duration, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	return &Runner{
		registry: registry,
		timeout:  timeout,
		logger:   logger.WithComponent(log.ComponentOCR),
	}
}

// Run returns one attempt per backend that answered, in priority order,
// each scored with Score. Blank output is kept as an attempt scoring 0. A
// failing backend (error or timeout) is logged and skipped. When every
// backend fails, Run returns an error wrapping types.ErrOCRUnavailable and
// each EngineError.
func (r *Runner) Run(ctx context.Context, imagePath string) ([]types.ExtractionAttempt, error) {
	var (
		attempts []types.ExtractionAttempt
		errs     []error
	)
	for _, b := range r.registry.Backends() {
		text, err := r.recognize(ctx, b, imagePath)
		if err != nil {
			errs = append(errs, &EngineError{Engine: b.Name(), Err: err})
			r.logger.Warn("OCR engine failed",
				log.FieldEngine, b.Name(),
				log.FieldFile, imagePath,
				log.FieldError, err,
			)
			continue
		}
		a := types.ExtractionAttempt{Engine: b.Name(), Text: text, Confidence: Score(text)}
		r.logger.Debug("OCR engine succeeded",
			log.FieldEngine, a.Engine,
			log.FieldFile, imagePath,
			log.FieldConfidence, a.Confidence,
		)
		attempts = append(attempts, a)
	}

	if len(attempts) == 0 {
		if len(errs) == 0 {
			return nil, fmt.Errorf("%w: no OCR engines registered", types.ErrOCRUnavailable)
		}
		return nil, fmt.Errorf("%w: %w", types.ErrOCRUnavailable, errors.Join(errs...))
	}
	return attempts, nil
}

// RunBest runs every backend and returns the highest-scoring attempt.
func (r *Runner) RunBest(ctx context.Context, imagePath string) (types.ExtractionAttempt, error) {
	attempts, err := r.Run(ctx, imagePath)
	if err != nil {
		return types.ExtractionAttempt{}, err
	}
	best, _ := Select(attempts)
	r.logger.Info("selected OCR candidate",
		log.FieldEngine, best.Engine,
		log.FieldFile, imagePath,
		log.FieldConfidence, best.Confidence,
		"candidates", len(attempts),
	)
	return best, nil
}

func (r *Runner) recognize(ctx context.Context, b Backend, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := b.Recognize(ctx, imagePath)
	if err == nil && ctx.Err() != nil {
		// Finished after its deadline; a late answer counts as a timeout.
		err = ctx.Err()
	}
	r.logger.Debug("OCR engine finished",
		log.FieldEngine, b.Name(),
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		r.logger.Warn("OCR engine returned no text",
			log.FieldEngine, b.Name(),
			log.FieldFile, imagePath,
		)
	}
	return text, nil
}
