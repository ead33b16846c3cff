// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline turns one receipt file (image or PDF) into an
// ExtractionResult: OCR with engine fallback, candidate selection, field
// extraction, categorization and validation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pdiddy/billscan/internal/categorize"
	"github.com/pdiddy/billscan/internal/extract"
	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/internal/ocr"
	"github.com/pdiddy/billscan/internal/rasterize"
	"github.com/pdiddy/billscan/internal/validate"
	"github.com/pdiddy/billscan/pkg/types"
)

// Pipeline extracts receipts. It owns its OCR backends; call Close when
// done. A Pipeline holds no per-file state and may run files concurrently.
type Pipeline struct {
	cfg      types.PipelineConfig
	registry *ocr.Registry
	runner   *ocr.Runner
	raster   rasterize.Rasterizer
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
	observe  func(path string, s State)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRasterizer replaces the pdftoppm rasterizer.
func WithRasterizer(r rasterize.Rasterizer) Option {
	return func(p *Pipeline) { p.raster = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock sets the time source for extraction timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDs sets the generator for result IDs.
func WithIDs(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(path string, s State)) Option {
	return func(p *Pipeline) { p.observe = fn }
}

// New returns a Pipeline running the backends in registry.
func New(cfg types.PipelineConfig, registry *ocr.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		registry: registry,
		logger:   log.Discard(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	p.runner = ocr.NewRunner(registry, cfg.OCR.EngineTimeout, p.logger)
	if p.raster == nil {
		p.raster = rasterize.New(cfg.PDF, nil).WithLogger(p.logger)
	}
	p.logger = p.logger.WithComponent(log.ComponentPipeline)
	return p
}

// Close tears down the OCR backends.
func (p *Pipeline) Close() error {
	return p.registry.Close()
}

// ExtractFile runs the whole pipeline on the file at path. It returns an
// error wrapping one of the types sentinel errors when the file cannot be
// processed at all; otherwise the result carries its own quality report,
// however incomplete the extraction.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (*types.ExtractionResult, error) {
	start := time.Now()
	p.transition(path, StateReceived)

	res, err := p.extractFile(ctx, path)
	if err != nil {
		p.transition(path, StateFailed)
		p.logger.Error("extraction failed",
			log.FieldFile, path,
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	p.transition(path, StateCompleted)
	p.logger.Info("extraction completed",
		log.FieldFile, path,
		log.FieldEngine, res.OCREngine,
		log.FieldConfidence, res.Summary.ConfidenceScore,
		log.FieldQuality, res.Validation.QualityScore,
		"needs_review", res.Validation.NeedsReview,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) extractFile(ctx context.Context, path string) (*types.ExtractionResult, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	kind, err := Dispatch(path)
	if err != nil {
		return nil, err
	}
	p.transition(path, StateDispatched)

	fileCtx := ctx
	if p.cfg.FileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, p.cfg.FileTimeout)
		defer cancel()
	}

	var (
		best  types.ExtractionAttempt
		pages []types.PageInfo
	)
	switch kind {
	case KindPDF:
		best, pages, err = p.ocrPDF(ctx, fileCtx, path)
	default:
		best, err = p.ocrImage(fileCtx, path)
	}
	if err != nil {
		return nil, err
	}

	return p.Assemble(path, best, pages), nil
}

func (p *Pipeline) ocrImage(ctx context.Context, path string) (types.ExtractionAttempt, error) {
	if _, err := imaging.Open(path); err != nil {
		return types.ExtractionAttempt{}, fmt.Errorf("%w: %s: %w", types.ErrUnreadableImage, path, err)
	}

	attempts, err := p.runner.Run(ctx, path)
	p.transition(path, StateOCRAttempted)
	if err != nil {
		return types.ExtractionAttempt{}, fmt.Errorf("%s: %w", path, err)
	}

	best, _ := ocr.Select(attempts)
	p.logger.Info("selected OCR candidate",
		log.FieldFile, path,
		log.FieldEngine, best.Engine,
		log.FieldConfidence, best.Confidence,
		"candidates", len(attempts),
	)
	p.transition(path, StateBestCandidateSelected)
	return best, nil
}

// Assemble runs cleaning, field extraction, categorization and validation
// over the selected OCR candidate. pages is nil for single images. The
// result is deterministic apart from its ID and timestamp.
func (p *Pipeline) Assemble(source string, best types.ExtractionAttempt, pages []types.PageInfo) *types.ExtractionResult {
	cleaned := extract.Clean(best.Text)
	f := extract.Extract(cleaned, p.cfg.DefaultCurrency)
	p.transition(source, StateFieldsExtracted)

	items := f.LineItems
	if items == nil {
		items = []types.LineItem{}
	}
	categorize.Apply(items)
	p.transition(source, StateLineItemsCategorized)

	res := &types.ExtractionResult{
		ID:            p.newID(),
		SourceFile:    source,
		ExtractedAt:   p.now().UTC(),
		OCREngine:     best.Engine,
		OCRConfidence: best.Confidence,
		Vendor:        f.Vendor,
		Date:          f.Date,
		TotalAmount:   f.Total,
		Currency:      f.Currency,
		LineItems:     items,
		RawText:       cleaned,
		Pages:         pages,
	}
	validate.Revalidate(res, p.cfg.Validation)
	p.transition(source, StateValidated)
	return res
}

func (p *Pipeline) transition(path string, s State) {
	p.logger.Debug("state transition", log.FieldFile, path, log.FieldState, string(s))
	if p.observe != nil {
		p.observe(path, s)
	}
}
