// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/internal/rasterize"
	"github.com/pdiddy/billscan/pkg/types"
)

// pageResult is one page's selected OCR candidate. Workers write only
// their own index, so the slice needs no lock.
type pageResult struct {
	attempt types.ExtractionAttempt
	ok      bool
}

// PageMarker returns the separator written before page n's text.
func PageMarker(n int) string {
	return fmt.Sprintf("--- Page %d ---", n)
}

// ocrPDF rasterizes and OCRs every page, at most cfg.PDF.Workers at a
// time, and joins the page texts in page order.
//
// ctx is the caller's context and fileCtx carries the per-file deadline.
// Cancellation is checked between pages: pages not started when fileCtx
// ends are left unextracted. A caller cancellation fails the document; an
// expired file deadline keeps whatever pages completed. A page whose OCR
// engines all fail is unextracted too. Rasterization failure is fatal.
func (p *Pipeline) ocrPDF(ctx, fileCtx context.Context, path string) (types.ExtractionAttempt, []types.PageInfo, error) {
	n, err := p.raster.PageCount(fileCtx, path)
	if err != nil {
		return types.ExtractionAttempt{}, nil, err
	}
	if limit := p.cfg.PDF.MaxPages; limit > 0 && n > limit {
		p.logger.Warn("page limit reached, ignoring remaining pages", log.FieldFile, path, "pages", n, "limit", limit)
		n = limit
	}

	results := make([]pageResult, n)
	g, gctx := errgroup.WithContext(fileCtx)
	g.SetLimit(max(p.cfg.PDF.Workers, 1))

	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return p.ocrPage(gctx, path, i+1, &results[i])
		})
	}
	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return types.ExtractionAttempt{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	if waitErr != nil {
		return types.ExtractionAttempt{}, nil, waitErr
	}
	p.transition(path, StateOCRAttempted)

	best, pages := joinPages(results)
	if best.Text == "" {
		return types.ExtractionAttempt{}, nil, fmt.Errorf("%w: %s: no page produced text", types.ErrOCRUnavailable, path)
	}
	p.logger.Info("document pages joined",
		log.FieldFile, path,
		"pages", len(pages),
		log.FieldConfidence, best.Confidence,
	)
	p.transition(path, StateBestCandidateSelected)
	return best, pages, nil
}

// ocrPage renders page and stores its best OCR candidate in out. OCR
// failure and deadline expiry leave out unset and return nil.
func (p *Pipeline) ocrPage(ctx context.Context, path string, page int, out *pageResult) error {
	pageCtx := ctx
	if p.cfg.PDF.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, p.cfg.PDF.PageTimeout)
		defer cancel()
	}

	err := rasterize.WithPage(pageCtx, p.raster, path, page, func(imagePath string) error {
		best, err := p.runner.RunBest(pageCtx, imagePath)
		if err != nil {
			p.logger.Warn("page not extracted",
				log.FieldFile, path,
				log.FieldPage, page,
				log.FieldError, err,
			)
			return nil
		}
		*out = pageResult{attempt: best, ok: true}
		return nil
	})
	if err != nil && pageCtx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
		p.logger.Warn("page timed out during rasterization",
			log.FieldFile, path,
			log.FieldPage, page,
			log.FieldError, err,
		)
		return nil
	}
	return err
}

// joinPages concatenates extracted page texts in page order, one marker
// per extracted page, and averages their confidence.
func joinPages(results []pageResult) (types.ExtractionAttempt, []types.PageInfo) {
	var (
		b     strings.Builder
		sum   float64
		count int
	)
	pages := make([]types.PageInfo, len(results))
	for i, r := range results {
		pages[i] = types.PageInfo{Index: i + 1}
		if !r.ok {
			continue
		}
		pages[i].Engine = r.attempt.Engine
		pages[i].Confidence = r.attempt.Confidence
		pages[i].Extracted = true

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(PageMarker(i + 1))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(r.attempt.Text))
		sum += r.attempt.Confidence
		count++
	}

	best := types.ExtractionAttempt{Engine: types.EnginePDFMultiPage, Text: b.String()}
	if count > 0 {
		best.Confidence = sum / float64(count)
	}
	return best, pages
}
