// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rasterize renders PDF pages to PNG images for OCR.
package rasterize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/billscan/internal/container"
	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/pkg/types"
)

// Rasterizer counts and renders the pages of a PDF. Different backends
// (pdftoppm, a fake in tests) implement this interface.
type Rasterizer interface {
	// PageCount returns the number of pages in the PDF.
	PageCount(ctx context.Context, pdfPath string) (int, error)

	// Render writes the 1-based page to a temporary image. The caller must
	// Close the returned Page.
	Render(ctx context.Context, pdfPath string, page int) (*Page, error)
}

// Page is a rendered page image held in its own temporary directory.
type Page struct {
	Index int
	Path  string
	dir   string
}

// NewPage returns a Page for an image at path inside dir; Close removes dir.
func NewPage(index int, path, dir string) *Page {
	return &Page{Index: index, Path: path, dir: dir}
}

// Close deletes the page image and its directory.
func (p *Page) Close() error {
	if p == nil || p.dir == "" {
		return nil
	}
	return os.RemoveAll(p.dir)
}

// WithPage renders page, calls fn with the image path, and deletes the
// image when fn returns, whether or not fn fails.
func WithPage(ctx context.Context, r Rasterizer, pdfPath string, page int, fn func(imagePath string) error) error {
	p, err := r.Render(ctx, pdfPath, page)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p.Path)
}

// Pdftoppm renders pages with poppler's pdftoppm and counts them with pdfcpu.
type Pdftoppm struct {
	bin       string
	dpi       int
	exec      container.Executor
	pageCount func(path string) (int, error)
	logger    *log.Logger
}

// New returns a Pdftoppm configured from cfg. A nil exec uses the host.
func New(cfg types.PDFConfig, exec container.Executor) *Pdftoppm {
	if exec == nil {
		exec = container.OSExecutor{}
	}
	return &Pdftoppm{
		bin:       cfg.Pdftoppm,
		dpi:       cfg.DPI,
		exec:      exec,
		pageCount: api.PageCountFile,
		logger:    log.Discard(),
	}
}

// WithLogger sets the logger used to report rendered pages.
func (p *Pdftoppm) WithLogger(logger *log.Logger) *Pdftoppm {
	if logger != nil {
		p.logger = logger.WithComponent(log.ComponentRasterize)
	}
	return p
}

// Available reports whether the pdftoppm binary can be found.
func (p *Pdftoppm) Available() bool {
	_, err := p.exec.LookPath(p.bin)
	return err == nil
}

func (p *Pdftoppm) PageCount(ctx context.Context, pdfPath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.pageCount(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %w", types.ErrPDFConversion, pdfPath, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %s has no pages", types.ErrPDFConversion, pdfPath)
	}
	return n, nil
}

// Render runs `pdftoppm -f N -l N -r DPI -png -singlefile <pdf> <prefix>`.
func (p *Pdftoppm) Render(ctx context.Context, pdfPath string, page int) (*Page, error) {
	dir, err := os.MkdirTemp("", "billscan-page-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp dir: %w", types.ErrPDFConversion, err)
	}

	prefix := filepath.Join(dir, "page-"+strconv.Itoa(page))
	n := strconv.Itoa(page)
	start := time.Now()
	args := []string{"-f", n, "-l", n, "-r", strconv.Itoa(p.dpi), "-png", "-singlefile", pdfPath, prefix}
	if err := p.exec.RunPiped(ctx, p.bin, args, nil, nil); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: page %d of %s: %w", types.ErrPDFConversion, page, pdfPath, err)
	}

	out := prefix + ".png"
	if _, err := os.Stat(out); err != nil {
		os.RemoveAll(dir)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: page %d of %s: no image written", types.ErrPDFConversion, page, pdfPath)
		}
		return nil, fmt.Errorf("%w: page %d of %s: %w", types.ErrPDFConversion, page, pdfPath, err)
	}
	p.logger.Debug("rendered PDF page",
		log.FieldFile, pdfPath,
		log.FieldPage, page,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return NewPage(page, out, dir), nil
}
