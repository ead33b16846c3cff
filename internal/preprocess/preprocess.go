// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preprocess prepares receipt photographs for OCR: grayscale,
// denoise, adaptive threshold, morphological closing and a contrast boost.
// Every step produces a new image; the input is never modified.
package preprocess

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/pkg/types"
)

// Preprocessor enhances images for OCR.
type Preprocessor struct {
	cfg    types.PreprocessConfig
	logger *log.Logger
}

// New returns a Preprocessor using cfg.
func New(cfg types.PreprocessConfig, logger *log.Logger) *Preprocessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &Preprocessor{cfg: cfg, logger: logger.WithComponent(log.ComponentPreprocess)}
}

// Enhance returns the OCR-ready version of img. It fails soft: if any step
// panics the original image is returned unchanged.
func (p *Preprocessor) Enhance(img image.Image) (out image.Image) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("enhancement failed, using original image", log.FieldError, fmt.Sprint(r))
			out = img
		}
	}()

	start := time.Now()
	g := toGray(imaging.Grayscale(img))
	g = p.upscale(g)
	g = median3(g)
	g = adaptiveThreshold(g, p.cfg.ThresholdBlock, p.cfg.ThresholdC)
	g = closing(g, p.cfg.CloseKernel)
	res := imaging.AdjustContrast(g, contrastPercent(p.cfg.ContrastFactor))

	p.logger.Debug("image enhanced",
		"width", res.Bounds().Dx(),
		"height", res.Bounds().Dy(),
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return res
}

// EnhanceFile reads src, enhances it and writes the result to dst as PNG.
// An unreadable src is an error; a failed enhancement writes the original.
func (p *Preprocessor) EnhanceFile(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	if err := imaging.Save(p.Enhance(img), dst, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return fmt.Errorf("writing enhanced image %s: %w", dst, err)
	}
	return nil
}

// upscale enlarges images narrower than MinWidth, keeping the aspect ratio.
// Small photographs lose thin strokes to the threshold step otherwise.
func (p *Preprocessor) upscale(g *image.Gray) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	if p.cfg.MinWidth <= 0 || w == 0 || w >= p.cfg.MinWidth {
		return g
	}
	nh := int(math.Round(float64(h) * float64(p.cfg.MinWidth) / float64(w)))
	dst := image.NewGray(image.Rect(0, 0, p.cfg.MinWidth, max(nh, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), g, g.Bounds(), xdraw.Src, nil)
	return dst
}

// contrastPercent converts a multiplicative contrast factor into the
// percentage imaging.AdjustContrast expects (factor 2 is +100%).
func contrastPercent(factor float64) float64 {
	return math.Max(-100, math.Min(100, (factor-1)*100))
}

// toGray copies a grayscale NRGBA image into a single-channel image with
// bounds starting at the origin.
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < b.Dx(); x++ {
			g.Pix[y*g.Stride+x] = row[x*4]
		}
	}
	return g
}
