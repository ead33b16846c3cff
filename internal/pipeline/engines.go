// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"

	"github.com/pdiddy/billscan/internal/container"
	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/internal/ocr"
	"github.com/pdiddy/billscan/internal/preprocess"
	"github.com/pdiddy/billscan/pkg/types"
)

// defaultTesseractBin is tried when no engine path is configured and the
// linked library is unavailable.
const defaultTesseractBin = "tesseract"

// EngineDeps are the host facilities used to probe and run OCR engines.
// Zero values use the real host.
type EngineDeps struct {
	Exec          container.Executor
	DetectRuntime func(ctx context.Context) (container.Runtime, error)

	// Library returns the probed libtesseract driver, or an error when the
	// library, or language data for langs, is missing.
	Library func(name string, langs []string) (ocr.Backend, error)

	// APIKey authenticates the multilingual HTTP endpoint.
	APIKey string
}

// NewRegistry registers the OCR engines cfg asks for and the host can run,
// in priority order: tesseract, tesseract_enhanced, easyocr_multilingual.
// An engine that cannot run here is logged and left out.
func NewRegistry(ctx context.Context, cfg types.PipelineConfig, deps EngineDeps, logger *log.Logger) *ocr.Registry {
	if logger == nil {
		logger = log.Discard()
	}
	base := logger
	logger = logger.WithComponent(log.ComponentOCR)
	if deps.Exec == nil {
		deps.Exec = container.OSExecutor{}
	}
	if deps.DetectRuntime == nil {
		deps.DetectRuntime = container.DetectRuntime
	}
	if deps.Library == nil {
		deps.Library = linkedTesseract
	}

	reg := ocr.NewRegistry()

	primary := tesseractBackend(cfg.OCR, deps, logger)

	if primary != nil {
		reg.Register(primary)
		if cfg.OCR.Enhanced {
			reg.Register(ocr.NewEnhanced(ocr.EngineTesseractEnhanced, primary, preprocess.New(cfg.Preprocess, base)))
		}
	}

	if ml := cfg.OCR.Multilingual; ml.Enabled {
		if b := multilingual(ctx, ml, deps, logger); b != nil {
			reg.Register(b)
		}
	}

	logger.Info("OCR engines registered", "engines", reg.Names())
	return reg
}

// tesseractBackend picks the tesseract driver: the configured binary, else
// the linked library, else a tesseract binary on PATH.
func tesseractBackend(cfg types.OCRConfig, deps EngineDeps, logger *log.Logger) ocr.Backend {
	bin := cfg.EnginePath
	if bin == "" {
		lib, err := deps.Library(ocr.EngineTesseract, cfg.Languages)
		if err == nil {
			return lib
		}
		logger.Info("tesseract library unavailable, trying binary", log.FieldError, err)
		bin = defaultTesseractBin
	}

	cli := ocr.NewTesseractCLI(ocr.EngineTesseract, bin, cfg.Languages, deps.Exec)
	if !cli.Available() {
		logger.Warn("tesseract binary not found, engine disabled", "path", bin)
		return nil
	}
	return cli
}

func multilingual(ctx context.Context, cfg types.MultilingualConfig, deps EngineDeps, logger *log.Logger) ocr.Backend {
	if cfg.Endpoint != "" {
		return ocr.NewHTTPOCR(cfg, deps.APIKey)
	}

	rt, err := deps.DetectRuntime(ctx)
	if err != nil {
		logger.Info("multilingual engine disabled", log.FieldError, err)
		return nil
	}
	if err := rt.ImageExists(ctx, cfg.Image); err != nil {
		logger.Info("multilingual engine disabled", log.FieldError, err)
		return nil
	}
	return ocr.NewContainerOCR(rt, cfg.Image, cfg.Languages)
}
