package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "billscan/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// MultilingualConfig configures the deep-learning multilingual OCR engine.
// When Endpoint is set the engine is reached over HTTP; otherwise Image is
// run through the local container runtime.
type MultilingualConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled registers the engine at startup.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Languages are the engine's language codes (default en, ne).
	Languages []string `json:"languages" yaml:"languages"`

	// Image is the container image that reads an image on stdin and prints
	// one recognized line per output line.
	Image string `json:"image" yaml:"image"`

	// Endpoint is an optional HTTP OCR service URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey authenticates against Endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// OCRConfig holds settings for the OCR runner.
type OCRConfig struct {
	// Languages are Tesseract language codes (default eng).
	Languages []string `json:"languages" yaml:"languages"`

	// EnginePath is the Tesseract executable. When empty the linked
	// library driver is used.
	EnginePath string `json:"engine_path,omitempty" yaml:"engine_path,omitempty"`

	// EngineTimeout bounds one engine invocation on one image.
	EngineTimeout time.Duration `json:"engine_timeout" yaml:"engine_timeout"`

	// Enhanced registers the Tesseract pass over the preprocessed image.
	Enhanced bool `json:"enhanced" yaml:"enhanced"`

	Multilingual MultilingualConfig `json:"multilingual" yaml:"multilingual"`
}

// PreprocessConfig tunes the image preprocessor.
type PreprocessConfig struct {
	// ThresholdBlock is the adaptive threshold neighbourhood size in pixels (odd).
	ThresholdBlock int `json:"threshold_block" yaml:"threshold_block"`

	// ThresholdC is subtracted from the local mean before binarization.
	ThresholdC float64 `json:"threshold_c" yaml:"threshold_c"`

	// CloseKernel is the square kernel size of the morphological closing.
	CloseKernel int `json:"close_kernel" yaml:"close_kernel"`

	// ContrastFactor multiplies contrast around mid-grey (2.0 doubles it).
	ContrastFactor float64 `json:"contrast_factor" yaml:"contrast_factor"`

	// MinWidth upscales narrower images before OCR; 0 disables.
	MinWidth int `json:"min_width" yaml:"min_width"`
}

// PDFConfig holds settings for PDF rasterization and page fan-out.
type PDFConfig struct {
	// Pdftoppm is the rasterizer binary (default "pdftoppm").
	Pdftoppm string `json:"pdftoppm" yaml:"pdftoppm"`

	// DPI is the rasterization resolution (default 300).
	DPI int `json:"dpi" yaml:"dpi"`

	// Workers bounds concurrent page extraction (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// PageTimeout bounds OCR on a single page; 0 disables.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`

	// MaxPages caps the pages processed; 0 means no limit.
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// ValidationConfig holds the quality model thresholds.
type ValidationConfig struct {
	// HighAmountThreshold triggers a "verify" suggestion when exceeded.
	HighAmountThreshold float64 `json:"high_amount_threshold" yaml:"high_amount_threshold"`

	// ReviewThreshold forces manual review when the quality score is below it.
	ReviewThreshold float64 `json:"review_threshold" yaml:"review_threshold"`
}

// StoreConfig locates the results database.
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PublishConfig configures the AMQP result publisher.
type PublishConfig struct {
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	Exchange   string `json:"exchange" yaml:"exchange"`
	RoutingKey string `json:"routing_key" yaml:"routing_key"`
}

// PipelineConfig groups all settings of the extraction pipeline.
type PipelineConfig struct {
	// DefaultCurrency is used when no currency glyph is found (default NPR).
	DefaultCurrency string `json:"default_currency" yaml:"default_currency"`

	// FileTimeout bounds the whole extraction of one file; 0 disables.
	FileTimeout time.Duration `json:"file_timeout" yaml:"file_timeout"`

	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Preprocess PreprocessConfig `json:"preprocess" yaml:"preprocess"`
	PDF        PDFConfig        `json:"pdf" yaml:"pdf"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DefaultCurrency: "NPR",
		FileTimeout:     5 * time.Minute,
		OCR: OCRConfig{
			Languages:     []string{"eng"},
			EngineTimeout: 60 * time.Second,
			Enhanced:      true,
			Multilingual: MultilingualConfig{
				HTTPConfig: HTTPConfig{
					Timeout:   90 * time.Second,
					UserAgent: "billscan/0.1",
				},
				Enabled:    true,
				Languages:  []string{"en", "ne"},
				Image:      "easyocr:latest",
				MaxRetries: 3,
			},
		},
		Preprocess: PreprocessConfig{
			ThresholdBlock: 11,
			ThresholdC:     2,
			CloseKernel:    2,
			ContrastFactor: 2.0,
			MinWidth:       1000,
		},
		PDF: PDFConfig{
			Pdftoppm:    "pdftoppm",
			DPI:         300,
			Workers:     1,
			PageTimeout: 2 * time.Minute,
		},
		Validation: ValidationConfig{
			HighAmountThreshold: 100000,
			ReviewThreshold:     0.7,
		},
		Store: StoreConfig{
			DBPath: "data/billscan.db",
		},
		Publish: PublishConfig{
			Exchange:   "billscan",
			RoutingKey: "receipt.extracted",
		},
	}
}

// Validate reports every invalid setting in one error.
func (c PipelineConfig) Validate() error {
	var errs []string

	if len(strings.TrimSpace(c.DefaultCurrency)) != 3 {
		errs = append(errs, fmt.Sprintf("invalid default currency %q: must be a 3-letter code", c.DefaultCurrency))
	}
	if c.FileTimeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid file timeout %v: must not be negative", c.FileTimeout))
	}
	if c.OCR.EngineTimeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid engine timeout %v: must not be negative", c.OCR.EngineTimeout))
	}
	if c.Preprocess.ThresholdBlock < 3 || c.Preprocess.ThresholdBlock%2 == 0 {
		errs = append(errs, fmt.Sprintf("invalid threshold block %d: must be odd and at least 3", c.Preprocess.ThresholdBlock))
	}
	if c.Preprocess.CloseKernel < 1 {
		errs = append(errs, fmt.Sprintf("invalid close kernel %d: must be at least 1", c.Preprocess.CloseKernel))
	}
	if c.Preprocess.ContrastFactor <= 0 {
		errs = append(errs, fmt.Sprintf("invalid contrast factor %v: must be positive", c.Preprocess.ContrastFactor))
	}
	if c.PDF.DPI < 72 || c.PDF.DPI > 1200 {
		errs = append(errs, fmt.Sprintf("invalid DPI %d: must be between 72 and 1200", c.PDF.DPI))
	}
	if c.PDF.Workers < 1 {
		errs = append(errs, fmt.Sprintf("invalid worker count %d: must be at least 1", c.PDF.Workers))
	}
	if c.Validation.HighAmountThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("invalid high amount threshold %v: must be positive", c.Validation.HighAmountThreshold))
	}
	if c.Validation.ReviewThreshold < 0 || c.Validation.ReviewThreshold > 1 {
		errs = append(errs, fmt.Sprintf("invalid review threshold %v: must be within [0, 1]", c.Validation.ReviewThreshold))
	}
	if c.OCR.Multilingual.Enabled && c.OCR.Multilingual.Endpoint == "" && c.OCR.Multilingual.Image == "" {
		errs = append(errs, "multilingual OCR is enabled but neither endpoint nor image is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
