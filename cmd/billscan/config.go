// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/billscan/internal/secrets"
	"github.com/pdiddy/billscan/pkg/types"
)

// Configuration keys. Environment variables use the BILLSCAN_ prefix with
// dots replaced by underscores, e.g. BILLSCAN_OCR_ENGINE_PATH.
const (
	keyLogLevel        = "log_level"
	keyDefaultCurrency = "default_currency"
	keyFileTimeout     = "file_timeout"

	keyOCRLanguages     = "ocr.languages"
	keyOCREnginePath    = "ocr.engine_path"
	keyOCREngineTimeout = "ocr.engine_timeout"
	keyOCREnhanced      = "ocr.enhanced"

	keyMLEnabled    = "ocr.multilingual.enabled"
	keyMLLanguages  = "ocr.multilingual.languages"
	keyMLImage      = "ocr.multilingual.image"
	keyMLEndpoint   = "ocr.multilingual.endpoint"
	keyMLAPIKey     = "ocr.multilingual.api_key"
	keyMLTimeout    = "ocr.multilingual.timeout"
	keyMLUserAgent  = "ocr.multilingual.user_agent"
	keyMLMaxRetries = "ocr.multilingual.max_retries"

	keyThresholdBlock = "preprocess.threshold_block"
	keyThresholdC     = "preprocess.threshold_c"
	keyCloseKernel    = "preprocess.close_kernel"
	keyContrast       = "preprocess.contrast_factor"
	keyMinWidth       = "preprocess.min_width"

	keyPdftoppm    = "pdf.pdftoppm"
	keyDPI         = "pdf.dpi"
	keyWorkers     = "pdf.workers"
	keyPageTimeout = "pdf.page_timeout"
	keyMaxPages    = "pdf.max_pages"

	keyHighAmount      = "validation.high_amount_threshold"
	keyReviewThreshold = "validation.review_threshold"

	keyDBPath = "store.db_path"

	keyPublishURL        = "publish.url"
	keyPublishExchange   = "publish.exchange"
	keyPublishRoutingKey = "publish.routing_key"
)

// setDefaults registers every key with its default so that environment
// variables are honoured for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDefaultCurrency, d.DefaultCurrency)
	v.SetDefault(keyFileTimeout, d.FileTimeout)

	v.SetDefault(keyOCRLanguages, d.OCR.Languages)
	v.SetDefault(keyOCREnginePath, d.OCR.EnginePath)
	v.SetDefault(keyOCREngineTimeout, d.OCR.EngineTimeout)
	v.SetDefault(keyOCREnhanced, d.OCR.Enhanced)

	ml := d.OCR.Multilingual
	v.SetDefault(keyMLEnabled, ml.Enabled)
	v.SetDefault(keyMLLanguages, ml.Languages)
	v.SetDefault(keyMLImage, ml.Image)
	v.SetDefault(keyMLEndpoint, ml.Endpoint)
	v.SetDefault(keyMLAPIKey, ml.APIKey)
	v.SetDefault(keyMLTimeout, ml.Timeout)
	v.SetDefault(keyMLUserAgent, ml.UserAgent)
	v.SetDefault(keyMLMaxRetries, ml.MaxRetries)

	v.SetDefault(keyThresholdBlock, d.Preprocess.ThresholdBlock)
	v.SetDefault(keyThresholdC, d.Preprocess.ThresholdC)
	v.SetDefault(keyCloseKernel, d.Preprocess.CloseKernel)
	v.SetDefault(keyContrast, d.Preprocess.ContrastFactor)
	v.SetDefault(keyMinWidth, d.Preprocess.MinWidth)

	v.SetDefault(keyPdftoppm, d.PDF.Pdftoppm)
	v.SetDefault(keyDPI, d.PDF.DPI)
	v.SetDefault(keyWorkers, d.PDF.Workers)
	v.SetDefault(keyPageTimeout, d.PDF.PageTimeout)
	v.SetDefault(keyMaxPages, d.PDF.MaxPages)

	v.SetDefault(keyHighAmount, d.Validation.HighAmountThreshold)
	v.SetDefault(keyReviewThreshold, d.Validation.ReviewThreshold)

	v.SetDefault(keyDBPath, d.Store.DBPath)

	v.SetDefault(keyPublishURL, d.Publish.URL)
	v.SetDefault(keyPublishExchange, d.Publish.Exchange)
	v.SetDefault(keyPublishRoutingKey, d.Publish.RoutingKey)
}

// pipelineConfig builds and validates the pipeline configuration from v.
// Credentials come from s unless v sets them explicitly.
func pipelineConfig(v *viper.Viper, s secrets.Set) (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		DefaultCurrency: v.GetString(keyDefaultCurrency),
		FileTimeout:     v.GetDuration(keyFileTimeout),
		OCR: types.OCRConfig{
			Languages:     v.GetStringSlice(keyOCRLanguages),
			EnginePath:    v.GetString(keyOCREnginePath),
			EngineTimeout: v.GetDuration(keyOCREngineTimeout),
			Enhanced:      v.GetBool(keyOCREnhanced),
			Multilingual: types.MultilingualConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   v.GetDuration(keyMLTimeout),
					UserAgent: v.GetString(keyMLUserAgent),
				},
				Enabled:    v.GetBool(keyMLEnabled),
				Languages:  v.GetStringSlice(keyMLLanguages),
				Image:      v.GetString(keyMLImage),
				Endpoint:   v.GetString(keyMLEndpoint),
				APIKey:     s.Or(secrets.KeyOCRAPIKey, v.GetString(keyMLAPIKey)),
				MaxRetries: v.GetInt(keyMLMaxRetries),
			},
		},
		Preprocess: types.PreprocessConfig{
			ThresholdBlock: v.GetInt(keyThresholdBlock),
			ThresholdC:     v.GetFloat64(keyThresholdC),
			CloseKernel:    v.GetInt(keyCloseKernel),
			ContrastFactor: v.GetFloat64(keyContrast),
			MinWidth:       v.GetInt(keyMinWidth),
		},
		PDF: types.PDFConfig{
			Pdftoppm:    v.GetString(keyPdftoppm),
			DPI:         v.GetInt(keyDPI),
			Workers:     v.GetInt(keyWorkers),
			PageTimeout: v.GetDuration(keyPageTimeout),
			MaxPages:    v.GetInt(keyMaxPages),
		},
		Validation: types.ValidationConfig{
			HighAmountThreshold: v.GetFloat64(keyHighAmount),
			ReviewThreshold:     v.GetFloat64(keyReviewThreshold),
		},
		Store: types.StoreConfig{
			DBPath: v.GetString(keyDBPath),
		},
		Publish: types.PublishConfig{
			URL:        s.Or(secrets.KeyAMQPURL, v.GetString(keyPublishURL)),
			Exchange:   v.GetString(keyPublishExchange),
			RoutingKey: v.GetString(keyPublishRoutingKey),
		},
	}
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = types.DefaultPipelineConfig().Store.DBPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadConfig is pipelineConfig over the global viper and loaded secrets.
func loadConfig() (types.PipelineConfig, error) {
	return pipelineConfig(viper.GetViper(), loadedSecrets)
}

const redacted = "<redacted>"

// redact hides credentials before printing cfg.
func redact(cfg types.PipelineConfig) types.PipelineConfig {
	if cfg.OCR.Multilingual.APIKey != "" {
		cfg.OCR.Multilingual.APIKey = redacted
	}
	if cfg.Publish.URL != "" {
		cfg.Publish.URL = redacted
	}
	return cfg
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration billscan would run with after merging
defaults, the config file, environment variables and flags. Credentials are
redacted. The output is a valid billscan.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(redact(cfg)); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
