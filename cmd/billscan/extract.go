// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/billscan/internal/export"
	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/internal/pipeline"
	"github.com/pdiddy/billscan/internal/publish"
	"github.com/pdiddy/billscan/internal/store"
	"github.com/pdiddy/billscan/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file> [files...]",
	Short: "Extract expense data from receipt images and PDFs",
	Long: `Extract runs each file through the OCR engines available on this host,
keeps the most receipt-like transcription, and extracts vendor, date, total,
currency and categorized line items.

With a single file the result is printed as a report. Unless --output-json or
--output-csv is given, results are written next to each input as
<name>_extracted.json and <name>_extracted.csv. Use --store to keep results in
the review database and --publish to announce them on the AMQP exchange.

Exits non-zero if any file could not be processed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("output-json", "", "JSON output path (single file only)")
	extractCmd.Flags().String("output-csv", "", "CSV output path (single file only)")
	extractCmd.Flags().String("ocr-engine-path", "", "path to the tesseract executable (default: linked library, else tesseract on PATH)")
	extractCmd.Flags().Int("workers", 0, "PDF pages processed concurrently (default 1)")
	extractCmd.Flags().Bool("store", false, "save results to the review database")
	extractCmd.Flags().Bool("publish", false, "publish results to the AMQP exchange")
	extractCmd.Flags().Bool("quiet", false, "do not print the result report")
	viper.BindPFlag(keyOCREnginePath, extractCmd.Flags().Lookup("ocr-engine-path"))
	viper.BindPFlag(keyWorkers, extractCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	jsonPath, _ := cmd.Flags().GetString("output-json")
	csvPath, _ := cmd.Flags().GetString("output-csv")
	if len(args) > 1 && (jsonPath != "" || csvPath != "") {
		return errors.New("--output-json and --output-csv take a single input file; batch runs write <name>_extracted.* next to each input")
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	doStore, _ := cmd.Flags().GetBool("store")
	doPublish, _ := cmd.Flags().GetBool("publish")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	registry := pipeline.NewRegistry(ctx, cfg, pipeline.EngineDeps{APIKey: cfg.OCR.Multilingual.APIKey}, logger)
	if registry.Len() == 0 {
		return errors.New("no OCR engine available: install tesseract or configure the multilingual engine")
	}
	p := pipeline.New(cfg, registry, pipeline.WithLogger(logger))
	defer p.Close()

	sinks := []pipeline.Sink{writeOutputs(jsonPath, csvPath)}
	if len(args) == 1 && !quiet {
		sinks = append([]pipeline.Sink{func(_ context.Context, res *types.ExtractionResult) error {
			export.Report(os.Stdout, res)
			fmt.Fprintln(os.Stdout)
			return nil
		}}, sinks...)
	}

	if doStore {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		storeLog := logger.WithComponent(log.ComponentStore)
		sinks = append(sinks, func(ctx context.Context, res *types.ExtractionResult) error {
			if err := st.Save(ctx, res); err != nil {
				return err
			}
			storeLog.Info("result saved", "id", res.ID, log.FieldFile, res.SourceFile)
			return nil
		})
	}

	if doPublish {
		pub, err := publish.Dial(cfg.Publish.URL, cfg.Publish, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub.Publish)
	}

	result := p.ExtractBatch(ctx, args, os.Stdout, chain(sinks...))
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed extraction", result.Failed)
	}
	return nil
}

// writeOutputs returns a sink writing JSON and CSV exports. With neither
// path set both go next to the input file.
func writeOutputs(jsonPath, csvPath string) pipeline.Sink {
	return func(_ context.Context, res *types.ExtractionResult) error {
		j, c := jsonPath, csvPath
		if j == "" && c == "" {
			j, c = export.DefaultPaths(res.SourceFile)
		}
		if j != "" {
			if err := export.WriteFile(j, res, export.JSON); err != nil {
				return err
			}
			logger.Info("wrote JSON", "path", j)
		}
		if c != "" {
			if err := export.WriteFile(c, res, export.CSV); err != nil {
				return err
			}
			logger.Info("wrote CSV", "path", c)
		}
		return nil
	}
}

// chain runs sinks in order, stopping at the first error.
func chain(sinks ...pipeline.Sink) pipeline.Sink {
	return func(ctx context.Context, res *types.ExtractionResult) error {
		for _, s := range sinks {
			if err := s(ctx, res); err != nil {
				return err
			}
		}
		return nil
	}
}
