// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/billscan/internal/pipeline"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the OCR engines available on this host",
	Long: `Engines probes the host the way extract does and lists the OCR engines
that would run, in priority order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("ocr-engine-path") {
			cfg.OCR.EnginePath, _ = cmd.Flags().GetString("ocr-engine-path")
		}

		ctx, cancel := signalContext()
		defer cancel()

		registry := pipeline.NewRegistry(ctx, cfg, pipeline.EngineDeps{APIKey: cfg.OCR.Multilingual.APIKey}, logger)
		defer registry.Close()

		if registry.Len() == 0 {
			fmt.Println("No OCR engine available.")
			return nil
		}
		for i, name := range registry.Names() {
			fmt.Printf("%d. %s\n", i+1, name)
		}
		return nil
	},
}

func init() {
	enginesCmd.Flags().String("ocr-engine-path", "", "path to the tesseract executable (default: linked library, else tesseract on PATH)")

	rootCmd.AddCommand(enginesCmd)
}
