// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes extraction results as JSON, YAML, CSV and a
// human-readable console report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/billscan/pkg/types"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Vendor", "Date", "Total Amount", "Currency", "Category", "Description", "Amount"}

// DefaultPaths returns the JSON and CSV paths used when the caller names
// none: the input path without its extension, suffixed "_extracted".
func DefaultPaths(input string) (jsonPath, csvPath string) {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_extracted.json", base + "_extracted.csv"
}

// JSON writes res as indented UTF-8 JSON. Non-ASCII text is written as is.
func JSON(w io.Writer, res *types.ExtractionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// YAML writes res as a YAML document.
func YAML(w io.Writer, res *types.ExtractionResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// CSV writes one row per line item, repeating the receipt-level fields on
// every row. A result without items produces only the header.
func CSV(w io.Writer, res *types.ExtractionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	total := ""
	if res.TotalAmount != nil {
		total = res.TotalAmount.StringFixed(2)
	}
	for _, item := range res.LineItems {
		row := []string{
			res.VendorOr(""),
			res.DateOr(""),
			total,
			res.Currency,
			item.Category,
			item.Description,
			item.Amount.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and writes res to it with encode.
func WriteFile(path string, res *types.ExtractionResult, encode func(io.Writer, *types.ExtractionResult) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encode(f, res); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Report prints a short summary of res for the terminal.
func Report(w io.Writer, res *types.ExtractionResult) {
	total := "-"
	if res.TotalAmount != nil {
		total = res.Currency + " " + res.TotalAmount.StringFixed(2)
	}

	fmt.Fprintln(w, "=== Extraction result ===")
	fmt.Fprintf(w, "File:          %s\n", res.SourceFile)
	fmt.Fprintf(w, "OCR engine:    %s\n", res.OCREngine)
	fmt.Fprintf(w, "Vendor:        %s\n", res.VendorOr("Unknown"))
	fmt.Fprintf(w, "Date:          %s\n", res.DateOr("Unknown"))
	fmt.Fprintf(w, "Total:         %s\n", total)
	fmt.Fprintf(w, "Confidence:    %.2f\n", res.Summary.ConfidenceScore)
	fmt.Fprintf(w, "Quality:       %.2f\n", res.Validation.QualityScore)
	fmt.Fprintf(w, "Needs review:  %t\n", res.Validation.NeedsReview)

	if len(res.Validation.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings: %s\n", strings.Join(res.Validation.Warnings, ", "))
	}
	if len(res.Validation.Errors) > 0 {
		fmt.Fprintf(w, "Errors: %s\n", strings.Join(res.Validation.Errors, ", "))
	}
	if len(res.Validation.Suggestions) > 0 {
		fmt.Fprintf(w, "Suggestions: %s\n", strings.Join(res.Validation.Suggestions, ", "))
	}

	fmt.Fprintf(w, "\nLine items (%d):\n", len(res.LineItems))
	for _, item := range res.LineItems {
		fmt.Fprintf(w, "  - %d x %s: %s %s (%s)\n",
			item.Quantity, item.Description, res.Currency, item.Amount.StringFixed(2), item.Category)
	}
}
