// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/billscan/pkg/types"
)

// Sink receives each successfully extracted result, e.g. to write export
// files or persist it.
type Sink func(ctx context.Context, res *types.ExtractionResult) error

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted   int
	NeedsReview int
	Failed      int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Failed
}

// HasFailures reports whether any file failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractBatch extracts each path in turn, hands every result to sink
// (when non-nil), prints per-file status to w and returns a summary.
// Files are independent: one failure does not stop the batch.
func (p *Pipeline) ExtractBatch(ctx context.Context, paths []string, w io.Writer, sink Sink) BatchResult {
	var result BatchResult
	for _, path := range paths {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, ctx.Err())
			result.Failed++
			continue
		}

		res, err := p.ExtractFile(ctx, path)
		if err == nil && sink != nil {
			err = sink(ctx, res)
		}
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
			result.Failed++
			continue
		}

		result.Extracted++
		status := "extracted:"
		if res.Validation.NeedsReview {
			status = "review:   "
			result.NeedsReview++
		}
		fmt.Fprintf(w, "%s %s (quality %.2f, confidence %.2f)\n",
			status, path, res.Validation.QualityScore, res.Summary.ConfidenceScore)
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted (%d need review), %d failed (total: %d)\n",
		result.Extracted, result.NeedsReview, result.Failed, result.Total())
	return result
}
