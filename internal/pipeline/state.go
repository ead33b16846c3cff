// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/billscan/pkg/types"
)

// State is a step in the life of one submitted file.
type State string

// States in the order a successful extraction passes through them. Failed
// is terminal and reachable from any state.
const (
	StateReceived              State = "received"
	StateDispatched            State = "dispatched"
	StateOCRAttempted          State = "ocr_attempted"
	StateBestCandidateSelected State = "best_candidate_selected"
	StateFieldsExtracted       State = "fields_extracted"
	StateLineItemsCategorized  State = "line_items_categorized"
	StateValidated             State = "validated"
	StateCompleted             State = "completed"
	StateFailed                State = "failed"
)

// Kind is the dispatch target for an input file.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

var kinds = map[string]Kind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".bmp":  KindImage,
	".tiff": KindImage,
	".tif":  KindImage,
	".pdf":  KindPDF,
}

// Dispatch maps a file name to its Kind by extension, ignoring case.
func Dispatch(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if k, ok := kinds[ext]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, ext)
}

// Supported reports whether path has a supported extension.
func Supported(path string) bool {
	_, err := Dispatch(path)
	return err == nil
}
