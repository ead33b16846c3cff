// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/billscan/pkg/types"
)

// ReceiptMessage announces a newly extracted receipt. Consumers that need
// the full record load it from the store by ID.
type ReceiptMessage struct {
	ID          string           `json:"id"`
	SourceFile  string           `json:"source_file"`
	Vendor      *string          `json:"vendor"`
	Date        *string          `json:"date"`
	Total       *decimal.Decimal `json:"total_amount"`
	Currency    string           `json:"currency"`
	Items       int              `json:"total_items"`
	Categories  []string         `json:"categories"`
	Quality     float64          `json:"quality_score"`
	Confidence  float64          `json:"confidence_score"`
	NeedsReview bool             `json:"needs_review"`
	ExtractedAt time.Time        `json:"extraction_timestamp"`
}

// NewReceiptMessage builds the message for res.
func NewReceiptMessage(res *types.ExtractionResult) ReceiptMessage {
	return ReceiptMessage{
		ID:          res.ID,
		SourceFile:  res.SourceFile,
		Vendor:      res.Vendor,
		Date:        res.Date,
		Total:       res.TotalAmount,
		Currency:    res.Currency,
		Items:       len(res.LineItems),
		Categories:  res.Categories(),
		Quality:     res.Validation.QualityScore,
		Confidence:  res.Summary.ConfidenceScore,
		NeedsReview: res.Validation.NeedsReview,
		ExtractedAt: res.ExtractedAt,
	}
}

func (m ReceiptMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReceiptMessageFromJSON decodes a message body.
func ReceiptMessageFromJSON(data []byte) (*ReceiptMessage, error) {
	var m ReceiptMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding receipt message: %w", err)
	}
	return &m, nil
}
