// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pdiddy/billscan/pkg/types"
)

// QueryOptions filters stored results. Zero fields do not filter.
type QueryOptions struct {
	// ReviewOnly keeps results flagged for manual review.
	ReviewOnly bool

	// Vendor matches vendor names containing the string, ignoring case.
	Vendor string

	// Category keeps results with at least one item in the category.
	Category string

	// Month keeps results dated in the given month ("2006-01").
	Month string

	// MaxResults limits result count. Zero uses 20.
	MaxResults int
}

// List returns stored results matching opts, newest extraction first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ExtractionResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(selectReceipts + ` WHERE 1=1`)

	if opts.ReviewOnly {
		qb.WriteString(` AND needs_review = 1`)
	}
	if opts.Vendor != "" {
		qb.WriteString(` AND vendor LIKE ?`)
		args = append(args, "%"+opts.Vendor+"%")
	}
	if opts.Category != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM line_items li WHERE li.receipt_id = receipts.id AND li.category = ?)`)
		args = append(args, opts.Category)
	}
	if opts.Month != "" {
		prefix, err := monthPrefix(opts.Month)
		if err != nil {
			return nil, err
		}
		qb.WriteString(` AND date LIKE ?`)
		args = append(args, prefix+"%")
	}

	qb.WriteString(` ORDER BY extracted_at DESC, id LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying receipts: %w", err)
	}
	return s.scanReceipts(ctx, rows)
}

// CategoryTotal is the spend in one category and currency.
type CategoryTotal struct {
	Category string          `json:"category" yaml:"category"`
	Currency string          `json:"currency" yaml:"currency"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
	Items    int             `json:"items" yaml:"items"`
}

// Totals sums line-item amounts per category and currency, largest total
// first. A non-empty month ("2006-01") restricts the sum to receipts
// dated in that month. Amounts are summed exactly.
func (s *Store) Totals(ctx context.Context, month string) ([]CategoryTotal, error) {
	query := `SELECT li.category, r.currency, li.amount
		FROM line_items li JOIN receipts r ON r.id = li.receipt_id`
	var args []any
	if month != "" {
		prefix, err := monthPrefix(month)
		if err != nil {
			return nil, err
		}
		query += ` WHERE r.date LIKE ?`
		args = append(args, prefix+"%")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying totals: %w", err)
	}
	defer rows.Close()

	type key struct{ category, currency string }
	sums := make(map[key]*CategoryTotal)
	for rows.Next() {
		var category, currency, amount string
		if err := rows.Scan(&category, &currency, &amount); err != nil {
			return nil, fmt.Errorf("scanning total: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
		}
		k := key{category, currency}
		t, ok := sums[k]
		if !ok {
			t = &CategoryTotal{Category: category, Currency: currency}
			sums[k] = t
		}
		t.Total = t.Total.Add(d)
		t.Items++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading totals: %w", err)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, t := range sums {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

func monthPrefix(month string) (string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", month)
	}
	return t.Format("2006-01") + "-", nil
}
