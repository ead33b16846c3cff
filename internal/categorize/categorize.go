// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categorize maps line-item descriptions to spending categories by
// keyword scoring against a fixed, multilingual taxonomy.
package categorize

import (
	"strings"

	"github.com/pdiddy/billscan/pkg/types"
)

// Categorize returns the category whose keywords occur most often in
// description (case-insensitive substring match). Ties go to the category
// declared first; a description matching nothing is Uncategorized.
func Categorize(description string) string {
	scores := Scores(description)
	best, bestScore := -1, 0
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return types.Uncategorized
	}
	return taxonomy[best].Name
}

// Scores returns the keyword hit count for every category, in taxonomy order.
func Scores(description string) []int {
	lower := strings.ToLower(description)
	scores := make([]int, len(taxonomy))
	for i, c := range taxonomy {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				scores[i]++
			}
		}
	}
	return scores
}

// Categories returns the taxonomy's category names in declaration order.
func Categories() []string {
	names := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		names[i] = c.Name
	}
	return names
}

// IsKnown reports whether name is a taxonomy category or Uncategorized.
func IsKnown(name string) bool {
	if name == types.Uncategorized {
		return true
	}
	for _, c := range taxonomy {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Apply assigns a category to every item in place.
func Apply(items []types.LineItem) {
	for i := range items {
		items[i].Category = Categorize(items[i].Description)
	}
}
