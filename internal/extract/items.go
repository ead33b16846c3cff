// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/billscan/pkg/types"
)

// maxQuantity bounds a leading count; larger numbers are years, phone
// numbers or codes rather than quantities.
const maxQuantity = 999

var itemMatchers = []matcher[types.LineItem]{
	// 2 Bread रू 80
	itemPattern(`^(\d+)[ \t]+(.+?)[ \t]+`+currencyGlyph+`[ \t]*`+number, true),
	// Bread रू 80
	itemPattern(`^(.+?)[ \t]+`+currencyGlyph+`[ \t]*`+number, false),
	// 2 Bread 80
	itemPattern(`^(\d+)[ \t]+(.+?)[ \t]+`+number, true),
}

func itemPattern(expr string, hasQty bool) matcher[types.LineItem] {
	re := regexp.MustCompile(expr)
	return func(line string) (types.LineItem, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return types.LineItem{}, false
		}
		item := types.LineItem{Quantity: 1}
		desc, amount := m[1], m[2]
		if hasQty {
			qty, err := strconv.Atoi(m[1])
			if err != nil || qty < 1 || qty > maxQuantity {
				return types.LineItem{}, false
			}
			item.Quantity = qty
			desc, amount = m[2], m[3]
		}
		item.Description = strings.TrimSpace(desc)
		if utf8.RuneCountInString(item.Description) < 2 {
			return types.LineItem{}, false
		}
		d, ok := ParseAmount(amount)
		if !ok {
			return types.LineItem{}, false
		}
		item.Amount = d
		return item, true
	}
}

// LineItems scans text line by line. Each line is tried against the item
// patterns in order and contributes at most one item.
func LineItems(text string) []types.LineItem {
	var items []types.LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if item, ok := firstMatch(line, itemMatchers); ok {
			items = append(items, item)
		}
	}
	return items
}
