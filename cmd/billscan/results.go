// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pdiddy/billscan/internal/categorize"
	"github.com/pdiddy/billscan/internal/export"
	"github.com/pdiddy/billscan/internal/store"
	"github.com/pdiddy/billscan/internal/validate"
	"github.com/pdiddy/billscan/pkg/types"
)

func openStore() (*store.Store, types.PipelineConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	st, err := store.Open(cfg.Store)
	return st, cfg, err
}

// --- list / review ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored extraction results",
	Long: `List shows stored results, newest first, optionally filtered by vendor,
line-item category, receipt month or review status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, false)
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List stored results that need manual review",
	Long: `Review lists stored results flagged for manual review: results with a
missing or invalid total, a quality score below the review threshold, or
too many warnings. Fix them with "billscan correct".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, true)
	},
}

func runList(cmd *cobra.Command, reviewOnly bool) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := store.QueryOptions{ReviewOnly: reviewOnly}
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")
	if !reviewOnly {
		opts.ReviewOnly, _ = cmd.Flags().GetBool("review")
		opts.Vendor, _ = cmd.Flags().GetString("vendor")
		opts.Category, _ = cmd.Flags().GetString("category")
		opts.Month, _ = cmd.Flags().GetString("month")
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := st.List(ctx, opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatResults(os.Stdout, results, jsonOutput)
}

func formatResults(w io.Writer, results []types.ExtractionResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-24s  %-10s  %-16s  %-7s  %s\n",
		"ID", "Vendor", "Date", "Total", "Quality", "Issues")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range results {
		total := "-"
		if r.TotalAmount != nil {
			total = r.Currency + " " + r.TotalAmount.StringFixed(2)
		}
		issues := append(append([]string{}, r.Validation.Errors...), r.Validation.Warnings...)
		fmt.Fprintf(w, "%-36s  %-24s  %-10s  %-16s  %-7.2f  %s\n",
			r.ID, truncate(r.VendorOr("-"), 24), r.DateOr("-"), total,
			r.Validation.QualityScore, strings.Join(issues, "; "))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := signalContext()
		defer cancel()

		res, err := st.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printResult(os.Stdout, res, format)
	},
}

func printResult(w io.Writer, res *types.ExtractionResult, format string) error {
	switch format {
	case "report", "":
		export.Report(w, res)
		return nil
	case "json":
		return export.JSON(w, res)
	case "yaml":
		return export.YAML(w, res)
	case "csv":
		return export.CSV(w, res)
	default:
		return fmt.Errorf("unsupported format %q: use report, json, yaml or csv", format)
	}
}

// --- correct ---

var correctCmd = &cobra.Command{
	Use:   "correct <id>",
	Short: "Correct fields of a stored result and re-validate it",
	Long: `Correct overwrites the given fields of a stored result, recomputes its
validation report, quality score and review flag from the corrected fields,
and saves it. Pass an empty string to clear the vendor or date.

Line item categories are changed with --category N=Category, where N is the
1-based item position shown by "billscan show".`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

// correction holds the fields a user asked to change. Nil means unchanged.
type correction struct {
	vendor     *string
	date       *string
	total      *decimal.Decimal
	currency   *string
	categories map[int]string
}

func addCorrectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("vendor", "", "vendor name")
	cmd.Flags().String("date", "", "receipt date (YYYY-MM-DD)")
	cmd.Flags().String("total", "", "total amount")
	cmd.Flags().String("currency", "", "ISO currency code")
	cmd.Flags().StringToString("category", nil, "set item category, e.g. --category 2=Groceries")
}

func correctionFromFlags(cmd *cobra.Command) (correction, error) {
	var c correction
	flags := cmd.Flags()

	if flags.Changed("vendor") {
		v, _ := flags.GetString("vendor")
		c.vendor = &v
	}
	if flags.Changed("date") {
		d, _ := flags.GetString("date")
		if d != "" {
			if _, err := time.Parse(time.DateOnly, d); err != nil {
				return c, fmt.Errorf("invalid date %q: want a calendar date as YYYY-MM-DD", d)
			}
		}
		c.date = &d
	}
	if flags.Changed("total") {
		t, _ := flags.GetString("total")
		d, err := decimal.NewFromString(t)
		if err != nil {
			return c, fmt.Errorf("invalid total %q: %w", t, err)
		}
		if !d.IsPositive() {
			return c, fmt.Errorf("invalid total %q: must be positive", t)
		}
		c.total = &d
	}
	if flags.Changed("currency") {
		cur, _ := flags.GetString("currency")
		cur = strings.ToUpper(strings.TrimSpace(cur))
		if len(cur) != 3 {
			return c, fmt.Errorf("invalid currency %q: want a 3-letter code", cur)
		}
		c.currency = &cur
	}

	cats, _ := flags.GetStringToString("category")
	for pos, name := range cats {
		var n int
		if _, err := fmt.Sscanf(pos, "%d", &n); err != nil || n < 1 {
			return c, fmt.Errorf("invalid item position %q", pos)
		}
		if !categorize.IsKnown(name) {
			return c, fmt.Errorf("unknown category %q: use one of %s or %s",
				name, strings.Join(categorize.Categories(), ", "), types.Uncategorized)
		}
		if c.categories == nil {
			c.categories = make(map[int]string)
		}
		c.categories[n] = name
	}
	return c, nil
}

// apply writes c into res. It does not re-validate.
func (c correction) apply(res *types.ExtractionResult) error {
	if c.vendor != nil {
		res.Vendor = emptyToNil(*c.vendor)
	}
	if c.date != nil {
		res.Date = emptyToNil(*c.date)
	}
	if c.total != nil {
		res.TotalAmount = c.total
	}
	if c.currency != nil {
		res.Currency = *c.currency
	}
	for n, name := range c.categories {
		if n > len(res.LineItems) {
			return fmt.Errorf("result has %d line items, no item %d", len(res.LineItems), n)
		}
		res.LineItems[n-1].Category = name
	}
	return nil
}

func emptyToNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func runCorrect(cmd *cobra.Command, args []string) error {
	c, err := correctionFromFlags(cmd)
	if err != nil {
		return err
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if err := c.apply(res); err != nil {
		return err
	}
	validate.Revalidate(res, cfg.Validation)

	if err := st.Save(ctx, res); err != nil {
		return err
	}
	export.Report(os.Stdout, res)
	return nil
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := signalContext()
		defer cancel()

		if err := st.Delete(ctx, args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no stored result with ID %s", args[0])
			}
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// --- totals ---

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Sum stored line items per category",
	Long: `Totals sums the line items of all stored results per category and
currency, largest first. Use --month to restrict to receipts dated in one
month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, cancel := signalContext()
		defer cancel()

		totals, err := st.Totals(ctx, month)
		if err != nil {
			return err
		}
		return formatTotals(os.Stdout, totals, jsonOutput)
	},
}

func formatTotals(w io.Writer, totals []store.CategoryTotal, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	}
	if len(totals) == 0 {
		fmt.Fprintln(w, "No line items stored.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-8s  %14s  %s\n", "Category", "Currency", "Total", "Items")
	fmt.Fprintln(w, strings.Repeat("-", 54))
	for _, t := range totals {
		fmt.Fprintf(w, "%-20s  %-8s  %14s  %d\n", t.Category, t.Currency, t.Total.StringFixed(2), t.Items)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{listCmd, reviewCmd} {
		c.Flags().Int("limit", 20, "maximum number of results")
		c.Flags().Bool("json", false, "output results as JSON")
	}
	listCmd.Flags().Bool("review", false, "only results needing review")
	listCmd.Flags().String("vendor", "", "filter by vendor name (substring)")
	listCmd.Flags().String("category", "", "filter by line-item category")
	listCmd.Flags().String("month", "", "filter by receipt month (YYYY-MM)")

	showCmd.Flags().String("format", "report", "output format: report, json, yaml or csv")

	addCorrectionFlags(correctCmd)

	totalsCmd.Flags().String("month", "", "receipt month (YYYY-MM)")
	totalsCmd.Flags().Bool("json", false, "output totals as JSON")

	rootCmd.AddCommand(listCmd, reviewCmd, showCmd, correctCmd, deleteCmd, totalsCmd)
}
