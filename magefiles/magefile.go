// Package main contains Mage build targets for billscan developer tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories billscan expects.
var projectDirs = []string{
	"data",
	"samples",
	"out",
	".secrets",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "billscan"
	cmdPkg  = "./cmd/billscan"
)

// Build compiles the CLI binary into bin/, stamping the version from
// BILLSCAN_VERSION (default "dev"). BILLSCAN_TAGS passes build tags;
// "gosseract" links libtesseract.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("BILLSCAN_VERSION")
	if version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	args := []string{"build", "-ldflags", "-X main.version=" + version, "-o", out}
	if tags := os.Getenv("BILLSCAN_TAGS"); tags != "" {
		args = append(args, "-tags", tags)
	}
	if err := sh.RunV("go", append(args, cmdPkg)...); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Samples extracts every receipt in samples/ into out/ and stores the
// results in the review database.
func Samples() error {
	mg.Deps(Build)

	entries, err := os.ReadDir("samples")
	if err != nil {
		return fmt.Errorf("reading samples: %w", err)
	}
	args := []string{"extract", "--store", "--quiet"}
	for _, e := range entries {
		if !e.IsDir() {
			args = append(args, filepath.Join("samples", e.Name()))
		}
	}
	if len(args) == 3 {
		fmt.Println("No samples found.")
		return nil
	}
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Review lists stored results that need manual review.
func Review() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "review")
}

// Stats prints non-blank Go lines per top-level source directory, split
// into production and test code, and the word count of the root Markdown
// documents.
func Stats() error {
	var prodTotal, testTotal int
	for _, dir := range sourceDirs {
		c, err := countGoLines(dir)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %6d prod %6d test\n", dir, c.prod, c.test)
		prodTotal += c.prod
		testTotal += c.test
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %6d prod %6d test\n", "total", prodTotal, testTotal)
	fmt.Printf("Words (root *.md): %d\n", docWords)
	return nil
}

// sourceDirs are the directories holding billscan's Go code.
var sourceDirs = []string{"cmd", "internal", "pkg", "magefiles"}

type lineCount struct {
	prod, test int
}

// countGoLines counts non-blank lines of the .go files under root. A
// missing root counts as empty.
func countGoLines(root string) (lineCount, error) {
	var c lineCount
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
	return c, err
}

// countDocWords counts whitespace-separated words in the *.md files
// directly inside dir.
func countDocWords(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
