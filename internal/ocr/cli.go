// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/billscan/internal/container"
)

// TesseractCLI runs an external tesseract binary and reads its text from
// stdout. It is used when --ocr-engine-path names a binary or when the
// linked library driver is unavailable.
type TesseractCLI struct {
	name  string
	path  string
	langs []string
	exec  container.Executor
}

// NewTesseractCLI returns a backend named name that runs the binary at
// path with the given languages. A nil exec uses the host.
func NewTesseractCLI(name, path string, langs []string, exec container.Executor) *TesseractCLI {
	if exec == nil {
		exec = container.OSExecutor{}
	}
	return &TesseractCLI{name: name, path: path, langs: langs, exec: exec}
}

func (t *TesseractCLI) Name() string { return t.name }

// Available reports whether the binary can be found.
func (t *TesseractCLI) Available() bool {
	_, err := t.exec.LookPath(t.path)
	return err == nil
}

// Recognize runs `tesseract <image> stdout -l <langs> --oem 3 --psm 6`.
func (t *TesseractCLI) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout"}
	if len(t.langs) > 0 {
		args = append(args, "-l", strings.Join(t.langs, "+"))
	}
	args = append(args, "--oem", "3", "--psm", "6")

	var out bytes.Buffer
	if err := t.exec.RunPiped(ctx, t.path, args, nil, &out); err != nil {
		return "", fmt.Errorf("running %s: %w", t.path, err)
	}
	return out.String(), nil
}
