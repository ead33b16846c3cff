// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/billscan/internal/container"
	"github.com/pdiddy/billscan/internal/httputil"
	"github.com/pdiddy/billscan/pkg/types"
)

// ContainerOCR runs a deep-learning OCR image through a container runtime.
// The image reads the picture on stdin and prints one recognized line per
// output line.
type ContainerOCR struct {
	runtime container.Runtime
	image   string
	langs   []string
}

// NewContainerOCR returns the multilingual backend backed by rt.
func NewContainerOCR(rt container.Runtime, image string, langs []string) *ContainerOCR {
	return &ContainerOCR{runtime: rt, image: image, langs: langs}
}

func (c *ContainerOCR) Name() string { return EngineMultilingual }

func (c *ContainerOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	var args []string
	if len(c.langs) > 0 {
		args = []string{"--lang", strings.Join(c.langs, ",")}
	}
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, args, f, &out); err != nil {
		return "", err
	}
	return joinLines(strings.Split(out.String(), "\n")), nil
}

// HTTPOCR posts the image to a remote OCR service.
//
// The service receives the raw image bytes with the languages in the
// "languages" query parameter, and answers with JSON of the form
// {"text": "..."} or {"lines": [{"text": "..."}]}.
type HTTPOCR struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	langs      []string
	maxRetries int
}

// NewHTTPOCR returns the multilingual backend that calls cfg.Endpoint.
func NewHTTPOCR(cfg types.MultilingualConfig, apiKey string) *HTTPOCR {
	return &HTTPOCR{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     apiKey,
		userAgent:  cfg.UserAgent,
		langs:      cfg.Languages,
		maxRetries: cfg.MaxRetries,
	}
}

func (h *HTTPOCR) Name() string { return EngineMultilingual }

type ocrResponse struct {
	Text  string `json:"text"`
	Lines []struct {
		Text string `json:"text"`
	} `json:"lines"`
}

func (h *HTTPOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	u, err := url.Parse(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	if len(h.langs) > 0 {
		q := u.Query()
		q.Set("languages", strings.Join(h.langs, ","))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType(imagePath))
	req.Header.Set("Accept", "application/json")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, h.client, req, h.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("OCR service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var r ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decoding OCR response: %w", err)
	}
	if r.Text != "" {
		return r.Text, nil
	}
	lines := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = l.Text
	}
	return joinLines(lines), nil
}

// joinLines drops blank lines and joins the rest with newlines.
func joinLines(lines []string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func contentType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return "application/octet-stream"
}
