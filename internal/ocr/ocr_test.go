// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/pkg/types"
)

// fakeBackend returns a fixed text or error, optionally after a delay.
type fakeBackend struct {
	name   string
	text   string
	err    error
	delay  time.Duration
	calls  int
	closed bool
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Recognize(ctx context.Context, _ string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

const receipt = "WALMART\n12/25/2024\n1 Milk $3.99\nTOTAL: $34.23"

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"blank", "  \n\t", 0},
		{"empty", "", 0},
		{"currency only", "$", 0.05 + 0.1*0.01},
		{"noise", "~~ ;; ..", 0.1 * 0.08},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.text), 1e-9)
		})
	}
}

func TestScoreFullReceipt(t *testing.T) {
	s := Score(receipt + "\nThank you for shopping with us, please come again soon!!")
	assert.InDelta(t, 1.0, s, 1e-9)
}

func TestScoreNepaliReceipt(t *testing.T) {
	s := Score("भाटभटेनी सुपरमार्केट\n2 चामल रू 240\nकुल रू 1,240")
	assert.Greater(t, s, 0.6)
}

func TestScoreMonotonicInDate(t *testing.T) {
	bases := []string{
		"",
		"x",
		"WALMART",
		"1 Milk $3.99",
		"TOTAL: रू 500",
		"lower case text without receipt signals at all, fairly long line of words here",
	}
	for _, base := range bases {
		before := Score(base)
		after := Score(base + "\n2024-03-01")
		assert.GreaterOrEqual(t, after, before, base)
		assert.LessOrEqual(t, after, 1.0)
	}
}

func TestSelect(t *testing.T) {
	_, ok := Select(nil)
	assert.False(t, ok)

	attempts := []types.ExtractionAttempt{
		{Engine: EngineTesseract, Confidence: 0.5},
		{Engine: EngineTesseractEnhanced, Confidence: 0.8},
		{Engine: EngineMultilingual, Confidence: 0.8},
	}
	best, ok := Select(attempts)
	require.True(t, ok)
	assert.Equal(t, EngineTesseractEnhanced, best.Engine)

	tied := []types.ExtractionAttempt{
		{Engine: EngineTesseract, Confidence: 0.6},
		{Engine: EngineMultilingual, Confidence: 0.6},
	}
	best, _ = Select(tied)
	assert.Equal(t, EngineTesseract, best.Engine)
}

func TestRegistry(t *testing.T) {
	a := &fakeBackend{name: EngineTesseract}
	b := &fakeBackend{name: EngineMultilingual}
	reg := NewRegistry(a, nil, b)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{EngineTesseract, EngineMultilingual}, reg.Names())
	require.NoError(t, reg.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestRunnerIsolatesFailures(t *testing.T) {
	primary := &fakeBackend{name: EngineTesseract, err: errors.New("missing language pack")}
	enhanced := &fakeBackend{name: EngineTesseractEnhanced, text: "   "}
	multi := &fakeBackend{name: EngineMultilingual, text: receipt}
	r := NewRunner(NewRegistry(primary, enhanced, multi), time.Second, log.Discard())

	attempts, err := r.Run(context.Background(), "receipt.png")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, EngineTesseractEnhanced, attempts[0].Engine)
	assert.Zero(t, attempts[0].Confidence)
	assert.Equal(t, EngineMultilingual, attempts[1].Engine)
	assert.Equal(t, Score(receipt), attempts[1].Confidence)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, enhanced.calls)
}

func TestRunnerAllFail(t *testing.T) {
	r := NewRunner(NewRegistry(
		&fakeBackend{name: EngineTesseract, err: errors.New("decode error")},
		&fakeBackend{name: EngineMultilingual, err: errors.New("no runtime")},
	), 0, nil)

	_, err := r.Run(context.Background(), "receipt.png")
	require.ErrorIs(t, err, types.ErrOCRUnavailable)

	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, EngineTesseract, ee.Engine)
	assert.Contains(t, err.Error(), "no runtime")
}

func TestRunnerKeepsBlankOutput(t *testing.T) {
	r := NewRunner(NewRegistry(
		&fakeBackend{name: EngineTesseract, text: ""},
		&fakeBackend{name: EngineTesseractEnhanced, text: "  \n"},
	), 0, nil)

	attempts, err := r.Run(context.Background(), "receipt.png")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	for _, a := range attempts {
		assert.Zero(t, a.Confidence, a.Engine)
	}

	best, ok := Select(attempts)
	require.True(t, ok)
	assert.Equal(t, EngineTesseract, best.Engine)
}

func TestRunnerEmptyRegistry(t *testing.T) {
	_, err := NewRunner(NewRegistry(), 0, nil).Run(context.Background(), "receipt.png")
	assert.ErrorIs(t, err, types.ErrOCRUnavailable)
}

func TestRunnerTimeoutIsEngineFailure(t *testing.T) {
	slow := &fakeBackend{name: EngineTesseract, text: receipt, delay: time.Second}
	fast := &fakeBackend{name: EngineMultilingual, text: "TOTAL: $1.00"}
	r := NewRunner(NewRegistry(slow, fast), 20*time.Millisecond, log.Discard())

	attempts, err := r.Run(context.Background(), "receipt.png")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, EngineMultilingual, attempts[0].Engine)
}

func TestRunnerCancelledContext(t *testing.T) {
	b := &fakeBackend{name: EngineTesseract, text: receipt}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(NewRegistry(b), 0, nil).Run(ctx, "receipt.png")
	assert.ErrorIs(t, err, types.ErrOCRUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, b.calls)
}

func TestRunBestPicksHighestScore(t *testing.T) {
	r := NewRunner(NewRegistry(
		&fakeBackend{name: EngineTesseract, text: "garbled ~~"},
		&fakeBackend{name: EngineTesseractEnhanced, text: receipt},
		&fakeBackend{name: EngineMultilingual, text: "WALMART"},
	), 0, nil)

	best, err := r.RunBest(context.Background(), "receipt.png")
	require.NoError(t, err)
	assert.Equal(t, EngineTesseractEnhanced, best.Engine)
	assert.Equal(t, receipt, best.Text)
}
