// Package strategy
package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarketData serves canned prices per symbol and can fail individual
// lookups.
type fakeMarketData struct {
	prevClose map[string]float64
	open      map[string]float64
	avgRange  map[string]float64

	prevCloseErr map[string]error
	openErr      map[string]error
	avgRangeErr  map[string]error
}

func (f *fakeMarketData) PreviousClose(_ context.Context, symbol string) (float64, error) {
	if err, ok := f.prevCloseErr[symbol]; ok {
		return 0, err
	}
	v, ok := f.prevClose[symbol]
	if !ok {
		return 0, errors.New("no bar data")
	}
	return v, nil
}

func (f *fakeMarketData) CurrentOpen(_ context.Context, symbol string) (float64, error) {
	if err, ok := f.openErr[symbol]; ok {
		return 0, err
	}
	v, ok := f.open[symbol]
	if !ok {
		return 0, errors.New("no bar data")
	}
	return v, nil
}

func (f *fakeMarketData) AverageCandleRange(_ context.Context, symbol string, _ int) (float64, error) {
	if err, ok := f.avgRangeErr[symbol]; ok {
		return 0, err
	}
	v, ok := f.avgRange[symbol]
	if !ok {
		return 0, errors.New("no bar data")
	}
	return v, nil
}

func TestGapDown_Name(t *testing.T) {
	g := NewGapDown(0.05, 5)
	assert.Equal(t, "Gap-Down", g.Name())
}

func TestGapDown_Description(t *testing.T) {
	g := NewGapDown(0.05, 5)
	assert.Contains(t, g.Description(), "5.0% cash allocation")
	assert.Contains(t, g.Description(), "5-day average candle range")
}

func TestGapDown_Evaluate_Trade(t *testing.T) {
	data := &fakeMarketData{
		prevClose: map[string]float64{"AAPL": 272.19},
		open:      map[string]float64{"AAPL": 272.14},
		avgRange:  map[string]float64{"AAPL": 5.38},
	}
	g := NewGapDown(0.05, 5)

	sig := g.Evaluate(context.Background(), "AAPL", 200_000, data)

	require.True(t, sig.ShouldTrade)
	assert.Equal(t, "AAPL", sig.Symbol)
	assert.InDelta(t, 10_000.00, sig.Notional, 1e-9)
	assert.InDelta(t, 277.52, sig.TakeProfitPrice, 1e-9)
	assert.InDelta(t, 266.76, sig.StopLossPrice, 1e-9)
	assert.Equal(t, "Gap-Down", sig.StrategyName)
	assert.Contains(t, sig.Reason, "gap down")
	assert.False(t, sig.Time.IsZero())
}

func TestGapDown_Evaluate_Skips(t *testing.T) {
	tests := []struct {
		name       string
		data       *fakeMarketData
		cash       float64
		wantReason string
	}{
		{
			name: "gap up",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 483.98},
				open:      map[string]float64{"MSFT": 487.36},
			},
			cash:       200_000,
			wantReason: "no gap down (open=$487.36 >= prev_close=$483.98)",
		},
		{
			name: "zero gap is not a gap down",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 480.00},
				open:      map[string]float64{"MSFT": 480.00},
			},
			cash:       200_000,
			wantReason: "no gap down",
		},
		{
			name:       "previous close unavailable",
			data:       &fakeMarketData{open: map[string]float64{"MSFT": 480}},
			cash:       200_000,
			wantReason: "previous close unavailable",
		},
		{
			name: "current open unavailable",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 480},
				openErr:   map[string]error{"MSFT": errors.New("api timeout")},
			},
			cash:       200_000,
			wantReason: "current open unavailable: api timeout",
		},
		{
			name: "invalid prices",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": -1},
				open:      map[string]float64{"MSFT": 480},
			},
			cash:       200_000,
			wantReason: "invalid prices",
		},
		{
			name: "average candle range unavailable",
			data: &fakeMarketData{
				prevClose:   map[string]float64{"MSFT": 480},
				open:        map[string]float64{"MSFT": 470},
				avgRangeErr: map[string]error{"MSFT": errors.New("insufficient data")},
			},
			cash:       200_000,
			wantReason: "cannot calculate average candle range",
		},
		{
			name: "non-positive average candle range",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 480},
				open:      map[string]float64{"MSFT": 470},
				avgRange:  map[string]float64{"MSFT": 0},
			},
			cash:       200_000,
			wantReason: "non-positive average candle range",
		},
		{
			name: "stop loss clamp",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 3.00},
				open:      map[string]float64{"MSFT": 2.50},
				avgRange:  map[string]float64{"MSFT": 2.50},
			},
			cash:       200_000,
			wantReason: "degenerate risk parameters",
		},
		{
			name: "insufficient cash",
			data: &fakeMarketData{
				prevClose: map[string]float64{"MSFT": 480},
				open:      map[string]float64{"MSFT": 470},
				avgRange:  map[string]float64{"MSFT": 5},
			},
			cash:       0,
			wantReason: "insufficient cash",
		},
	}

	g := NewGapDown(0.05, 5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := g.Evaluate(context.Background(), "MSFT", tt.cash, tt.data)
			require.False(t, sig.ShouldTrade)
			assert.Contains(t, sig.Reason, tt.wantReason)
			assert.Zero(t, sig.Allocation())
		})
	}
}

// Insufficient cash wins over everything else, including missing data.
func TestGapDown_Evaluate_ZeroCashSkipsBeforeDataFetch(t *testing.T) {
	g := NewGapDown(0.05, 5)
	sig := g.Evaluate(context.Background(), "GOOGL", 0, &fakeMarketData{})
	require.False(t, sig.ShouldTrade)
	assert.Contains(t, sig.Reason, "insufficient cash")
}

func TestSignal_Allocation(t *testing.T) {
	trade := Signal{Symbol: "AAPL", ShouldTrade: true, Notional: 500}
	assert.InDelta(t, 500.0, trade.Allocation(), 1e-9)

	// A stray notional on a skip signal must read as zero.
	skip := Signal{Symbol: "AAPL", ShouldTrade: false, Notional: 500}
	assert.Zero(t, skip.Allocation())
}
