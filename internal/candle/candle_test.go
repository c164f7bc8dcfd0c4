// Package candle
package candle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandle() Candle {
	return Candle{
		Timestamp: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Open:      100,
		High:      105,
		Low:       98,
		Close:     103,
		Volume:    1_000_000,
		Symbol:    "AAPL",
	}
}

func TestCandle_Range(t *testing.T) {
	c := validCandle()
	assert.InDelta(t, 7.0, c.Range(), 1e-9)
}

func TestCandle_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Candle)
		wantErr string
	}{
		{"valid", func(c *Candle) {}, ""},
		{"zero timestamp", func(c *Candle) { c.Timestamp = time.Time{} }, "timestamp is zero"},
		{"non-positive open", func(c *Candle) { c.Open = 0 }, "prices must be positive"},
		{"negative close", func(c *Candle) { c.Close = -1 }, "prices must be positive"},
		{"high below low", func(c *Candle) { c.High = 90 }, "high cannot be less than low"},
		{"open above high", func(c *Candle) { c.Open = 110 }, "open price must be between"},
		{"close below low", func(c *Candle) { c.Close = 90 }, "close price must be between"},
		{"negative volume", func(c *Candle) { c.Volume = -1 }, "volume cannot be negative"},
		{"empty symbol", func(c *Candle) { c.Symbol = "" }, "symbol cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandle()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAverageRange(t *testing.T) {
	candles := []Candle{
		{High: 105, Low: 100},
		{High: 110, Low: 102},
		{High: 101, Low: 97},
	}
	// (5 + 8 + 4) / 3
	assert.InDelta(t, 17.0/3.0, AverageRange(candles), 1e-9)
}

func TestAverageRange_Empty(t *testing.T) {
	assert.Zero(t, AverageRange(nil))
}
