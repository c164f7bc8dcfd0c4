// Package candle
package candle

import (
	"errors"
	"time"
)

// Candle is a single daily OHLCV bar for one symbol.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
}

// Range returns the high-minus-low size of the candle.
func (c *Candle) Range() float64 {
	return c.High - c.Low
}

// Validate checks if a candle has valid data
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open price must be between high and low")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close price must be between high and low")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	if c.Symbol == "" {
		return errors.New("candle symbol cannot be empty")
	}
	return nil
}

// AverageRange returns the mean high-minus-low size over the given candles.
func AverageRange(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for i := range candles {
		sum += candles[i].Range()
	}
	return sum / float64(len(candles))
}
