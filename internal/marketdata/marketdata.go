// Package marketdata
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	alpacadata "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"

	"github.com/quantworks/day-trader/internal/candle"
)

// ErrNoData is returned when the provider has no bars for a symbol.
var ErrNoData = errors.New("no bar data")

// ErrInsufficientData is returned when fewer bars came back than the
// computation needs.
var ErrInsufficientData = errors.New("insufficient bar data")

// BarSource is the slice of the Alpaca market data client the fetcher
// uses.
type BarSource interface {
	GetBars(symbol string, req alpacadata.GetBarsRequest) ([]alpacadata.Bar, error)
}

// Fetcher retrieves daily bars from Alpaca and derives the per-symbol
// figures strategies consume: previous close, current open, current price,
// and average candle range.
type Fetcher struct {
	src  BarSource
	feed alpacadata.Feed
	log  zerolog.Logger
	now  func() time.Time
}

// NewFetcher builds a fetcher over the given bar source. feed may be empty,
// in which case the free IEX feed is used to avoid SIP subscription
// restrictions.
func NewFetcher(src BarSource, feed string, log zerolog.Logger) *Fetcher {
	f := alpacadata.Feed(feed)
	if f == "" {
		f = alpacadata.IEX
	}
	return &Fetcher{src: src, feed: f, log: log, now: time.Now}
}

// NewAlpacaFetcher builds a fetcher backed by a fresh Alpaca market data
// client.
func NewAlpacaFetcher(apiKey, apiSecret, feed string, log zerolog.Logger) *Fetcher {
	client := alpacadata.NewClient(alpacadata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	return NewFetcher(client, feed, log)
}

// HistoricalBars fetches up to `days` most recent daily bars for a symbol.
// The request window is twice the requested span to cover weekends and
// holidays.
func (f *Fetcher) HistoricalBars(ctx context.Context, symbol string, days int) ([]candle.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("days must be at least 1, got %d", days)
	}

	end := f.now().UTC()
	start := end.AddDate(0, 0, -days*2)

	bars, err := f.src.GetBars(symbol, alpacadata.GetBarsRequest{
		TimeFrame: alpacadata.OneDay,
		Start:     start,
		End:       end,
		Feed:      f.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	candles := make([]candle.Candle, 0, len(bars))
	for _, bar := range bars {
		candles = append(candles, candle.Candle{
			Timestamp: bar.Timestamp,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    float64(bar.Volume),
			Symbol:    symbol,
		})
	}
	if len(candles) > days {
		candles = candles[len(candles)-days:]
	}

	f.log.Debug().Str("symbol", symbol).Int("bars", len(candles)).Int("requested_days", days).Msg("fetched bars")

	return candles, nil
}

// PreviousClose returns the close of the bar before the most recent one.
func (f *Fetcher) PreviousClose(ctx context.Context, symbol string) (float64, error) {
	candles, err := f.HistoricalBars(ctx, symbol, 2)
	if err != nil {
		return 0, err
	}
	if len(candles) < 2 {
		return 0, fmt.Errorf("%w for previous close of %s: got %d bars", ErrInsufficientData, symbol, len(candles))
	}
	return candles[len(candles)-2].Close, nil
}

// CurrentOpen returns the open of the most recent bar.
func (f *Fetcher) CurrentOpen(ctx context.Context, symbol string) (float64, error) {
	candles, err := f.HistoricalBars(ctx, symbol, 2)
	if err != nil {
		return 0, err
	}
	return candles[len(candles)-1].Open, nil
}

// CurrentPrice returns the close of the most recent bar.
func (f *Fetcher) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := f.HistoricalBars(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	return candles[len(candles)-1].Close, nil
}

// AverageCandleRange returns the mean high-minus-low size over the last
// lookbackDays daily bars. Fewer bars than requested is an error: a thin
// average would understate the exit brackets.
func (f *Fetcher) AverageCandleRange(ctx context.Context, symbol string, lookbackDays int) (float64, error) {
	candles, err := f.HistoricalBars(ctx, symbol, lookbackDays)
	if err != nil {
		return 0, err
	}
	if len(candles) < lookbackDays {
		return 0, fmt.Errorf("%w for %s: got %d bars, needed %d", ErrInsufficientData, symbol, len(candles), lookbackDays)
	}
	return candle.AverageRange(candles), nil
}

// GapInfo returns previous close, current open, and the gap between them
// as a percentage of the previous close.
func (f *Fetcher) GapInfo(ctx context.Context, symbol string) (prevClose, currentOpen, gapPercent float64, err error) {
	candles, err := f.HistoricalBars(ctx, symbol, 4)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(candles) < 2 {
		return 0, 0, 0, fmt.Errorf("%w for gap info of %s: got %d bars", ErrInsufficientData, symbol, len(candles))
	}
	prevClose = candles[len(candles)-2].Close
	currentOpen = candles[len(candles)-1].Open
	gapPercent = (currentOpen - prevClose) / prevClose * 100
	return prevClose, currentOpen, gapPercent, nil
}
