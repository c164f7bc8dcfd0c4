// Package marketdata
package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	alpacadata "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBarSource struct {
	bars    map[string][]alpacadata.Bar
	err     error
	lastReq alpacadata.GetBarsRequest
}

func (f *fakeBarSource) GetBars(symbol string, req alpacadata.GetBarsRequest) ([]alpacadata.Bar, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[symbol], nil
}

func dayBar(day int, open, high, low, close float64) alpacadata.Bar {
	return alpacadata.Bar{
		Timestamp: time.Date(2023, 6, day, 0, 0, 0, 0, time.UTC),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    1000,
	}
}

func testFetcher(src BarSource) *Fetcher {
	f := NewFetcher(src, "", zerolog.Nop())
	f.now = func() time.Time { return time.Date(2023, 6, 10, 14, 0, 0, 0, time.UTC) }
	return f
}

func TestFetcher_HistoricalBars(t *testing.T) {
	src := &fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {
			dayBar(5, 100, 105, 98, 103),
			dayBar(6, 103, 108, 101, 107),
			dayBar(7, 107, 109, 104, 105),
		},
	}}
	f := testFetcher(src)

	candles, err := f.HistoricalBars(context.Background(), "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	// Only the most recent bars survive the trim.
	assert.Equal(t, 6, candles[0].Timestamp.Day())
	assert.Equal(t, 7, candles[1].Timestamp.Day())
	assert.Equal(t, "AAPL", candles[0].Symbol)

	// The fetch window is doubled to span weekends, on the IEX feed.
	assert.Equal(t, alpacadata.IEX, src.lastReq.Feed)
	assert.Equal(t, 4, int(src.lastReq.End.Sub(src.lastReq.Start).Hours()/24))
}

func TestFetcher_HistoricalBars_NoData(t *testing.T) {
	f := testFetcher(&fakeBarSource{})
	_, err := f.HistoricalBars(context.Background(), "ZZZZ", 2)
	require.ErrorIs(t, err, ErrNoData)
}

func TestFetcher_HistoricalBars_SourceError(t *testing.T) {
	f := testFetcher(&fakeBarSource{err: errors.New("api timeout")})
	_, err := f.HistoricalBars(context.Background(), "AAPL", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api timeout")
}

func TestFetcher_HistoricalBars_CancelledContext(t *testing.T) {
	f := testFetcher(&fakeBarSource{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.HistoricalBars(ctx, "AAPL", 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_PreviousClose(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {
			dayBar(6, 270, 275, 269, 272.19),
			dayBar(7, 272.14, 274, 268, 270),
		},
	}})

	prevClose, err := f.PreviousClose(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 272.19, prevClose, 1e-9)
}

func TestFetcher_PreviousClose_SingleBar(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {dayBar(7, 272.14, 274, 268, 270)},
	}})

	_, err := f.PreviousClose(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestFetcher_CurrentOpenAndPrice(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {
			dayBar(6, 270, 275, 269, 272.19),
			dayBar(7, 272.14, 274, 268, 270.50),
		},
	}})

	open, err := f.CurrentOpen(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 272.14, open, 1e-9)

	price, err := f.CurrentPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 270.50, price, 1e-9)
}

func TestFetcher_AverageCandleRange(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {
			dayBar(5, 100, 106, 100, 103), // range 6
			dayBar(6, 103, 108, 103, 107), // range 5
			dayBar(7, 107, 111, 104, 105), // range 7
		},
	}})

	avg, err := f.AverageCandleRange(context.Background(), "AAPL", 3)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, avg, 1e-9)
}

func TestFetcher_AverageCandleRange_InsufficientBars(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {dayBar(7, 100, 106, 100, 103)},
	}})

	_, err := f.AverageCandleRange(context.Background(), "AAPL", 5)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestFetcher_GapInfo(t *testing.T) {
	f := testFetcher(&fakeBarSource{bars: map[string][]alpacadata.Bar{
		"AAPL": {
			dayBar(5, 268, 272, 266, 270),
			dayBar(6, 270, 275, 269, 272.19),
			dayBar(7, 272.14, 274, 268, 270),
		},
	}})

	prevClose, currentOpen, gapPercent, err := f.GapInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 272.19, prevClose, 1e-9)
	assert.InDelta(t, 272.14, currentOpen, 1e-9)
	assert.InDelta(t, (272.14-272.19)/272.19*100, gapPercent, 1e-9)
	assert.Negative(t, gapPercent)
}
