// Package strategy
package strategy

import (
	"context"
	"fmt"
	"time"
)

// GapDown buys symbols whose session open is strictly below the previous
// close, sizing each position as a fixed fraction of the cash available at
// evaluation time. Exit targets bracket the open by the average candle
// range over the lookback window.
type GapDown struct {
	cashAllocationPercent float64
	lookbackDays          int
}

// NewGapDown builds the gap-down strategy. cashAllocationPercent is a
// fraction in (0, 1]; lookbackDays is the averaging window for the candle
// range, in trading days.
func NewGapDown(cashAllocationPercent float64, lookbackDays int) *GapDown {
	return &GapDown{
		cashAllocationPercent: cashAllocationPercent,
		lookbackDays:          lookbackDays,
	}
}

func (g *GapDown) Name() string {
	return "Gap-Down"
}

func (g *GapDown) Description() string {
	return fmt.Sprintf(
		"Buys stocks gapping down (open < prev close) with %.1f%% cash allocation. TP/SL based on %d-day average candle range.",
		g.cashAllocationPercent*100, g.lookbackDays)
}

func (g *GapDown) Evaluate(ctx context.Context, symbol string, availableCash float64, data MarketData) Signal {
	if availableCash <= 0 {
		return Skip(symbol, g.Name(), fmt.Sprintf("insufficient cash ($%.2f available)", availableCash))
	}

	prevClose, err := data.PreviousClose(ctx, symbol)
	if err != nil {
		return Skip(symbol, g.Name(), fmt.Sprintf("previous close unavailable: %v", err))
	}
	currentOpen, err := data.CurrentOpen(ctx, symbol)
	if err != nil {
		return Skip(symbol, g.Name(), fmt.Sprintf("current open unavailable: %v", err))
	}
	if prevClose <= 0 || currentOpen <= 0 {
		return Skip(symbol, g.Name(), fmt.Sprintf("invalid prices (open=%.2f prev_close=%.2f)", currentOpen, prevClose))
	}

	gapPercent := (currentOpen - prevClose) / prevClose * 100

	// Zero gap is not a gap down.
	if currentOpen >= prevClose {
		return Skip(symbol, g.Name(), fmt.Sprintf("no gap down (open=$%.2f >= prev_close=$%.2f)", currentOpen, prevClose))
	}

	avgRange, err := data.AverageCandleRange(ctx, symbol, g.lookbackDays)
	if err != nil {
		return Skip(symbol, g.Name(), fmt.Sprintf("cannot calculate average candle range: %v", err))
	}
	if avgRange <= 0 {
		return Skip(symbol, g.Name(), fmt.Sprintf("non-positive average candle range (%.4f)", avgRange))
	}

	notional := availableCash * g.cashAllocationPercent
	takeProfit := currentOpen + avgRange
	stopLoss := currentOpen - avgRange
	if stopLoss <= 0 {
		return Skip(symbol, g.Name(), fmt.Sprintf("degenerate risk parameters (stop loss %.2f <= 0)", stopLoss))
	}

	return Signal{
		Time:            time.Now().UTC(),
		Symbol:          symbol,
		ShouldTrade:     true,
		Notional:        notional,
		TakeProfitPrice: takeProfit,
		StopLossPrice:   stopLoss,
		StrategyName:    g.Name(),
		Reason: fmt.Sprintf(
			"gap down %.2f%% (open=$%.2f, prev_close=$%.2f), avg_range=$%.2f, TP=$%.2f, SL=$%.2f",
			gapPercent, currentOpen, prevClose, avgRange, takeProfit, stopLoss),
	}
}
