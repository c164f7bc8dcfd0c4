// Package strategy
package strategy

import (
	"context"
)

// MarketData is the read-only market data accessor handed to strategies.
// Implementations may hit the network; any failure is reported per symbol
// and must be turned into a skip signal by the caller.
type MarketData interface {
	PreviousClose(ctx context.Context, symbol string) (float64, error)
	CurrentOpen(ctx context.Context, symbol string) (float64, error)
	AverageCandleRange(ctx context.Context, symbol string, lookbackDays int) (float64, error)
}

// Strategy is the interface for all trading strategies.
//
// Evaluate must always return a Signal for the given symbol, never an
// error: when data is missing or inputs are invalid it returns a skip
// signal with a descriptive reason. Strategies read market data but never
// place orders and never mutate shared cash state; cash bookkeeping
// belongs to the Evaluator.
type Strategy interface {
	Name() string
	Description() string
	Evaluate(ctx context.Context, symbol string, availableCash float64, data MarketData) Signal
}
