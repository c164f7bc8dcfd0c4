// Package strategy
package strategy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Evaluator walks a watchlist in order, invoking the active strategy once
// per symbol and carrying a running cash budget across the pass. The pass
// is synchronous: no symbol's evaluation overlaps another's.
type Evaluator struct {
	data MarketData
	log  zerolog.Logger
}

func NewEvaluator(data MarketData, log zerolog.Logger) *Evaluator {
	return &Evaluator{data: data, log: log}
}

// EvaluatePass evaluates every symbol in the given order and returns one
// signal per symbol, preserving order. Allocation is first-come-first-served:
// each trade signal's notional is deducted from the budget before the next
// symbol is evaluated, so later symbols see less cash. A fault while
// evaluating one symbol degrades to a skip signal for that symbol only.
func (e *Evaluator) EvaluatePass(ctx context.Context, symbols []string, initialCash float64, strat Strategy) []Signal {
	signals := make([]Signal, 0, len(symbols))
	remaining := initialCash

	for _, symbol := range symbols {
		e.log.Info().Str("symbol", symbol).Float64("remaining_cash", remaining).Msg("evaluating")

		sig := e.evaluateOne(ctx, symbol, remaining, strat)

		if sig.ShouldTrade {
			if sig.Notional > remaining {
				e.log.Warn().
					Str("symbol", symbol).
					Float64("notional", sig.Notional).
					Float64("remaining_cash", remaining).
					Msg("signal notional exceeds remaining budget")
			}
			remaining -= sig.Notional
			e.log.Info().Str("symbol", symbol).Float64("notional", sig.Notional).Str("reason", sig.Reason).Msg("trade signal")
		} else {
			e.log.Info().Str("symbol", symbol).Str("reason", sig.Reason).Msg("skip signal")
		}

		signals = append(signals, sig)
	}

	return signals
}

// evaluateOne isolates a single strategy invocation: a panic becomes a
// skip signal so the rest of the pass still runs with the budget intact.
func (e *Evaluator) evaluateOne(ctx context.Context, symbol string, availableCash float64, strat Strategy) (sig Signal) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Str("symbol", symbol).Any("panic", r).Msg("recovered from strategy panic")
			sig = Skip(symbol, strat.Name(), fmt.Sprintf("evaluation failed for %s: %v", symbol, r))
		}
	}()

	return strat.Evaluate(ctx, symbol, availableCash, e.data)
}
