// Package strategy
package strategy

import "time"

// Signal is the decision a strategy produced for one symbol. It is built
// once per symbol per pass and never modified afterwards.
type Signal struct {
	Time            time.Time `json:"time"`
	Symbol          string    `json:"symbol"`
	ShouldTrade     bool      `json:"should_trade"`
	Notional        float64   `json:"notional"`
	TakeProfitPrice float64   `json:"take_profit_price,omitempty"`
	StopLossPrice   float64   `json:"stop_loss_price,omitempty"`
	Reason          string    `json:"reason"`
	StrategyName    string    `json:"strategy_name"`
}

// Allocation returns the cash this signal claims. Skip signals always
// allocate zero, whatever their Notional field holds.
func (s Signal) Allocation() float64 {
	if !s.ShouldTrade {
		return 0
	}
	return s.Notional
}

// Skip builds a no-trade signal with the given reason.
func Skip(symbol, strategyName, reason string) Signal {
	return Signal{
		Time:         time.Now().UTC(),
		Symbol:       symbol,
		Reason:       reason,
		StrategyName: strategyName,
	}
}
