// Package order
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantworks/day-trader/internal/strategy"
)

// ErrNotTradeSignal is returned when a bracket order is requested from a
// skip signal.
var ErrNotTradeSignal = errors.New("signal is not a trade signal")

// BracketOrderRequest describes a notional entry with linked take-profit
// and stop-loss exits.
type BracketOrderRequest struct {
	Symbol          string  `json:"symbol"`
	Notional        float64 `json:"notional"`
	TakeProfitPrice float64 `json:"take_profit_price"`
	StopLossPrice   float64 `json:"stop_loss_price"`
}

// FromSignal derives a bracket order request from a trade signal. Skip
// signals never become orders.
func FromSignal(sig strategy.Signal) (BracketOrderRequest, error) {
	if !sig.ShouldTrade {
		return BracketOrderRequest{}, fmt.Errorf("%w: %s (%s)", ErrNotTradeSignal, sig.Symbol, sig.Reason)
	}
	if sig.Notional <= 0 {
		return BracketOrderRequest{}, fmt.Errorf("trade signal for %s has non-positive notional %.2f", sig.Symbol, sig.Notional)
	}
	return BracketOrderRequest{
		Symbol:          sig.Symbol,
		Notional:        sig.Notional,
		TakeProfitPrice: sig.TakeProfitPrice,
		StopLossPrice:   sig.StopLossPrice,
	}, nil
}

// HasBracket reports whether both exit prices are set. A request without
// them degrades to a plain market order.
func (r BracketOrderRequest) HasBracket() bool {
	return r.TakeProfitPrice > 0 && r.StopLossPrice > 0
}

// Response is the broker's confirmation of a submitted order.
type Response struct {
	OrderID       string    `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Symbol        string    `json:"symbol"`
	Notional      float64   `json:"notional"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
	DryRun        bool      `json:"dry_run,omitempty"`
}

// Submitter turns abstract order requests into broker-side orders.
type Submitter interface {
	SubmitBracketOrder(ctx context.Context, req BracketOrderRequest) (Response, error)
	SubmitMarketOrder(ctx context.Context, symbol string, notional float64) (Response, error)
	GetOrderStatus(ctx context.Context, orderID string) (Response, error)
	CancelOrder(ctx context.Context, orderID string) error
}
