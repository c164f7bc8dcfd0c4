// Package order
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DryRunSubmitter logs would-be orders instead of calling the broker.
// Responses carry a synthetic client order ID so journaling still works.
type DryRunSubmitter struct {
	log zerolog.Logger
}

func NewDryRunSubmitter(log zerolog.Logger) *DryRunSubmitter {
	return &DryRunSubmitter{log: log}
}

func (s *DryRunSubmitter) SubmitBracketOrder(_ context.Context, req BracketOrderRequest) (Response, error) {
	s.log.Info().
		Str("symbol", req.Symbol).
		Float64("notional", req.Notional).
		Float64("take_profit", req.TakeProfitPrice).
		Float64("stop_loss", req.StopLossPrice).
		Msg("[dry run] bracket order not placed")
	return Response{
		ClientOrderID: uuid.NewString(),
		Symbol:        req.Symbol,
		Notional:      req.Notional,
		Status:        "dry_run",
		SubmittedAt:   time.Now().UTC(),
		DryRun:        true,
	}, nil
}

func (s *DryRunSubmitter) SubmitMarketOrder(_ context.Context, symbol string, notional float64) (Response, error) {
	s.log.Info().Str("symbol", symbol).Float64("notional", notional).Msg("[dry run] market order not placed")
	return Response{
		ClientOrderID: uuid.NewString(),
		Symbol:        symbol,
		Notional:      notional,
		Status:        "dry_run",
		SubmittedAt:   time.Now().UTC(),
		DryRun:        true,
	}, nil
}

func (s *DryRunSubmitter) GetOrderStatus(_ context.Context, orderID string) (Response, error) {
	return Response{}, fmt.Errorf("dry run: no broker-side order %s", orderID)
}

func (s *DryRunSubmitter) CancelOrder(_ context.Context, orderID string) error {
	s.log.Info().Str("order_id", orderID).Msg("[dry run] cancel ignored")
	return nil
}

var _ Submitter = (*DryRunSubmitter)(nil)
