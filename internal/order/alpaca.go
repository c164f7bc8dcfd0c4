// Package order
package order

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"
)

// tradingClient is the slice of the Alpaca trading client the submitter
// uses.
type tradingClient interface {
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
	GetOrder(orderID string) (*alpaca.Order, error)
	CancelOrder(orderID string) error
}

// AlpacaSubmitter places notional day orders against the Alpaca trading
// API.
type AlpacaSubmitter struct {
	client tradingClient
	log    zerolog.Logger
}

// NewAlpacaSubmitter builds a submitter against the paper or live trading
// API.
func NewAlpacaSubmitter(apiKey, apiSecret string, paper bool, log zerolog.Logger) *AlpacaSubmitter {
	baseURL := liveBaseURL
	if paper {
		baseURL = paperBaseURL
	}
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	return &AlpacaSubmitter{client: client, log: log}
}

// SubmitBracketOrder places a notional market entry with linked
// take-profit and stop-loss legs.
func (s *AlpacaSubmitter) SubmitBracketOrder(ctx context.Context, req BracketOrderRequest) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if !req.HasBracket() {
		return Response{}, fmt.Errorf("bracket order for %s is missing exit prices (TP=%.2f SL=%.2f)",
			req.Symbol, req.TakeProfitPrice, req.StopLossPrice)
	}

	notional := decimal.NewFromFloat(req.Notional)
	takeProfit := decimal.NewFromFloat(req.TakeProfitPrice)
	stopLoss := decimal.NewFromFloat(req.StopLossPrice)
	clientOrderID := uuid.NewString()

	s.log.Info().
		Str("symbol", req.Symbol).
		Float64("notional", req.Notional).
		Float64("take_profit", req.TakeProfitPrice).
		Float64("stop_loss", req.StopLossPrice).
		Str("client_order_id", clientOrderID).
		Msg("placing bracket order")

	placed, err := s.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Notional:      &notional,
		Side:          alpaca.Buy,
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		OrderClass:    alpaca.Bracket,
		TakeProfit:    &alpaca.TakeProfit{LimitPrice: &takeProfit},
		StopLoss:      &alpaca.StopLoss{StopPrice: &stopLoss},
		ClientOrderID: clientOrderID,
	})
	if err != nil {
		return Response{}, fmt.Errorf("placing bracket order for %s: %w", req.Symbol, err)
	}

	s.log.Info().Str("symbol", req.Symbol).Str("order_id", placed.ID).Str("status", string(placed.Status)).Msg("order placed")

	return fromAlpacaOrder(placed), nil
}

// SubmitMarketOrder places a plain notional market order with no exits.
func (s *AlpacaSubmitter) SubmitMarketOrder(ctx context.Context, symbol string, notional float64) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if notional <= 0 {
		return Response{}, fmt.Errorf("market order for %s has non-positive notional %.2f", symbol, notional)
	}

	amount := decimal.NewFromFloat(notional)
	clientOrderID := uuid.NewString()

	s.log.Info().Str("symbol", symbol).Float64("notional", notional).Str("client_order_id", clientOrderID).Msg("placing market order")

	placed, err := s.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Notional:      &amount,
		Side:          alpaca.Buy,
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		ClientOrderID: clientOrderID,
	})
	if err != nil {
		return Response{}, fmt.Errorf("placing market order for %s: %w", symbol, err)
	}

	return fromAlpacaOrder(placed), nil
}

func (s *AlpacaSubmitter) GetOrderStatus(ctx context.Context, orderID string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	placed, err := s.client.GetOrder(orderID)
	if err != nil {
		return Response{}, fmt.Errorf("fetching order %s: %w", orderID, err)
	}
	return fromAlpacaOrder(placed), nil
}

func (s *AlpacaSubmitter) CancelOrder(ctx context.Context, orderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.CancelOrder(orderID); err != nil {
		return fmt.Errorf("cancelling order %s: %w", orderID, err)
	}
	s.log.Info().Str("order_id", orderID).Msg("order cancelled")
	return nil
}

func fromAlpacaOrder(o *alpaca.Order) Response {
	resp := Response{
		OrderID:       o.ID,
		ClientOrderID: o.ClientOrderID,
		Symbol:        o.Symbol,
		Status:        string(o.Status),
		SubmittedAt:   o.SubmittedAt,
	}
	if o.Notional != nil {
		resp.Notional = o.Notional.InexactFloat64()
	}
	return resp
}

var _ Submitter = (*AlpacaSubmitter)(nil)
