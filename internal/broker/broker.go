// Package broker
package broker

import (
	"context"
	"time"
)

// AccountGateway is the slice of the brokerage the bot needs before a
// pass: how much cash there is and whether the account may trade at all.
type AccountGateway interface {
	BuyingPower(ctx context.Context) (float64, error)
	IsTradeable(ctx context.Context) (bool, error)
	AccountSummary(ctx context.Context) (AccountSummary, error)
}

// AccountSummary holds the account metrics worth logging at pass start.
type AccountSummary struct {
	BuyingPower    float64   `json:"buying_power"`
	Cash           float64   `json:"cash"`
	PortfolioValue float64   `json:"portfolio_value"`
	Equity         float64   `json:"equity"`
	TradingBlocked bool      `json:"trading_blocked"`
	Status         string    `json:"status"`
	FetchedAt      time.Time `json:"fetched_at"`
}
