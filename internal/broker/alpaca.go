// Package broker
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rs/zerolog"
)

const (
	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"
)

// accountClient is the slice of the Alpaca trading client the gateway
// uses.
type accountClient interface {
	GetAccount() (*alpaca.Account, error)
}

// Alpaca is the Alpaca-backed account gateway.
type Alpaca struct {
	client        accountClient
	log           zerolog.Logger
	retryAttempts int
	retryDelay    time.Duration
}

// NewAlpaca builds an account gateway against the paper or live trading
// API.
func NewAlpaca(apiKey, apiSecret string, paper bool, log zerolog.Logger) *Alpaca {
	baseURL := liveBaseURL
	if paper {
		baseURL = paperBaseURL
	}
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	log.Info().Bool("paper", paper).Msg("initialized Alpaca trading client")
	return &Alpaca{client: client, log: log, retryAttempts: 3, retryDelay: 2 * time.Second}
}

// retry wraps a function with retry logic for transient errors, using exponential backoff and error logging.
func retry(ctx context.Context, log zerolog.Logger, attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().Int("attempt", i).Int("max_attempts", attempts).Dur("backoff", backoff).Err(err).Msg("broker call failed")
		if i < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
			}
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func (a *Alpaca) account(ctx context.Context) (*alpaca.Account, error) {
	var acct *alpaca.Account
	err := retry(ctx, a.log, a.retryAttempts, a.retryDelay, func() error {
		var err error
		acct, err = a.client.GetAccount()
		if err != nil {
			return fmt.Errorf("fetching account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// BuyingPower returns the cash available for new positions. A blocked
// account reports zero.
func (a *Alpaca) BuyingPower(ctx context.Context) (float64, error) {
	acct, err := a.account(ctx)
	if err != nil {
		return 0, err
	}
	if acct.TradingBlocked {
		a.log.Warn().Msg("account is restricted from trading")
		return 0, nil
	}
	buyingPower := acct.BuyingPower.InexactFloat64()
	a.log.Info().Float64("buying_power", buyingPower).Msg("fetched buying power")
	return buyingPower, nil
}

// IsTradeable reports whether the account may place orders right now.
func (a *Alpaca) IsTradeable(ctx context.Context) (bool, error) {
	acct, err := a.account(ctx)
	if err != nil {
		return false, err
	}
	return !acct.TradingBlocked && !acct.AccountBlocked, nil
}

// AccountSummary fetches the account metrics logged at pass start.
func (a *Alpaca) AccountSummary(ctx context.Context) (AccountSummary, error) {
	acct, err := a.account(ctx)
	if err != nil {
		return AccountSummary{}, err
	}
	return AccountSummary{
		BuyingPower:    acct.BuyingPower.InexactFloat64(),
		Cash:           acct.Cash.InexactFloat64(),
		PortfolioValue: acct.PortfolioValue.InexactFloat64(),
		Equity:         acct.Equity.InexactFloat64(),
		TradingBlocked: acct.TradingBlocked,
		Status:         string(acct.Status),
		FetchedAt:      time.Now().UTC(),
	}, nil
}
