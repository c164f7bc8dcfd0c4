// Package bot
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantworks/day-trader/internal/broker"
	"github.com/quantworks/day-trader/internal/config"
	"github.com/quantworks/day-trader/internal/db"
	"github.com/quantworks/day-trader/internal/journal"
	"github.com/quantworks/day-trader/internal/metrics"
	"github.com/quantworks/day-trader/internal/notifier"
	"github.com/quantworks/day-trader/internal/order"
	"github.com/quantworks/day-trader/internal/strategy"
)

// ErrAccountNotTradeable is returned when the account pre-check fails
// before any symbol is evaluated.
var ErrAccountNotTradeable = errors.New("account is not tradeable")

// Summary aggregates one pass for reporting.
type Summary struct {
	Total           int       `json:"total_symbols"`
	Trades          int       `json:"trades"`
	Skips           int       `json:"skips"`
	OrdersSubmitted int       `json:"orders_submitted"`
	OrdersFailed    int       `json:"orders_failed"`
	BuyingPower     float64   `json:"buying_power"`
	DryRun          bool      `json:"dry_run"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Bot runs one watchlist pass end to end: account pre-checks, strategy
// evaluation, and order placement for trade signals.
type Bot struct {
	cfg       config.Config
	strat     strategy.Strategy
	evaluator *strategy.Evaluator
	account   broker.AccountGateway
	orders    order.Submitter
	storage   db.Storage
	notify    notifier.Notifier
	log       zerolog.Logger
}

func New(
	cfg config.Config,
	strat strategy.Strategy,
	evaluator *strategy.Evaluator,
	account broker.AccountGateway,
	orders order.Submitter,
	storage db.Storage,
	notify notifier.Notifier,
	log zerolog.Logger,
) *Bot {
	log.Info().
		Str("strategy", strat.Name()).
		Str("description", strat.Description()).
		Strs("watchlist", cfg.Watchlist).
		Bool("dry_run", cfg.DryRun).
		Msg("initialized bot")
	return &Bot{
		cfg:       cfg,
		strat:     strat,
		evaluator: evaluator,
		account:   account,
		orders:    orders,
		storage:   storage,
		notify:    notify,
		log:       log,
	}
}

// Run executes one pass and returns every signal produced plus the
// summary. Account precondition failures are fatal and produce no
// signals; everything after the pre-check degrades per symbol or per
// order.
func (b *Bot) Run(ctx context.Context) ([]strategy.Signal, Summary, error) {
	summary := Summary{DryRun: b.cfg.DryRun, StartedAt: time.Now().UTC()}

	tradeable, err := b.account.IsTradeable(ctx)
	if err != nil {
		metrics.PassesTotal.WithLabelValues("error").Inc()
		return nil, summary, fmt.Errorf("checking account status: %w", err)
	}
	if !tradeable {
		metrics.PassesTotal.WithLabelValues("not_tradeable").Inc()
		b.journal(ctx, journal.Event{
			Time: time.Now().UTC(), Type: journal.TypeError,
			Description: "account not tradeable, pass aborted",
		})
		return nil, summary, ErrAccountNotTradeable
	}

	if acct, err := b.account.AccountSummary(ctx); err == nil {
		b.log.Info().
			Float64("cash", acct.Cash).
			Float64("portfolio_value", acct.PortfolioValue).
			Float64("equity", acct.Equity).
			Str("status", acct.Status).
			Msg("account snapshot")
	}

	buyingPower, err := b.account.BuyingPower(ctx)
	if err != nil {
		metrics.PassesTotal.WithLabelValues("error").Inc()
		return nil, summary, fmt.Errorf("fetching buying power: %w", err)
	}
	summary.BuyingPower = buyingPower

	if buyingPower <= 0 {
		b.log.Warn().Float64("buying_power", buyingPower).Msg("no buying power available")
		metrics.PassesTotal.WithLabelValues("no_buying_power").Inc()
		summary.FinishedAt = time.Now().UTC()
		return []strategy.Signal{}, summary, nil
	}

	b.log.Info().
		Float64("buying_power", buyingPower).
		Int("symbols", len(b.cfg.Watchlist)).
		Msg("starting pass")

	signals := b.evaluator.EvaluatePass(ctx, b.cfg.Watchlist, buyingPower, b.strat)

	for _, sig := range signals {
		decision := "skip"
		if sig.ShouldTrade {
			decision = "trade"
			summary.Trades++
		} else {
			summary.Skips++
		}
		metrics.SignalsTotal.WithLabelValues(sig.Symbol, decision).Inc()

		if err := b.storage.SaveSignal(ctx, sig); err != nil {
			b.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("failed to persist signal")
		}
		b.journal(ctx, journal.Event{
			Time: sig.Time, Type: journal.TypeSignal,
			Description: decision,
			Data: map[string]any{
				"symbol":   sig.Symbol,
				"notional": sig.Allocation(),
				"reason":   sig.Reason,
				"strategy": sig.StrategyName,
			},
		})
	}
	summary.Total = len(signals)

	for _, sig := range signals {
		if !sig.ShouldTrade {
			continue
		}
		if err := b.executeTrade(ctx, sig); err != nil {
			// The signal's notional stays spent for this pass even
			// though the order never made it to the broker.
			summary.OrdersFailed++
			b.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("failed to execute trade")
			continue
		}
		summary.OrdersSubmitted++
	}

	summary.FinishedAt = time.Now().UTC()
	metrics.PassesTotal.WithLabelValues("completed").Inc()

	b.log.Info().
		Int("trades", summary.Trades).
		Int("skips", summary.Skips).
		Int("orders_submitted", summary.OrdersSubmitted).
		Int("orders_failed", summary.OrdersFailed).
		Msg("pass completed")

	b.journal(ctx, journal.Event{
		Time: summary.FinishedAt, Type: journal.TypePass,
		Description: "pass completed",
		Data: map[string]any{
			"total":            summary.Total,
			"trades":           summary.Trades,
			"skips":            summary.Skips,
			"orders_submitted": summary.OrdersSubmitted,
			"orders_failed":    summary.OrdersFailed,
			"dry_run":          summary.DryRun,
		},
	})

	if err := b.notify.SendWithRetry(formatSummary(b.strat.Name(), summary)); err != nil {
		b.log.Error().Err(err).Msg("failed to send summary notification")
	}

	return signals, summary, nil
}

func (b *Bot) executeTrade(ctx context.Context, sig strategy.Signal) error {
	req, err := order.FromSignal(sig)
	if err != nil {
		return err
	}

	var resp order.Response
	if req.HasBracket() {
		resp, err = b.orders.SubmitBracketOrder(ctx, req)
	} else {
		resp, err = b.orders.SubmitMarketOrder(ctx, req.Symbol, req.Notional)
	}
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(sig.Symbol, "failed").Inc()
		b.journal(ctx, journal.Event{
			Time: time.Now().UTC(), Type: journal.TypeError,
			Description: "order submission failed",
			Data:        map[string]any{"symbol": sig.Symbol, "error": err.Error()},
		})
		return err
	}

	metrics.OrdersTotal.WithLabelValues(sig.Symbol, resp.Status).Inc()
	if err := b.storage.SaveOrder(ctx, resp); err != nil {
		b.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("failed to persist order")
	}
	b.journal(ctx, journal.Event{
		Time: resp.SubmittedAt, Type: journal.TypeOrder,
		Description: "order submitted",
		Data: map[string]any{
			"symbol":          resp.Symbol,
			"order_id":        resp.OrderID,
			"client_order_id": resp.ClientOrderID,
			"notional":        resp.Notional,
			"status":          resp.Status,
			"dry_run":         resp.DryRun,
		},
	})
	return nil
}

func (b *Bot) journal(ctx context.Context, event journal.Event) {
	if err := b.storage.LogEvent(ctx, event); err != nil {
		b.log.Error().Err(err).Str("type", event.Type).Msg("failed to journal event")
	}
}

func formatSummary(strategyName string, s Summary) string {
	mode := ""
	if s.DryRun {
		mode = " [dry run]"
	}
	return fmt.Sprintf("%s pass%s: %d trades, %d skips (%d orders submitted, %d failed, buying power $%.2f)",
		strategyName, mode, s.Trades, s.Skips, s.OrdersSubmitted, s.OrdersFailed, s.BuyingPower)
}
