package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantworks/day-trader/internal/bot"
	"github.com/quantworks/day-trader/internal/broker"
	"github.com/quantworks/day-trader/internal/config"
	"github.com/quantworks/day-trader/internal/db"
	"github.com/quantworks/day-trader/internal/marketdata"
	"github.com/quantworks/day-trader/internal/metrics"
	"github.com/quantworks/day-trader/internal/notifier"
	"github.com/quantworks/day-trader/internal/order"
	"github.com/quantworks/day-trader/internal/strategy"
	"github.com/quantworks/day-trader/internal/utils"
)

func main() {
	cfg := config.MustLoadConfig()
	log := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var storage db.Storage
	if cfg.DBConnStr != "" {
		pg, err := db.NewPostgres(ctx, cfg.DBConnStr, cfg.DBMaxOpen, cfg.DBMaxIdle)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pg.Close()
		storage = pg
	} else {
		log.Warn().Msg("no database configured, journaling in memory only")
		storage = db.NewMemory()
	}

	paper := !cfg.LiveTrading
	account := broker.NewAlpaca(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, paper, log)
	fetcher := marketdata.NewAlpacaFetcher(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, cfg.DataFeed, log)

	var submitter order.Submitter
	if cfg.DryRun {
		submitter = order.NewDryRunSubmitter(log)
	} else {
		submitter = order.NewAlpacaSubmitter(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, paper, log)
	}

	var notify notifier.Notifier = notifier.NewNoop()
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		notify = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.NotificationRetries, cfg.NotificationDelay, log)
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.Serve(cfg.MetricsAddr)
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server started")
	}

	strat := strategy.NewGapDown(cfg.CashAllocationPercent, cfg.LookbackDays)
	evaluator := strategy.NewEvaluator(fetcher, log)

	b := bot.New(cfg, strat, evaluator, account, submitter, storage, notify, log)
	_, summary, err := b.Run(ctx)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}

	if err != nil {
		if errors.Is(err, bot.ErrAccountNotTradeable) {
			log.Error().Msg("account is not tradeable, no symbols evaluated")
		} else {
			log.Error().Err(err).Msg("pass failed")
		}
		os.Exit(1)
	}

	log.Info().
		Int("trades", summary.Trades).
		Int("skips", summary.Skips).
		Int("orders_submitted", summary.OrdersSubmitted).
		Int("orders_failed", summary.OrdersFailed).
		Msg("done")
}
