// Package db
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/quantworks/day-trader/internal/journal"
	"github.com/quantworks/day-trader/internal/order"
	"github.com/quantworks/day-trader/internal/strategy"
)

// Postgres is the lib/pq backed Storage.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and ensures the schema exists.
func NewPostgres(ctx context.Context, connStr string, maxOpen, maxIdle int) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.initSchema(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) GetDB() *sql.DB {
	return p.db
}

func (p *Postgres) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			time TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			data JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS events_type_time_idx ON events (type, time)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id BIGSERIAL PRIMARY KEY,
			time TIMESTAMPTZ NOT NULL,
			symbol TEXT NOT NULL,
			should_trade BOOLEAN NOT NULL,
			notional DOUBLE PRECISION NOT NULL,
			take_profit_price DOUBLE PRECISION,
			stop_loss_price DOUBLE PRECISION,
			reason TEXT NOT NULL,
			strategy_name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS signals_symbol_time_idx ON signals (symbol, time)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			order_id TEXT,
			client_order_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			notional DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL,
			dry_run BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS orders_symbol_time_idx ON orders (symbol, submitted_at)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) LogEvent(ctx context.Context, event journal.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO events (time, type, description, data)
		VALUES ($1, $2, $3, $4)`,
		event.Time, event.Type, event.Description, data)
	if err != nil {
		return fmt.Errorf("saving %s event: %w", event.Type, err)
	}
	return nil
}

func (p *Postgres) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT time, type, description, data FROM events
		WHERE type = $1 AND time >= $2 AND time <= $3
		ORDER BY time`,
		eventType, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var event journal.Event
		var data []byte
		if err := rows.Scan(&event.Time, &event.Type, &event.Description, &data); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &event.Data); err != nil {
				return nil, fmt.Errorf("unmarshaling event data: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (p *Postgres) SaveSignal(ctx context.Context, sig strategy.Signal) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO signals (time, symbol, should_trade, notional, take_profit_price, stop_loss_price, reason, strategy_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sig.Time, sig.Symbol, sig.ShouldTrade, sig.Notional, sig.TakeProfitPrice, sig.StopLossPrice, sig.Reason, sig.StrategyName)
	if err != nil {
		return fmt.Errorf("saving signal for %s: %w", sig.Symbol, err)
	}
	return nil
}

func (p *Postgres) GetSignals(ctx context.Context, symbol string, start, end time.Time) ([]strategy.Signal, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT time, symbol, should_trade, notional, take_profit_price, stop_loss_price, reason, strategy_name
		FROM signals
		WHERE symbol = $1 AND time >= $2 AND time <= $3
		ORDER BY time`,
		symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying signals for %s: %w", symbol, err)
	}
	defer rows.Close()

	var signals []strategy.Signal
	for rows.Next() {
		var sig strategy.Signal
		if err := rows.Scan(&sig.Time, &sig.Symbol, &sig.ShouldTrade, &sig.Notional,
			&sig.TakeProfitPrice, &sig.StopLossPrice, &sig.Reason, &sig.StrategyName); err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

func (p *Postgres) SaveOrder(ctx context.Context, resp order.Response) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, client_order_id, symbol, notional, status, submitted_at, dry_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		resp.OrderID, resp.ClientOrderID, resp.Symbol, resp.Notional, resp.Status, resp.SubmittedAt, resp.DryRun)
	if err != nil {
		return fmt.Errorf("saving order for %s: %w", resp.Symbol, err)
	}
	return nil
}

func (p *Postgres) GetOrders(ctx context.Context, symbol string, start, end time.Time) ([]order.Response, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT order_id, client_order_id, symbol, notional, status, submitted_at, dry_run
		FROM orders
		WHERE symbol = $1 AND submitted_at >= $2 AND submitted_at <= $3
		ORDER BY submitted_at`,
		symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying orders for %s: %w", symbol, err)
	}
	defer rows.Close()

	var orders []order.Response
	for rows.Next() {
		var resp order.Response
		if err := rows.Scan(&resp.OrderID, &resp.ClientOrderID, &resp.Symbol, &resp.Notional,
			&resp.Status, &resp.SubmittedAt, &resp.DryRun); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, resp)
	}
	return orders, rows.Err()
}

var _ Storage = (*Postgres)(nil)
