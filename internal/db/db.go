// Package db
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/quantworks/day-trader/internal/journal"
	"github.com/quantworks/day-trader/internal/order"
	"github.com/quantworks/day-trader/internal/strategy"
)

// Storage is the interface for all persistent storage.
type Storage interface {
	GetDB() *sql.DB
	journal.Journaler

	SaveSignal(ctx context.Context, sig strategy.Signal) error
	GetSignals(ctx context.Context, symbol string, start, end time.Time) ([]strategy.Signal, error)

	SaveOrder(ctx context.Context, resp order.Response) error
	GetOrders(ctx context.Context, symbol string, start, end time.Time) ([]order.Response, error)
}
