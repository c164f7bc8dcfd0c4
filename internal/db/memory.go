// Package db
package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/quantworks/day-trader/internal/journal"
	"github.com/quantworks/day-trader/internal/order"
	"github.com/quantworks/day-trader/internal/strategy"
)

// Memory is an in-memory Storage used for dry runs and tests. It keeps
// everything for the lifetime of the process and nothing beyond it.
type Memory struct {
	mu      sync.RWMutex
	events  []journal.Event
	signals []strategy.Signal
	orders  []order.Response
}

func NewMemory() *Memory {
	return &Memory{}
}

// GetDB returns nil: there is no SQL handle behind the in-memory store.
func (m *Memory) GetDB() *sql.DB {
	return nil
}

func (m *Memory) LogEvent(_ context.Context, event journal.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) GetEvents(_ context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []journal.Event
	for _, event := range m.events {
		if event.Type != eventType {
			continue
		}
		if event.Time.Before(start) || event.Time.After(end) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (m *Memory) SaveSignal(_ context.Context, sig strategy.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, sig)
	return nil
}

func (m *Memory) GetSignals(_ context.Context, symbol string, start, end time.Time) ([]strategy.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []strategy.Signal
	for _, sig := range m.signals {
		if sig.Symbol != symbol {
			continue
		}
		if sig.Time.Before(start) || sig.Time.After(end) {
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}

func (m *Memory) SaveOrder(_ context.Context, resp order.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, resp)
	return nil
}

func (m *Memory) GetOrders(_ context.Context, symbol string, start, end time.Time) ([]order.Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []order.Response
	for _, resp := range m.orders {
		if resp.Symbol != symbol {
			continue
		}
		if resp.SubmittedAt.Before(start) || resp.SubmittedAt.After(end) {
			continue
		}
		out = append(out, resp)
	}
	return out, nil
}

var _ Storage = (*Memory)(nil)
