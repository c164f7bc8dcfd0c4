// Package journal
package journal

import (
	"context"
	"time"
)

// Event types written by the bot.
const (
	TypeSignal = "signal"
	TypeOrder  = "order"
	TypePass   = "pass"
	TypeError  = "error"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string // "signal", "order", "pass", "error"
	Description string
	Data        map[string]any
}

// Journaler is the audit trail for decisions and orders. Entries are
// write-once; nothing in the bot reads them back during a pass.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}
