// Package audit persists per-pid action outcomes to an external store.
// The trail is observability, not correctness: a sink error is logged by
// the caller and never influences dispatch results.
package audit

import (
	"context"
	"time"
)

// Event is one action attempt against one pid.
type Event struct {
	Action     string    `json:"action"`
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	OK         bool      `json:"ok"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is a destination for audit events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
