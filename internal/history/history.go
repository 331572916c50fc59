// Package history records component lifecycle events (install, uninstall,
// update, enable, disable) so `history` can show what changed and why an
// operation failed.
package history

import (
	"context"
	"time"
)

// Op is the lifecycle operation an event describes.
type Op string

const (
	OpInstall   Op = "install"
	OpUninstall Op = "uninstall"
	OpUpdate    Op = "update"
	OpEnable    Op = "enable"
	OpDisable   Op = "disable"
)

// Outcome is how the operation ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Event is one recorded lifecycle event.
type Event struct {
	OccurredAt time.Time `json:"occurred_at"`
	Op         Op        `json:"op"`
	Component  string    `json:"component"`
	PackageID  string    `json:"package_id,omitempty"`
	Version    string    `json:"version,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Category   string    `json:"category,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Sink stores events. Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Reader lists stored events, newest first.
type Reader interface {
	List(ctx context.Context, limit int) ([]Event, error)
}

// Nop discards events. It is used when the history store cannot be opened.
type Nop struct{}

// Send implements Sink.
func (Nop) Send(context.Context, Event) error { return nil }

// List implements Reader.
func (Nop) List(context.Context, int) ([]Event, error) { return nil, nil }
