// Package events defines the sink the mutation engine emits to after a
// commit. Delivery to interested accounts (push, websocket, audit log) is
// the surrounding system's concern; the core has no knowledge of
// subscribers.
package events

import (
	"context"
	"log/slog"

	"arbor/internal/domain/models"
)

// Operation names the structural mutation an event reports.
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpMove    Operation = "move"
	OpCopy    Operation = "copy"
	OpRecycle Operation = "recycle"
	OpRestore Operation = "restore"
	OpReorder Operation = "reorder"
)

// Event reports the outcome for one affected target. Exactly one of Item
// and Err is set.
type Event struct {
	Operation Operation
	TargetID  string
	Item      *models.Item
	Err       error
}

// Publisher receives one event per affected target after the target's
// transaction committed (or failed). Implementations must not block the
// mutation path.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// LogPublisher is the default sink: it writes events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that logs every event.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(ctx context.Context, event Event) {
	if event.Err != nil {
		p.logger.Warn("mutation failed",
			"operation", string(event.Operation),
			"item_id", event.TargetID,
			"error", event.Err,
		)
		return
	}
	p.logger.Info("mutation committed",
		"operation", string(event.Operation),
		"item_id", event.TargetID,
	)
}
