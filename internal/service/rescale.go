package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"arbor/internal/domain/repositories"
	"arbor/internal/orderkey"
)

const (
	rescaleQueueSize  = 256
	rescaleMaxRetries = 3
	rescaleRetryDelay = 500 * time.Millisecond
)

// Rescaler reassigns evenly spaced order keys to a parent's children in the
// background. It runs after the triggering write has been acknowledged and is
// best-effort: an un-rescaled parent stays correctly ordered, only the key
// precision margin degrades.
type Rescaler struct {
	itemRepo repositories.ItemRepository
	logger   *slog.Logger

	queue chan string
	wg    sync.WaitGroup
}

// NewRescaler creates a new rescaler
func NewRescaler(itemRepo repositories.ItemRepository, logger *slog.Logger) *Rescaler {
	return &Rescaler{
		itemRepo: itemRepo,
		logger:   logger,
		queue:    make(chan string, rescaleQueueSize),
	}
}

// Enqueue submits a parent path for rescaling. It never blocks: when the
// queue is full the submission is dropped and logged, which only postpones
// the rescale until the next trigger.
func (r *Rescaler) Enqueue(parentPath string) {
	select {
	case r.queue <- parentPath:
	default:
		r.logger.Warn("rescale queue full, dropping submission", "path", parentPath)
	}
}

// Start launches the worker. It drains the queue until ctx is cancelled.
func (r *Rescaler) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case parentPath := <-r.queue:
				r.rescaleWithRetry(ctx, parentPath)
			}
		}
	}()
}

// Wait blocks until the worker has stopped.
func (r *Rescaler) Wait() {
	r.wg.Wait()
}

func (r *Rescaler) rescaleWithRetry(ctx context.Context, parentPath string) {
	var err error
	for attempt := 1; attempt <= rescaleMaxRetries; attempt++ {
		if err = r.rescale(ctx, parentPath); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(rescaleRetryDelay * time.Duration(attempt)):
		}
	}
	r.logger.Warn("rescale failed", "path", parentPath, "error", err)
}

// rescale assigns fresh evenly spaced keys to the parent's children,
// preserving their current order.
func (r *Rescaler) rescale(ctx context.Context, parentPath string) error {
	children, err := r.itemRepo.GetChildren(ctx, parentPath, true)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	keys, err := orderkey.Keys(len(children))
	if err != nil {
		return err
	}
	assignments := make([]repositories.OrderKeyAssignment, len(children))
	for i, child := range children {
		assignments[i] = repositories.OrderKeyAssignment{ItemID: child.ID, OrderKey: keys[i]}
	}
	if err := r.itemRepo.UpdateOrderKeys(ctx, assignments); err != nil {
		return err
	}

	r.logger.Debug("rescaled children", "path", parentPath, "count", len(children))
	return nil
}
