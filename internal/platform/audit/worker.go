package audit

import (
	"context"
	"log"
	"time"
)

// Worker drains the outbox to a sink on a fixed interval. Delivery is
// at-least-once; the optional deduper narrows the duplicate window left by
// a crash between publish and mark.
type Worker struct {
	outbox   *Outbox
	sink     Sink
	dedupe   Deduper
	logger   *log.Logger
	interval time.Duration
	batch    int
}

// NewWorker builds an outbox worker. dedupe may be nil.
func NewWorker(outbox *Outbox, sink Sink, dedupe Deduper, logger *log.Logger) *Worker {
	return &Worker{
		outbox:   outbox,
		sink:     sink,
		dedupe:   dedupe,
		logger:   logger,
		interval: time.Second,
		batch:    100,
	}
}

// Run polls until the context ends. A failed pass logs and retries on the
// next tick; undelivered entries stay in the outbox.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Printf("audit worker: drain failed: %v", err)
			}
		}
	}
}

// RunOnce drains a single batch.
func (w *Worker) RunOnce(ctx context.Context) error {
	entries, err := w.outbox.ListUnpublished(ctx, w.batch)
	if err != nil {
		return err
	}

	var delivered []string
	for _, entry := range entries {
		already := false
		if w.dedupe != nil {
			// Dedupe is best effort; on error publish anyway rather than stall.
			if hit, err := w.dedupe.Delivered(ctx, entry.ID); err == nil {
				already = hit
			}
		}
		if !already {
			if err := w.sink.Publish(ctx, entry); err != nil {
				// Stop the batch so ordering holds; marks below still apply
				// to what went through.
				w.logger.Printf("audit worker: publish %s failed: %v", entry.ID, err)
				break
			}
			if w.dedupe != nil {
				// The marker is set only after a successful publish. A crash
				// in between replays the entry, which at-least-once delivery
				// allows; claiming before the publish would lose entries
				// whose publish failed.
				_ = w.dedupe.MarkDelivered(ctx, entry.ID)
			}
		}
		delivered = append(delivered, entry.ID)
	}
	return w.outbox.MarkPublished(ctx, delivered)
}
