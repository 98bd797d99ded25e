// Package notify forwards persisted leads to the configured webhook.
//
// Delivery is best-effort: Notify only enqueues, a single worker started with
// Run performs one attempt per lead, and failures are logged and dropped.
// An attempt that has started is not cut short by shutdown; the HTTP client
// timeout bounds it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"leadbot/internal/leads"
)

// Poster sends a JSON body to a URL.
type Poster interface {
	PostJSON(ctx context.Context, url string, payload any) error
}

type Config struct {
	URL           string
	RatePerSecond float64
}

type Dispatcher struct {
	poster  Poster
	queue   Queue
	limiter *rate.Limiter
	logger  *zap.Logger
	url     string
	now     func() time.Time
}

func New(poster Poster, queue Queue, cfg Config, logger *zap.Logger) *Dispatcher {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Dispatcher{
		poster:  poster,
		queue:   queue,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		url:     cfg.URL,
		now:     time.Now,
	}
}

// Notify schedules one delivery of lead and returns immediately. It never
// fails from the caller's point of view.
func (d *Dispatcher) Notify(ctx context.Context, lead leads.Lead) {
	if d.url == "" {
		d.logger.Warn("DISCORD_WEBHOOK_URL not configured, skipping webhook send",
			zap.String("lead_id", lead.ID))
		return
	}

	if err := d.queue.Push(ctx, lead); err != nil {
		d.logger.Error("Failed to enqueue lead notification",
			zap.String("lead_id", lead.ID),
			zap.Error(err))
	}
}

// Deliver makes exactly one delivery attempt. No URL means no request and no
// error.
func (d *Dispatcher) Deliver(ctx context.Context, lead leads.Lead) error {
	if d.url == "" {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	if err := d.poster.PostJSON(ctx, d.url, BuildPayload(lead, d.now())); err != nil {
		return fmt.Errorf("%w: lead %s: %w", leads.ErrDelivery, lead.ID, err)
	}
	return nil
}

// drainer is implemented by queues that lose their contents on exit.
type drainer interface {
	Drain() []leads.Lead
}

// Run drains the queue until ctx is cancelled. A lead that has already been
// popped is delivered before Run returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Starting notification worker")

	for {
		lead, err := d.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.stop()
				return nil
			}
			d.logger.Error("Failed to read notification queue", zap.Error(err))
			if !sleep(ctx, time.Second) {
				d.stop()
				return nil
			}
			continue
		}

		// On shutdown the wait is skipped, not the lead.
		if err := d.limiter.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			d.logger.Warn("Rate limiter wait failed", zap.Error(err))
		}

		d.deliverAndLog(ctx, lead)
	}
}

func (d *Dispatcher) stop() {
	if q, ok := d.queue.(drainer); ok {
		for _, lead := range q.Drain() {
			d.logger.Warn("Lead notification not sent before shutdown",
				zap.String("lead_id", lead.ID),
				zap.String("name", lead.Name),
				zap.String("email", lead.Email))
		}
	}
	d.logger.Info("Notification worker stopped")
}

func (d *Dispatcher) deliverAndLog(ctx context.Context, lead leads.Lead) {
	if err := d.Deliver(ctx, lead); err != nil {
		d.logger.Error("Error sending lead to Discord webhook",
			zap.String("lead_id", lead.ID),
			zap.Error(err))
		return
	}
	d.logger.Info("Lead data sent to Discord webhook",
		zap.String("lead_id", lead.ID))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
