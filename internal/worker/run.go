package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
)

// Consumer delivers ledger events. *amqp.Client satisfies it.
type Consumer interface {
	ConsumeWithRetry(ctx context.Context, handler func(context.Context, *amqp.LedgerEvent) error) error
}

// Run consumes events from consumer (when non-nil) and runs the digest on
// schedule (a standard five-field cron expression, empty disables it) until
// ctx is cancelled.
func (w *Worker) Run(ctx context.Context, consumer Consumer, schedule string) error {
	if consumer == nil && schedule == "" {
		return errors.New("nothing to run: no consumer and no digest schedule")
	}

	var sched cron.Schedule
	if schedule != "" {
		var err error
		if sched, err = cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("schedule digest %q: %w", schedule, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeWithRetry(ctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if sched != nil {
		c := cron.New()
		c.Schedule(sched, cron.FuncJob(func() {
			if err := w.RunDigest(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Digest failed", log.FieldError, err)
			}
		}))
		c.Start()
		w.logger.InfoContext(ctx, "Digest scheduled", "schedule", schedule)

		g.Go(func() error {
			<-ctx.Done()
			<-c.Stop().Done()
			w.logger.Info("Digest scheduler stopped")
			return nil
		})
	}

	return g.Wait()
}
