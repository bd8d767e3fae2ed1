package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fkhayef/podplanner/pkg/apperror"
)

// Dispatcher runs deliveries in the background with a bounded timeout.
// Failures are logged and never reach the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher that gives each task timeout to finish
func NewDispatcher(sender Sender, timeout time.Duration, log *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout, log: log}
}

// Dispatch sends msg in the background
func (d *Dispatcher) Dispatch(msg Message) {
	d.Go("send "+msg.Subject, func(ctx context.Context) error {
		if err := d.sender.Send(ctx, msg); err != nil {
			return apperror.Wrap(apperror.KindDeliveryFailure, "failed to deliver email to "+msg.To, err)
		}
		d.log.Debug("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	})
}

// Go runs task in the background
func (d *Dispatcher) Go(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				d.log.Error("notification task panicked", zap.String("task", name), zap.Any("panic", p))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := task(ctx); err != nil {
			d.log.Error("notification task failed",
				zap.String("task", name),
				zap.String("kind", string(apperror.KindOf(err))),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every dispatched task finished or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification tasks still running: %w", ctx.Err())
	}
}
