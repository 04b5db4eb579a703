package diskio

import (
	"context"
	"fmt"
	"time"

	"github.com/OffBroadway/sdfatfs/pkg/sdcard"
)

// Waiter blocks until the card is back in the transfer state.
type Waiter interface {
	WaitReady(ctx context.Context, card sdcard.StateReader) error
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(ctx context.Context, card sdcard.StateReader) error

func (f WaiterFunc) WaitReady(ctx context.Context, card sdcard.StateReader) error {
	return f(ctx, card)
}

// PollWaiter polls the card state every Interval. A zero Interval spins,
// a zero Timeout waits forever.
type PollWaiter struct {
	Interval time.Duration
	Timeout  time.Duration
}

// ErrWaitTimeout is returned when the card does not reach the transfer
// state within PollWaiter.Timeout.
var ErrWaitTimeout = fmt.Errorf("diskio: card did not return to %s state", sdcard.StateTransfer)

func (w PollWaiter) WaitReady(ctx context.Context, card sdcard.StateReader) error {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	var ticker *time.Ticker
	if w.Interval > 0 {
		ticker = time.NewTicker(w.Interval)
		defer ticker.Stop()
	}

	for {
		state := card.CardState()
		if state == sdcard.StateTransfer {
			return nil
		}
		if state == sdcard.StateDisconnected || state == sdcard.StateError {
			return fmt.Errorf("diskio: card entered %s state", state)
		}
		if ticker == nil {
			select {
			case <-ctx.Done():
				return waitErr(ctx)
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return waitErr(ctx)
		case <-ticker.C:
		}
	}
}

func waitErr(ctx context.Context) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrWaitTimeout
	}
	return ctx.Err()
}
