package browser

import (
	"context"
	"time"
)

// CombineContext returns a context carrying the values of primary (the
// chromedp target) that is cancelled when either primary or op is done.
// Only primary's deadline is inherited; op's deadline surfaces as cancellation.
func CombineContext(primary, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// detached keeps the values of its parent and drops its cancellation.
type detached struct {
	context.Context
}

func (detached) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detached) Done() <-chan struct{}       { return nil }
func (detached) Err() error                  { return nil }

// Detach returns a context that outlives ctx, for teardown work that must
// run after the caller gave up.
func Detach(ctx context.Context) context.Context {
	return detached{ctx}
}
