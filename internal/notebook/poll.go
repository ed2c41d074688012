package notebook

import (
	"context"
	"time"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PollSpec bounds a polling loop.
type PollSpec struct {
	Interval  time.Duration
	MaxRounds int
	Sleep     Sleeper
}

// PollResult carries the accepted value and the number of rounds it took.
type PollResult[T any] struct {
	Value  T
	Rounds int
	OK     bool
}

// Poll calls probe up to MaxRounds times, sleeping Interval between rounds,
// and stops at the first round that reports ok. Running out of rounds is a
// normal outcome (OK == false); only probe errors and cancellation are errors.
func Poll[T any](ctx context.Context, spec PollSpec, probe func(ctx context.Context, round int) (T, bool, error)) (PollResult[T], error) {
	sleep := spec.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var res PollResult[T]
	for round := 1; round <= spec.MaxRounds; round++ {
		res.Rounds = round
		v, ok, err := probe(ctx, round)
		if err != nil {
			return res, err
		}
		if ok {
			res.Value, res.OK = v, true
			return res, nil
		}
		if round == spec.MaxRounds {
			break
		}
		if err := sleep(ctx, spec.Interval); err != nil {
			return res, err
		}
	}
	return res, nil
}
