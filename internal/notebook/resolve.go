package notebook

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Resolution is the result of resolving an intent. Found == false is the
// explicit not-found variant; it is not an error.
type Resolution struct {
	Intent  string
	Found   bool
	Locator Locator
	// Index is the position of the winning candidate.
	Index int
}

// AcceptFunc gets a final say on a visible candidate.
type AcceptFunc func(ctx context.Context, loc Locator) (bool, error)

// Resolver walks intent candidates against a live page.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger.Named("resolver")}
}

// Resolve returns the first candidate that becomes visible within timeout.
// Later candidates are not probed once one matches.
func (r *Resolver) Resolve(ctx context.Context, page Page, intent Intent, timeout time.Duration) (Resolution, error) {
	return r.ResolveWhere(ctx, page, intent, timeout, nil)
}

// ResolveWhere is Resolve with an extra acceptance check on each visible
// candidate. Misses and rejected candidates move on to the next one; only page
// faults and cancellation are returned as errors.
func (r *Resolver) ResolveWhere(ctx context.Context, page Page, intent Intent, timeout time.Duration, accept AcceptFunc) (Resolution, error) {
	for i, loc := range intent.Candidates {
		visible, err := r.probe(ctx, page, loc, timeout)
		if err != nil {
			return Resolution{Intent: intent.Name}, err
		}
		if !visible {
			continue
		}

		if accept != nil {
			ok, err := accept(ctx, loc)
			if err != nil {
				if f := fault(ctx, err); f != nil {
					return Resolution{Intent: intent.Name}, f
				}
				r.logger.Debug("Candidate rejected after error.", zap.String("intent", intent.Name), zap.Stringer("locator", loc), zap.Error(err))
				continue
			}
			if !ok {
				continue
			}
		}

		r.logger.Debug("Intent resolved.", zap.String("intent", intent.Name), zap.Stringer("locator", loc), zap.Int("index", i))
		return Resolution{Intent: intent.Name, Found: true, Locator: loc, Index: i}, nil
	}

	r.logger.Debug("Intent not resolved.", zap.String("intent", intent.Name), zap.Int("candidates", len(intent.Candidates)))
	return Resolution{Intent: intent.Name}, nil
}

func (r *Resolver) probe(ctx context.Context, page Page, loc Locator, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	visible, err := page.Visible(probeCtx, loc)
	if err != nil {
		if f := fault(ctx, err); f != nil {
			return false, f
		}
		return false, nil
	}
	return visible, nil
}
