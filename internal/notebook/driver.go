package notebook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// driver carries what the injection and query protocols share: timings, the
// intent catalog and the resolver.
type driver struct {
	cfg      Config
	intents  Intents
	resolver *Resolver
	logger   *zap.Logger
}

// action performs a UI motion on a resolved locator.
type action func(ctx context.Context, loc Locator) error

func (d *driver) navigate(ctx context.Context, page Page) error {
	navCtx, cancel := context.WithTimeout(ctx, d.cfg.NavigationTimeout)
	defer cancel()

	if err := page.Navigate(navCtx, d.cfg.TargetURL); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, ErrPageClosed) || errors.Is(err, ErrNavigation) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrNavigation, d.cfg.TargetURL, err)
	}
	return d.cfg.Sleep(ctx, d.cfg.SettleDelay)
}

// step resolves intent and applies act to it. A miss or a failed action is
// recorded in missed and the protocol goes on; page faults and cancellation
// come back as errors. found reports whether act ran without error.
func (d *driver) step(ctx context.Context, page Page, intent Intent, timeout time.Duration, act action, missed *[]string) (found bool, err error) {
	res, err := d.resolver.Resolve(ctx, page, intent, timeout)
	if err != nil {
		return false, err
	}
	if !res.Found {
		d.logger.Warn("UI element not found, skipping step.", zap.String("intent", intent.Name))
		*missed = append(*missed, intent.Name)
		return false, nil
	}
	if err := act(ctx, res.Locator); err != nil {
		if f := fault(ctx, err); f != nil {
			return false, f
		}
		d.logger.Warn("UI action failed, skipping step.",
			zap.String("intent", intent.Name), zap.Stringer("locator", res.Locator), zap.Error(err))
		*missed = append(*missed, intent.Name)
		return false, nil
	}
	return true, nil
}
