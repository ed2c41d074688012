package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/browser/stealth"
	"github.com/xkilldash9x/ytbrief/internal/credential"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
)

// ErrNoSession means the browser held no cookies when the login was confirmed.
var ErrNoSession = errors.New("no signed-in session to save")

// Login opens a visible browser on the target page so a person can sign in.
// Once confirm returns nil the cookies and localStorage are written to the
// credential handle. The browser always runs headful here.
func (o *Orchestrator) Login(ctx context.Context, confirm func(ctx context.Context) error) error {
	if err := checkExecPath(o.cfg.ExecPath); err != nil {
		return &notebook.PreconditionError{
			Err:  fmt.Errorf("%w: %v", notebook.ErrAutomationUnavailable, err),
			Hint: "set browser.exec_path to an installed Chrome or Chromium",
		}
	}

	visible := *o
	visible.cfg.Headless = false
	logger := o.logger.With(zap.String("session_id", uuid.NewString()), zap.String("mode", "login"))

	return visible.withBrowser(ctx, logger, func(tabCtx context.Context) error {
		runCtx, cancel := CombineContext(tabCtx, ctx)
		defer cancel()

		if err := chromedp.Run(runCtx, stealth.Apply(o.cfg.Persona, logger), chromedp.Navigate(o.targetURL)); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: %v", notebook.ErrNavigation, err)
		}
		logger.Info("Waiting for sign-in to finish.", zap.String("url", o.targetURL))

		if err := confirm(ctx); err != nil {
			return err
		}

		var state credential.StorageState
		capture := chromedp.ActionFunc(func(ctx context.Context) error { return captureState(ctx, &state) })
		if err := chromedp.Run(runCtx, capture); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("capturing session: %w", err)
		}
		if len(state.Cookies) == 0 {
			return ErrNoSession
		}
		if err := o.handle.Save(&state); err != nil {
			return err
		}
		logger.Info("Session saved.", zap.String("path", o.handle.StatePath), zap.Int("cookies", len(state.Cookies)))
		return nil
	})
}
