// Package browser launches Chrome through chromedp with a saved signed-in
// session and hands a single page to the notebook protocols.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/browser/stealth"
	"github.com/xkilldash9x/ytbrief/internal/credential"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
)

// ErrLaunchTimeout means Chrome did not come up within Config.LaunchTimeout.
var ErrLaunchTimeout = errors.New("browser launch timed out")

// Orchestrator owns the lifecycle of one browser per protocol call.
type Orchestrator struct {
	cfg       Config
	handle    credential.Handle
	targetURL string
	logger    *zap.Logger
}

var _ notebook.SessionRunner = (*Orchestrator)(nil)

func NewOrchestrator(cfg Config, handle credential.Handle, targetURL string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg.withDefaults(),
		handle:    handle,
		targetURL: targetURL,
		logger:    logger.Named("browser"),
	}
}

// WithSession validates the credential, launches Chrome, restores the saved
// session and calls fn with the page. The browser is shut down on every exit
// path; a panic inside fn comes back as an error.
func (o *Orchestrator) WithSession(ctx context.Context, fn func(ctx context.Context, page notebook.Page) error) error {
	state, err := o.handle.Load()
	if err != nil {
		if errors.Is(err, credential.ErrMissing) {
			return &notebook.PreconditionError{Err: err, Hint: credential.Hint}
		}
		return &notebook.PreconditionError{Err: err, Hint: "the saved session is unreadable; " + credential.Hint}
	}
	if err := checkExecPath(o.cfg.ExecPath); err != nil {
		return &notebook.PreconditionError{
			Err:  fmt.Errorf("%w: %v", notebook.ErrAutomationUnavailable, err),
			Hint: "set browser.exec_path to an installed Chrome or Chromium",
		}
	}

	logger := o.logger.With(zap.String("session_id", uuid.NewString()))
	return o.withBrowser(ctx, logger, func(tabCtx context.Context) error {
		if err := o.prepare(ctx, tabCtx, logger, state); err != nil {
			return err
		}
		page := &cdpPage{tabCtx: tabCtx, logger: logger.Named("page")}
		return call(ctx, page, fn)
	})
}

// withBrowser starts Chrome, runs fn against the first tab and tears the
// process down afterwards on a detached context.
func (o *Orchestrator) withBrowser(ctx context.Context, logger *zap.Logger, fn func(tabCtx context.Context) error) error {
	sugar := logger.Named("chromedp").Sugar()
	allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), allocatorOptions(o.cfg, o.handle.ProfileDir)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
		chromedp.WithDebugf(func(string, ...any) {}),
	)
	defer o.teardown(tabCtx, tabCancel, allocCancel, logger)

	// The first Run starts Chrome bound to the context it is given, so it
	// must run on tabCtx itself. The launch deadline cancels the tab instead.
	launchCtx, cancelLaunch := context.WithTimeout(ctx, o.cfg.LaunchTimeout)
	stopWatchdog := context.AfterFunc(launchCtx, tabCancel)
	err := chromedp.Run(tabCtx)
	expired := !stopWatchdog()
	cancelLaunch()

	switch {
	case err != nil && missingBrowser(err):
		return &notebook.PreconditionError{
			Err:  fmt.Errorf("%w: %v", notebook.ErrAutomationUnavailable, err),
			Hint: "install Chrome or set browser.exec_path",
		}
	case ctx.Err() != nil:
		return ctx.Err()
	case expired:
		return fmt.Errorf("%w after %s", ErrLaunchTimeout, o.cfg.LaunchTimeout)
	case err != nil:
		return fmt.Errorf("launching browser: %w", err)
	}
	logger.Debug("Browser launched.", zap.Bool("headless", o.cfg.Headless))

	return fn(tabCtx)
}

// prepare makes the tab the only page, installs the persona and the saved
// session, and grants clipboard access for the target origin.
func (o *Orchestrator) prepare(ctx, tabCtx context.Context, logger *zap.Logger, state *credential.StorageState) error {
	runCtx, cancel := CombineContext(tabCtx, ctx)
	defer cancel()

	tasks := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error { return closeOtherPages(ctx, logger) }),
		emulation.SetDeviceMetricsOverride(int64(o.cfg.WindowWidth), int64(o.cfg.WindowHeight), 1, false),
	}
	tasks = append(tasks, stealth.Apply(o.cfg.Persona, logger)...)
	tasks = append(tasks, restoreState(state)...)
	if err := chromedp.Run(runCtx, tasks); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("preparing browser session: %w", err)
	}

	if err := chromedp.Run(runCtx, grantClipboard(o.targetURL)); err != nil {
		logger.Warn("Clipboard permission not granted; pasting will fall back to text insertion.", zap.Error(err))
	}
	return nil
}

// call runs fn and converts a panic into an error.
func call(ctx context.Context, page notebook.Page, fn func(ctx context.Context, page notebook.Page) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in browser session: %v", r)
		}
	}()
	return fn(ctx, page)
}

func (o *Orchestrator) teardown(tabCtx context.Context, tabCancel, allocCancel context.CancelFunc, logger *zap.Logger) {
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(tabCtx) }()

	waitCtx, cancel := context.WithTimeout(Detach(tabCtx), o.cfg.TeardownTimeout)
	defer cancel()

	closed := false
	select {
	case err := <-done:
		closed = true
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("Browser did not close cleanly.", zap.Error(err))
		}
	case <-waitCtx.Done():
		logger.Warn("Browser close timed out, killing the process.", zap.Duration("timeout", o.cfg.TeardownTimeout))
	}

	tabCancel()
	allocCancel()
	if !closed {
		<-done
	}
	logger.Debug("Browser closed.")
}

// closeOtherPages closes every page target except the one this context drives.
func closeOtherPages(ctx context.Context, logger *zap.Logger) error {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil || c.Browser == nil {
		return nil
	}
	infos, err := target.GetTargets().Do(cdp.WithExecutor(ctx, c.Browser))
	if err != nil {
		return fmt.Errorf("listing targets: %w", err)
	}
	for _, info := range infos {
		if info.Type != "page" || info.TargetID == c.Target.TargetID {
			continue
		}
		if err := target.CloseTarget(info.TargetID).Do(cdp.WithExecutor(ctx, c.Browser)); err != nil {
			logger.Debug("Could not close extra page.", zap.String("url", info.URL), zap.Error(err))
		}
	}
	return nil
}

func grantClipboard(targetURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		origin, err := originOf(targetURL)
		if err != nil {
			return err
		}
		c := chromedp.FromContext(ctx)
		grant := cdpbrowser.GrantPermissions([]cdpbrowser.PermissionType{
			cdpbrowser.PermissionTypeClipboardReadWrite,
			cdpbrowser.PermissionTypeClipboardSanitizedWrite,
		}).WithOrigin(origin)
		if c != nil && c.Browser != nil {
			return grant.Do(cdp.WithExecutor(ctx, c.Browser))
		}
		return grant.Do(ctx)
	})
}

func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing target url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("target url %q has no origin", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
