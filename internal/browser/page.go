package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/notebook"
)

// cdpPage drives one Chrome tab. tabCtx carries the chromedp target; every
// call also honours the caller's context.
type cdpPage struct {
	tabCtx context.Context
	logger *zap.Logger
}

var _ notebook.Page = (*cdpPage)(nil)

func (p *cdpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.tabCtx, ctx)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && p.tabCtx.Err() != nil {
		return fmt.Errorf("%w: %v", notebook.ErrPageClosed, err)
	}
	return err
}

func (p *cdpPage) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("Navigating.", zap.String("url", url))
	return p.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

func (p *cdpPage) Visible(ctx context.Context, loc notebook.Locator) (bool, error) {
	if err := p.run(ctx, chromedp.WaitVisible(loc.XPath(), chromedp.BySearch)); err != nil {
		return false, err
	}
	return true, nil
}

func (p *cdpPage) Click(ctx context.Context, loc notebook.Locator) error {
	return p.run(ctx, chromedp.Click(loc.XPath(), chromedp.BySearch, chromedp.NodeVisible))
}

func (p *cdpPage) Focus(ctx context.Context, loc notebook.Locator) error {
	return p.run(ctx, chromedp.Focus(loc.XPath(), chromedp.BySearch))
}

// Fill focuses the field, selects its content and replaces it with one
// insertText call, which input and contenteditable elements both accept.
func (p *cdpPage) Fill(ctx context.Context, loc notebook.Locator, text string) error {
	return p.run(ctx,
		chromedp.Focus(loc.XPath(), chromedp.BySearch),
		editingCommand("a", "KeyA", 65, "selectAll"),
		input.InsertText(text),
	)
}

func (p *cdpPage) InnerText(ctx context.Context, loc notebook.Locator) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Text(loc.XPath(), &text, chromedp.BySearch)); err != nil {
		return "", err
	}
	return text, nil
}

func (p *cdpPage) WriteClipboard(ctx context.Context, text string) error {
	literal, err := json.Marshal(text)
	if err != nil {
		return err
	}
	expr := "navigator.clipboard.writeText(" + string(literal) + ").then(() => true)"
	var ok bool
	return p.run(ctx, chromedp.Evaluate(expr, &ok, func(e *runtime.EvaluateParams) *runtime.EvaluateParams {
		return e.WithAwaitPromise(true).WithUserGesture(true)
	}))
}

func (p *cdpPage) InsertText(ctx context.Context, text string) error {
	return p.run(ctx, input.InsertText(text))
}

func (p *cdpPage) SelectAll(ctx context.Context) error {
	return p.run(ctx, editingCommand("a", "KeyA", 65, "selectAll"))
}

func (p *cdpPage) Paste(ctx context.Context) error {
	return p.run(ctx, editingCommand("v", "KeyV", 86, "paste"))
}

func (p *cdpPage) PressEnter(ctx context.Context) error {
	return p.run(ctx, chromedp.KeyEvent(kb.Enter))
}

// editingCommand sends Ctrl+key with the matching editor command attached, so
// the shortcut works regardless of the platform's modifier.
func editingCommand(key, code string, vk int64, command string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		down := input.DispatchKeyEvent(input.KeyRawDown).
			WithKey(key).
			WithCode(code).
			WithWindowsVirtualKeyCode(vk).
			WithModifiers(input.ModifierCtrl).
			WithCommands([]string{command})
		if err := down.Do(ctx); err != nil {
			return err
		}
		return input.DispatchKeyEvent(input.KeyUp).
			WithKey(key).
			WithCode(code).
			WithWindowsVirtualKeyCode(vk).
			WithModifiers(input.ModifierCtrl).
			Do(ctx)
	})
}
