package notebook

import (
	"context"

	"go.uber.org/zap"
)

// Injector adds one text document to the notebook as a pasted source.
type Injector struct {
	driver
}

func NewInjector(cfg Config, intents Intents, logger *zap.Logger) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Injector{driver{
		cfg:      cfg,
		intents:  intents,
		resolver: NewResolver(logger),
		logger:   logger.Named("injector"),
	}}
}

// Inject runs the add-source protocol for doc in its own session. The only
// errors returned are preconditions; every other failure is reported through
// the Outcome. A successful Outcome means the motions were performed.
func (in *Injector) Inject(ctx context.Context, runner SessionRunner, doc Document) (Outcome, error) {
	doc, cut := Truncate(doc, in.cfg.MaxDocumentChars, in.cfg.TruncationMarker)
	if cut {
		in.logger.Info("Document truncated.", zap.String("title", doc.Title), zap.Int("max_chars", in.cfg.MaxDocumentChars))
	}

	out := Outcome{Title: doc.Title, Attempted: true}
	err := runner.WithSession(ctx, func(ctx context.Context, page Page) error {
		return in.run(ctx, page, doc, &out)
	})
	if err != nil {
		if IsPrecondition(err) {
			out.Attempted = false
			return out, err
		}
		out.Detail = err.Error()
		in.logger.Error("Source injection aborted.", zap.String("title", doc.Title), zap.Error(err))
		return out, nil
	}

	out.Succeeded = true
	in.logger.Info("Source injected.", zap.String("title", doc.Title), zap.Strings("missed", out.Missed))
	return out, nil
}

func (in *Injector) run(ctx context.Context, page Page, doc Document, out *Outcome) error {
	if err := in.navigate(ctx, page); err != nil {
		return err
	}

	click := func(ctx context.Context, loc Locator) error { return page.Click(ctx, loc) }

	if _, err := in.step(ctx, page, in.intents.AddSource, in.cfg.ProbeTimeout, click, &out.Missed); err != nil {
		return err
	}
	if err := in.cfg.Sleep(ctx, in.cfg.StepDelay); err != nil {
		return err
	}

	if _, err := in.step(ctx, page, in.intents.PasteTextSource, in.cfg.ProbeTimeout, click, &out.Missed); err != nil {
		return err
	}
	if err := in.cfg.Sleep(ctx, in.cfg.StepDelay); err != nil {
		return err
	}

	fillTitle := func(ctx context.Context, loc Locator) error { return page.Fill(ctx, loc, doc.Title) }
	if _, err := in.step(ctx, page, in.intents.SourceName, in.cfg.ProbeTimeout, fillTitle, &out.Missed); err != nil {
		return err
	}

	pasteBody := func(ctx context.Context, loc Locator) error { return in.paste(ctx, page, loc, doc.Body) }
	pasted, err := in.step(ctx, page, in.intents.SourceBody, in.cfg.ProbeTimeout, pasteBody, &out.Missed)
	if err != nil {
		return err
	}
	if pasted {
		if err := in.cfg.Sleep(ctx, in.cfg.PasteDelay); err != nil {
			return err
		}
	}

	if _, err := in.step(ctx, page, in.intents.SubmitSource, in.cfg.ProbeTimeout, click, &out.Missed); err != nil {
		return err
	}
	return in.cfg.Sleep(ctx, in.cfg.SubmitSettle)
}

// paste puts body into the field at loc through the clipboard. When the page
// refuses the clipboard write, the body is committed with a single insertText.
func (in *Injector) paste(ctx context.Context, page Page, loc Locator, body string) error {
	viaClipboard := true
	if err := page.WriteClipboard(ctx, body); err != nil {
		if f := fault(ctx, err); f != nil {
			return f
		}
		in.logger.Debug("Clipboard write refused, inserting text directly.", zap.Error(err))
		viaClipboard = false
	}

	if err := page.Focus(ctx, loc); err != nil {
		return err
	}
	if err := page.SelectAll(ctx); err != nil {
		return err
	}
	if viaClipboard {
		return page.Paste(ctx)
	}
	return page.InsertText(ctx, body)
}
