package notebook

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Asker submits one question to the notebook chat and waits for the answer.
type Asker struct {
	driver
}

func NewAsker(cfg Config, intents Intents, logger *zap.Logger) *Asker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Asker{driver{
		cfg:      cfg,
		intents:  intents,
		resolver: NewResolver(logger),
		logger:   logger.Named("asker"),
	}}
}

// Ask returns the answer text, or nil when the prompt input could not be
// found, the answer did not show up within the polling ceiling, or the
// session failed. Only precondition failures are returned as errors.
func (a *Asker) Ask(ctx context.Context, runner SessionRunner, question string) (*Response, error) {
	var resp *Response
	err := runner.WithSession(ctx, func(ctx context.Context, page Page) error {
		r, err := a.run(ctx, page, question)
		resp = r
		return err
	})
	if err != nil {
		if IsPrecondition(err) {
			return nil, err
		}
		a.logger.Error("Query aborted.", zap.Error(err))
		return nil, nil
	}
	return resp, nil
}

func (a *Asker) run(ctx context.Context, page Page, question string) (*Response, error) {
	start := time.Now()
	if err := a.navigate(ctx, page); err != nil {
		return nil, err
	}

	var missed []string
	ask := func(ctx context.Context, loc Locator) error {
		if err := page.Focus(ctx, loc); err != nil {
			return err
		}
		return page.Fill(ctx, loc, question)
	}
	ok, err := a.step(ctx, page, a.intents.PromptInput, a.cfg.PromptProbeTimeout, ask, &missed)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.logger.Warn("Prompt input unavailable, no question asked.")
		return nil, nil
	}
	if err := page.PressEnter(ctx); err != nil {
		if f := fault(ctx, err); f != nil {
			return nil, f
		}
		a.logger.Warn("Submitting the question failed.", zap.Error(err))
		return nil, nil
	}

	a.logger.Info("Question submitted, waiting for the answer.")
	if err := a.cfg.Sleep(ctx, a.cfg.AnswerWarmup); err != nil {
		return nil, err
	}

	spec := PollSpec{Interval: a.cfg.PollInterval, MaxRounds: a.cfg.PollRounds, Sleep: a.cfg.Sleep}
	res, err := Poll(ctx, spec, func(ctx context.Context, round int) (string, bool, error) {
		return a.readAnswer(ctx, page)
	})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		a.logger.Warn("No answer within the polling window.", zap.Int("rounds", res.Rounds))
		return nil, nil
	}

	a.logger.Info("Answer received.", zap.Int("rounds", res.Rounds), zap.Int("chars", utf8.RuneCountInString(res.Value)))
	return &Response{Text: res.Value, Rounds: res.Rounds, Elapsed: time.Since(start)}, nil
}

// readAnswer checks the response regions once.
func (a *Asker) readAnswer(ctx context.Context, page Page) (string, bool, error) {
	var text string
	accept := func(ctx context.Context, loc Locator) (bool, error) {
		readCtx, cancel := context.WithTimeout(ctx, a.cfg.ResponseProbeTimeout)
		defer cancel()

		t, err := page.InnerText(readCtx, loc)
		if err != nil {
			return false, err
		}
		if utf8.RuneCountInString(strings.TrimSpace(t)) <= a.cfg.MinAnswerChars {
			return false, nil
		}
		text = t
		return true, nil
	}

	res, err := a.resolver.ResolveWhere(ctx, page, a.intents.ResponseRegion, a.cfg.ResponseProbeTimeout, accept)
	if err != nil {
		return "", false, err
	}
	return text, res.Found, nil
}
