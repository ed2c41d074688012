package notebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/api/schemas"
)

// Coordinator injects a batch of documents one session at a time and then
// asks a single question over everything that made it in.
type Coordinator struct {
	cfg      Config
	runner   SessionRunner
	injector *Injector
	asker    *Asker
	logger   *zap.Logger
}

// Option customizes a Coordinator.
type Option func(*coordinatorOptions)

type coordinatorOptions struct {
	intents Intents
}

// WithIntents replaces the default locator catalog.
func WithIntents(intents Intents) Option {
	return func(o *coordinatorOptions) { o.intents = intents }
}

func NewCoordinator(cfg Config, runner SessionRunner, logger *zap.Logger, opts ...Option) (*Coordinator, error) {
	if runner == nil {
		return nil, errors.New("notebook coordinator requires a session runner")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := coordinatorOptions{intents: DefaultIntents()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.intents.Validate(); err != nil {
		return nil, fmt.Errorf("invalid intent catalog: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:      cfg,
		runner:   runner,
		injector: NewInjector(cfg, o.intents, logger),
		asker:    NewAsker(cfg, o.intents, logger),
		logger:   logger.Named("coordinator"),
	}, nil
}

// Run injects docs serially, each in a fresh session, then asks question once
// if at least one injection succeeded. An empty batch launches no session.
// Errors are limited to preconditions and cancellation.
func (c *Coordinator) Run(ctx context.Context, docs []Document, question string) (*BatchResult, error) {
	result := &BatchResult{}
	if len(docs) == 0 {
		c.logger.Info("No documents to inject, skipping notebook.")
		return result, nil
	}

	logger := c.logger.With(zap.String("batch_id", uuid.NewString()))
	logger.Info("Starting notebook batch.", zap.Int("documents", len(docs)))

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		doc, _ = Truncate(doc, c.cfg.MaxDocumentChars, c.cfg.TruncationMarker)

		logger.Info("Injecting document.", zap.Int("index", i+1), zap.Int("total", len(docs)), zap.String("title", doc.Title))
		out, err := c.injector.Inject(ctx, c.runner, doc)
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, out)
		if out.Succeeded {
			result.Succeeded++
		}
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	logger.Info("Injection finished.", zap.Int("succeeded", result.Succeeded), zap.Int("total", len(docs)))
	if result.Succeeded == 0 {
		logger.Warn("No document was injected, skipping the question.")
		return result, nil
	}

	answer, err := c.asker.Ask(ctx, c.runner, question)
	if err != nil {
		return result, err
	}
	if answer == nil {
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	result.Answer = answer
	return result, nil
}

// UploadAndAnalyze injects every video transcript titled "[channel] title"
// and asks the briefing prompt for the configured locale.
func (c *Coordinator) UploadAndAnalyze(ctx context.Context, videos []schemas.Video) (*Response, error) {
	result, err := c.Run(ctx, DocumentsFromVideos(videos), BriefingPrompt(c.cfg.Locale))
	if err != nil {
		return nil, err
	}
	return result.Answer, nil
}

// Ask runs a single query cycle. An empty question asks what the notebook contains.
func (c *Coordinator) Ask(ctx context.Context, question string) (*Response, error) {
	if question == "" {
		question = DefaultQuestion(c.cfg.Locale)
	}
	return c.asker.Ask(ctx, c.runner, question)
}
