// Package pipeline runs the daily briefing end to end: collect, extract,
// analyze, report.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
	"github.com/xkilldash9x/ytbrief/internal/report"
)

// Collector lists recent videos.
type Collector interface {
	Collect(ctx context.Context, hours int) ([]schemas.Video, error)
}

// Extractor attaches transcripts, returning only videos that got one.
type Extractor interface {
	ExtractAll(ctx context.Context, videos []schemas.Video) ([]schemas.Video, error)
}

// Analyzer injects transcripts into the notebook and asks for the briefing.
type Analyzer interface {
	UploadAndAnalyze(ctx context.Context, videos []schemas.Video) (*notebook.Response, error)
}

// Reporter renders the report artifacts.
type Reporter interface {
	Dir() string
	Markdown(videos []schemas.Video, analysis string) (string, error)
	Infographic(videos []schemas.Video, analysis string) (string, error)
	ImagePrompt(videos []schemas.Video, analysis string) (report.ImagePrompt, string, error)
}

// Options select per-run behavior.
type Options struct {
	Hours        int
	SkipNotebook bool
}

// Summary describes a finished run.
type Summary struct {
	RunID           string
	Collected       int
	Transcribed     int
	Analyzed        bool
	AnalysisChars   int
	OutputDir       string
	ReportPath      string
	InfographicPath string
	PromptPath      string
	ImageName       string
	Elapsed         time.Duration
}

// Pipeline wires the phases together. The Analyzer may be nil, in which
// case the analysis phase is skipped.
type Pipeline struct {
	collector Collector
	extractor Extractor
	analyzer  Analyzer
	reporter  Reporter
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Pipeline.
func New(c Collector, e Extractor, a Analyzer, r Reporter, logger *zap.Logger) (*Pipeline, error) {
	if c == nil || e == nil || r == nil {
		return nil, errors.New("pipeline requires a collector, an extractor and a reporter")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		collector: c,
		extractor: e,
		analyzer:  a,
		reporter:  r,
		logger:    logger.Named("pipeline"),
		now:       time.Now,
	}, nil
}

// Run executes all four phases. A failing phase is logged and the run
// continues with what it has; only cancellation of ctx ends it early.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := p.now()
	sum := &Summary{RunID: uuid.NewString(), OutputDir: p.reporter.Dir()}
	log := p.logger.With(zap.String("run_id", sum.RunID))
	finish := func() { sum.Elapsed = p.now().Sub(start) }
	defer finish()

	log.Info("Briefing run started.", zap.Int("hours", opts.Hours), zap.Bool("skip_notebook", opts.SkipNotebook))

	// Phase 1: collect.
	videos, err := p.collector.Collect(ctx, opts.Hours)
	if err != nil {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		log.Error("Collection failed, continuing with no videos.", zap.Error(err))
		videos = nil
	}
	sum.Collected = len(videos)

	if len(videos) == 0 {
		log.Warn("No videos collected; writing an empty report. Try a wider --hours window.")
		if path, err := p.reporter.Markdown(nil, ""); err != nil {
			log.Error("Empty report failed.", zap.Error(err))
		} else {
			sum.ReportPath = path
		}
		return sum, nil
	}

	// Phase 2: transcripts.
	withTranscripts, err := p.extractor.ExtractAll(ctx, videos)
	if err != nil {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		log.Error("Transcript extraction failed, continuing without transcripts.", zap.Error(err))
		withTranscripts = videos
	}
	sum.Transcribed = countTranscripts(withTranscripts)

	// Phase 3: notebook analysis.
	var analysis string
	switch {
	case opts.SkipNotebook:
		log.Info("Notebook analysis skipped by request.")
	case p.analyzer == nil:
		log.Warn("Notebook analysis unavailable; skipping.")
	case sum.Transcribed == 0:
		log.Info("No transcripts to analyze; skipping notebook.")
	default:
		resp, err := p.analyzer.UploadAndAnalyze(ctx, withTranscripts)
		switch {
		case ctx.Err() != nil:
			return sum, ctx.Err()
		case err != nil:
			var pre *notebook.PreconditionError
			if errors.As(err, &pre) {
				log.Error("Notebook analysis could not start.", zap.Error(pre.Err), zap.String("hint", pre.Hint))
			} else {
				log.Error("Notebook analysis failed, continuing.", zap.Error(err))
			}
		case resp == nil:
			log.Warn("Notebook returned no answer.")
		default:
			analysis = resp.Text
			sum.Analyzed = true
			sum.AnalysisChars = len([]rune(analysis))
		}
	}

	// Phase 4: reports. Each artifact is attempted independently.
	if path, err := p.reporter.Markdown(withTranscripts, analysis); err != nil {
		log.Error("Markdown report failed.", zap.Error(err))
	} else {
		sum.ReportPath = path
	}
	if path, err := p.reporter.Infographic(withTranscripts, analysis); err != nil {
		log.Error("Infographic failed.", zap.Error(err))
	} else {
		sum.InfographicPath = path
	}
	if prompt, path, err := p.reporter.ImagePrompt(withTranscripts, analysis); err != nil {
		log.Error("Image prompt failed.", zap.Error(err))
	} else {
		sum.PromptPath = path
		sum.ImageName = prompt.ImageName
	}

	finish()
	log.Info("Briefing run finished.",
		zap.Int("collected", sum.Collected),
		zap.Int("transcribed", sum.Transcribed),
		zap.Bool("analyzed", sum.Analyzed),
		zap.Duration("elapsed", sum.Elapsed))
	return sum, nil
}

func countTranscripts(videos []schemas.Video) int {
	n := 0
	for _, v := range videos {
		if v.HasTranscript() {
			n++
		}
	}
	return n
}
