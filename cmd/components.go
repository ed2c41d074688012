package cmd

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/browser"
	"github.com/xkilldash9x/ytbrief/internal/collector"
	"github.com/xkilldash9x/ytbrief/internal/config"
	"github.com/xkilldash9x/ytbrief/internal/network"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
	"github.com/xkilldash9x/ytbrief/internal/pipeline"
	"github.com/xkilldash9x/ytbrief/internal/report"
	"github.com/xkilldash9x/ytbrief/internal/transcript"
)

// newOrchestrator wires the browser session runner for the notebook.
func newOrchestrator(cfg *config.Config, logger *zap.Logger) (*browser.Orchestrator, error) {
	handle, err := cfg.Browser.Credential()
	if err != nil {
		return nil, err
	}
	return browser.NewOrchestrator(cfg.Browser.LaunchConfig(), handle, cfg.Notebook.URL, logger), nil
}

func newCoordinator(cfg *config.Config, logger *zap.Logger) (*notebook.Coordinator, error) {
	orch, err := newOrchestrator(cfg, logger)
	if err != nil {
		return nil, err
	}
	return notebook.NewCoordinator(cfg.Notebook.CoordinatorConfig(), orch, logger)
}

// newPipeline assembles every phase. A coordinator that cannot be built
// leaves the analysis phase disabled rather than failing the run.
func newPipeline(cfg *config.Config, client *http.Client, logger *zap.Logger) (*pipeline.Pipeline, error) {
	if client == nil {
		client = network.NewClient(cfg.Network.ClientConfig(), logger)
	}
	renderer, err := report.New(cfg.Report, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing report renderer: %w", err)
	}

	var analyzer pipeline.Analyzer
	if coord, err := newCoordinator(cfg, logger); err != nil {
		logger.Warn("Notebook analysis disabled.", zap.Error(err))
	} else {
		analyzer = coord
	}

	return pipeline.New(
		collector.New(cfg.Collector, client, logger),
		transcript.New(cfg.Transcript, client, logger),
		analyzer,
		renderer,
		logger,
	)
}
