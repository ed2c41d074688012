package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/observability"
	"github.com/xkilldash9x/ytbrief/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var skipNotebook bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, transcribe, analyze and report the latest uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			p, err := newPipeline(cfg, nil, logger)
			if err != nil {
				return err
			}
			sum, err := p.Run(cmd.Context(), pipeline.Options{
				Hours:        cfg.Collector.HoursLookback,
				SkipNotebook: skipNotebook,
			})
			if err != nil {
				logger.Warn("Briefing run interrupted.", zap.Error(err))
				return err
			}
			return printSummary(cmd.OutOrStdout(), cfg.Report.Title, sum)
		},
	}

	flags := runCmd.Flags()
	flags.Int("hours", 24, "collect videos published within this many hours")
	flags.BoolVar(&skipNotebook, "skip-notebook", false, "skip the NotebookLM analysis phase")
	flags.Bool("show-browser", false, "run Chrome with a visible window")
	flags.String("notebook-url", "", "NotebookLM notebook to analyze in")
	flags.String("output", "", "root directory for report output")
	flags.String("locale", "", "notebook UI locale and prompt language (ko or en)")
	flags.String("exec-path", "", "Chrome or Chromium executable")
	return runCmd
}
