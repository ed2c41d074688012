package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/internal/observability"
)

// ErrNoAnswer is returned when the notebook produced nothing in time.
var ErrNoAnswer = errors.New("the notebook did not answer in time")

func newAskCmd() *cobra.Command {
	var raw bool

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the notebook one question and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			coord, err := newCoordinator(cfg, logger)
			if err != nil {
				return err
			}
			resp, err := coord.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if resp == nil {
				return ErrNoAnswer
			}
			logger.Debug("Answer received.", zap.Int("rounds", resp.Rounds), zap.Duration("elapsed", resp.Elapsed))
			return printAnswer(cmd, resp.Text, raw)
		},
	}
	askCmd.Flags().BoolVar(&raw, "raw", false, "print the answer without terminal rendering")
	askCmd.Flags().Bool("show-browser", false, "run Chrome with a visible window")
	askCmd.Flags().String("notebook-url", "", "NotebookLM notebook to ask")
	askCmd.Flags().String("locale", "", "notebook UI locale and prompt language (ko or en)")
	askCmd.Flags().String("exec-path", "", "Chrome or Chromium executable")
	return askCmd
}

// printAnswer renders the answer as terminal Markdown unless raw is set or
// rendering fails.
func printAnswer(cmd *cobra.Command, text string, raw bool) error {
	out := cmd.OutOrStdout()
	if !raw {
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if rendered, err := renderer.Render(text); err == nil {
				_, err = fmt.Fprint(out, rendered)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
