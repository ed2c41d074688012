package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/ytbrief/internal/observability"
)

func newLoginCmd() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Open a browser to sign in to NotebookLM and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			orch, err := newOrchestrator(cfg, observability.GetLogger())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sign in to Google in the opened window, open the notebook, then press Enter here.")
			if err := orch.Login(cmd.Context(), waitForEnter(cmd.InOrStdin())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", cfg.Browser.StatePath)
			return nil
		},
	}
	loginCmd.Flags().String("notebook-url", "", "NotebookLM notebook to open")
	loginCmd.Flags().String("exec-path", "", "Chrome or Chromium executable")
	return loginCmd
}

// waitForEnter blocks until a line is read from in or ctx ends.
func waitForEnter(in io.Reader) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		read := make(chan error, 1)
		go func() {
			_, err := bufio.NewReader(in).ReadString('\n')
			if err == io.EOF {
				err = nil
			}
			read <- err
		}()
		select {
		case err := <-read:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
