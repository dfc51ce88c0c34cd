package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/roomutil/internal/asana"
	"github.com/teemow/roomutil/internal/tasks"
)

func newAuthCmd() *cobra.Command {
	opts := reportOptions{interactive: true}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google and cache the token",
		Long: `Run the Google authorization flow and write the token to --token-file,
replacing any cached token. Use --publisher google-tasks to also grant access
to Google Tasks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger, err := newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if _, err := newSession(ctx, opts, true, nil, logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", global.paths.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.publisher, "publisher", asana.PublisherName, fmt.Sprintf("Publisher the token will be used with: %s or %s", asana.PublisherName, tasks.PublisherName))
	cmd.Flags().BoolVar(&opts.allowInsecureOAuth, "allow-insecure-oauth", false, "Allow plain http OAuth endpoints (local emulators only)")

	return cmd
}
