package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lnkd/lnkd/internal/loadtest"
	"github.com/lnkd/lnkd/pkg/logger"
)

func newLoadTestCmd() *cobra.Command {
	cfg := &loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit random forms to a running service and verify every total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(os.Stderr, logger.FormatText); err != nil {
				return err
			}
			_, err := loadtest.Run(cmd.Context(), cfg)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", loadtest.DefaultBaseURL, "Base URL of the service")
	flags.IntVar(&cfg.Forms, "forms", loadtest.DefaultForms, "Number of forms to submit")
	flags.IntVar(&cfg.Workers, "workers", 0, "Concurrent submitters (default CPU cores * 2)")
	flags.DurationVar(&cfg.Timeout, "timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	flags.DurationVar(&cfg.PollInterval, "poll", loadtest.DefaultPollInterval, "Delay between polls of one calculation")
	flags.StringVar(&cfg.OutputFile, "output", "", "Write every outcome to this JSON file")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Log each mismatch")
	return cmd
}
