package main

import (
	"os"

	"github.com/gourdian25/memberjwt"
	"github.com/gourdian25/memberjwt/internal/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "memberjwt",
		Short:         "Member token service",
		Long:          `memberjwt issues HS256 member tokens, renews them on a sliding window and checks them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./memberjwt.yaml or ./config/memberjwt.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("MEMBERJWT_LOG_LEVEL", "INFO"), "log level: DEBUG, INFO, WARN or ERROR")

	cmd.AddCommand(
		newServeCmd(opts),
		newIssueCmd(opts),
		newRenewCmd(opts),
		newCheckCmd(opts),
		newClaimsCmd(opts),
		newHashPasswordCmd(),
	)
	return cmd
}

// service builds a Service from the configured file and environment.
func (o *rootOptions) service(opts ...memberjwt.Option) (*memberjwt.Service, error) {
	cfg, err := memberjwt.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded configuration", "config", cfg.String())
	return memberjwt.NewService(cfg, opts...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
