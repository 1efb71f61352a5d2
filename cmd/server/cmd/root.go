package cmd

import (
	"fmt"
	"os"

	"anoa.com/campushub/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCommand(opts)
	root := &cobra.Command{
		Use:   "campushub",
		Short: "CampusHub server - campus events and course resources",
		Long: `CampusHub serves the campus events ledger and the course resource
repository: session-gated HTML pages for signed-in students and a public
JSON API under /api.

Configuration is read from environment variables (and .env when present).`,
		SilenceUsage: true,
		// serve is the default command
		RunE: serve.RunE,
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(opts))
	root.AddCommand(newSeedCommand(opts))
	return root
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}
