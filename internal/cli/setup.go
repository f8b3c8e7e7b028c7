package cmd

import (
	"github.com/spf13/cobra"
)

// setup resolves the configuration and wires the pipeline for a subcommand.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := InitConfigWithError()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger), nil
}
