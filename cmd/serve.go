package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"isitchristmas-screenshot/internal/config"
	"isitchristmas-screenshot/internal/server"
)

// newServeCmd creates the 'serve' subcommand, which runs the HTTP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the screenshot HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			app, err := server.Build(cfg)
			if err != nil {
				return fmt.Errorf("build application: %w", err)
			}

			if err := app.Run(cmd.Context()); err != nil {
				return fmt.Errorf("run server: %w", err)
			}
			return nil
		},
	}
}
