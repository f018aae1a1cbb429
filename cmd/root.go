// Package cmd defines the CLI commands for the screenshot service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isitchristmas-screenshot",
		Short: "Renders isitchristmas.com through a headless browser",
		Long: `isitchristmas-screenshot fetches isitchristmas.com with headless Chrome,
presents it as a visitor from a chosen country (explicit override or
GeoIP-resolved), and returns a rendered screenshot.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCaptureCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
