package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/config"
	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/locale"
	"isitchristmas-screenshot/internal/logging"
	"isitchristmas-screenshot/internal/render"
)

// newCaptureCmd creates the 'capture' subcommand: a one-shot render to a
// local file, bypassing the HTTP surface. Useful for smoke-testing a
// deployment's Chrome install and for grabbing a country's view by hand.
func newCaptureCmd() *cobra.Command {
	var (
		country string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Captures a single screenshot to a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}

			cc := cfg.DefaultCountry()
			if country != "" {
				cc, err = geo.ParseCountry(country)
				if err != nil {
					return fmt.Errorf("invalid --country: %w", err)
				}
			}

			engine, err := render.NewEngine(render.Config{
				TargetURL:         cfg.Target.URL,
				ViewportWidth:     cfg.Render.ViewportWidth,
				ViewportHeight:    cfg.Render.ViewportHeight,
				NavigationTimeout: cfg.NavigationTimeout(),
				SettleDelay:       cfg.SettleDelay(),
				FullPage:          cfg.Render.FullPage,
				UserAgent:         cfg.Render.UserAgent,
			}, logger.Named("render"))
			if err != nil {
				return fmt.Errorf("render engine init: %w", err)
			}
			defer engine.Close()

			logger.Info("capturing", zap.String("country", cc.String()), zap.String("out", outPath))
			image, err := engine.Render(cmd.Context(), cc, locale.Build(cc))
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if err := os.WriteFile(outPath, image, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			logger.Info("screenshot written", zap.String("path", outPath), zap.Int("bytes", len(image)))
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "two-letter country code (default: configured default)")
	cmd.Flags().StringVar(&outPath, "out", "screenshot.png", "output file path")

	return cmd
}
