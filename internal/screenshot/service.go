// Package screenshot orchestrates the locale-aware rendering pipeline:
// resolve a country, build its presentation profile, and run one render.
package screenshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/locale"
	"isitchristmas-screenshot/internal/render"
	"isitchristmas-screenshot/internal/telemetry"
)

// ContentType is the fixed content type of every successful capture.
const ContentType = "image/png"

// Renderer produces image bytes for a country and its profile.
type Renderer interface {
	Render(ctx context.Context, country geo.CountryCode, profile locale.Profile) ([]byte, error)
}

// Request describes one incoming screenshot call. Country is geo.Unknown
// when no valid explicit override was supplied.
type Request struct {
	RemoteIP string
	Country  geo.CountryCode
}

// Result is a successful render.
type Result struct {
	Image       []byte
	ContentType string
	Country     geo.CountryCode
}

// Service runs the pipeline per request. It never retries; callers decide
// retry policy.
type Service struct {
	resolver *geo.Resolver
	renderer Renderer
	logger   *zap.Logger
}

// NewService wires the pipeline together.
func NewService(resolver *geo.Resolver, renderer Renderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{resolver: resolver, renderer: renderer, logger: logger}
}

// Render resolves the effective country and captures one screenshot.
// Locale-resolution ambiguity is absorbed here via the default country so
// a render is always attempted; only render failures propagate, tagged
// with a render.FailureKind.
func (s *Service) Render(ctx context.Context, req Request) (Result, error) {
	country := s.resolver.Resolve(req.RemoteIP, req.Country)
	if country == geo.Unknown {
		country = s.resolver.Default()
	}
	profile := locale.Build(country)

	s.logger.Info("rendering screenshot",
		zap.String("country", country.String()),
		zap.String("locale", profile.Locale),
		zap.String("timezone", profile.Timezone),
		zap.Bool("explicit", req.Country != geo.Unknown),
	)

	telemetry.IncActiveRenders()
	start := time.Now()
	image, err := s.renderer.Render(ctx, country, profile)
	duration := time.Since(start)
	telemetry.DecActiveRenders()

	if err != nil {
		outcome := string(render.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		telemetry.ObserveRender(country.String(), outcome, duration)
		s.logger.Warn("render failed",
			zap.String("country", country.String()),
			zap.String("outcome", outcome),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return Result{}, fmt.Errorf("render %s: %w", country, err)
	}

	telemetry.ObserveRender(country.String(), "success", duration)
	s.logger.Info("render complete",
		zap.String("country", country.String()),
		zap.Int("bytes", len(image)),
		zap.Duration("duration", duration),
	)
	return Result{Image: image, ContentType: ContentType, Country: country}, nil
}
