// Package render drives isolated headless-Chrome contexts through the
// navigate / settle / capture pipeline that produces page screenshots.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/locale"
)

// Config controls the behavior of the render engine.
type Config struct {
	TargetURL         string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	MaxParallel       int
	FullPage          bool
	UserAgent         string
	// Settle overrides the default fixed-delay strategy when set.
	Settle SettleStrategy
}

// Engine owns the shared Chrome exec allocator and hands out one isolated
// browser context per render. Contexts are never pooled or reused, so no
// locale, cookie, or cache state leaks between requests.
type Engine struct {
	cfg         Config
	settle      SettleStrategy
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger

	// run executes actions against a browser context. Swappable in tests.
	run func(context.Context, ...chromedp.Action) error
}

// NewEngine creates an Engine backed by chromedp.
func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if cfg.TargetURL == "" {
		return nil, fmt.Errorf("target URL required")
	}
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = 1920
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = 1080
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 25 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	settle := cfg.Settle
	if settle == nil {
		settle = FixedDelay{Delay: cfg.SettleDelay}
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Engine{
		cfg:         cfg,
		settle:      settle,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
		run:         chromedp.Run,
	}, nil
}

// Close cancels the allocator context, tearing down the browser process.
func (e *Engine) Close() {
	e.allocCancel()
}

// Render runs one full session against the configured target URL and
// returns PNG bytes. ctx cancellation (caller disconnect, request timeout)
// aborts the session; the browser context is released either way.
func (e *Engine) Render(ctx context.Context, country geo.CountryCode, profile locale.Profile) ([]byte, error) {
	if err := e.acquire(ctx); err != nil {
		return nil, &Error{Kind: FailureLaunch, Err: err}
	}
	defer e.release()

	session := e.newSession(country, profile)
	defer session.Close()

	if err := session.Launch(ctx); err != nil {
		return nil, err
	}
	if err := session.Navigate(e.cfg.TargetURL); err != nil {
		return nil, err
	}
	if err := session.Settle(); err != nil {
		return nil, err
	}
	return session.Capture()
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	select {
	case e.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("render slot wait canceled: %w", ctx.Err())
	}
}

func (e *Engine) release() {
	if e.limiter == nil {
		return
	}
	<-e.limiter
}
