// Package server assembles the application's dependencies and runs the
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/api"
	"isitchristmas-screenshot/internal/config"
	"isitchristmas-screenshot/internal/geo"
	"isitchristmas-screenshot/internal/logging"
	"isitchristmas-screenshot/internal/render"
	"isitchristmas-screenshot/internal/screenshot"
)

// App contains the application's long-lived dependencies.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	apiServer *api.Server
	engine    *render.Engine
	geoDB     *geo.MaxMind
}

// Build creates the application from configuration. The GeoIP database is
// optional: when no candidate path exists the service starts with
// geolocation disabled and resolves everything to the default country.
func Build(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application",
		zap.String("target", cfg.Target.URL),
		zap.Int("port", cfg.Server.Port),
	)

	var provider geo.Provider
	if path, ok := geo.FindDatabase(cfg.GeoIP.DBPaths); ok {
		db, err := geo.OpenMaxMind(path)
		if err != nil {
			logger.Warn("geoip database unreadable, geolocation disabled",
				zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("geoip database loaded", zap.String("path", path))
			app.geoDB = db
			provider = db
		}
	} else {
		logger.Warn("geoip database not found, geolocation disabled",
			zap.Strings("candidates", cfg.GeoIP.DBPaths))
	}
	resolver := geo.NewResolver(provider, cfg.DefaultCountry(), logger.Named("geo"))

	app.engine, err = render.NewEngine(render.Config{
		TargetURL:         cfg.Target.URL,
		ViewportWidth:     cfg.Render.ViewportWidth,
		ViewportHeight:    cfg.Render.ViewportHeight,
		NavigationTimeout: cfg.NavigationTimeout(),
		SettleDelay:       cfg.SettleDelay(),
		MaxParallel:       cfg.Render.MaxParallel,
		FullPage:          cfg.Render.FullPage,
		UserAgent:         cfg.Render.UserAgent,
	}, logger.Named("render"))
	if err != nil {
		return nil, fmt.Errorf("render engine init failed: %w", err)
	}

	service := screenshot.NewService(resolver, app.engine, logger.Named("screenshot"))
	app.apiServer = api.NewServer(service, cfg.RequestTimeout(), logger.Named("api"))

	return app, nil
}

// Run starts the HTTP server and blocks until the context is canceled or a
// termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	a.Close()
	return nil
}

// Close releases the browser process and the GeoIP reader.
func (a *App) Close() {
	a.engine.Close()
	if a.geoDB != nil {
		if err := a.geoDB.Close(); err != nil {
			a.logger.Warn("geoip close failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
	// Best effort; stderr may be gone already.
	_ = a.logger.Sync()
}
