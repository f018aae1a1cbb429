// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"isitchristmas-screenshot/internal/geo"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Target  TargetConfig  `mapstructure:"target"`
	Render  RenderConfig  `mapstructure:"render"`
	GeoIP   GeoIPConfig   `mapstructure:"geoip"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_seconds"`
}

// TargetConfig identifies the single page this service renders.
type TargetConfig struct {
	URL string `mapstructure:"url"`
}

// RenderConfig configures the headless rendering subsystem.
type RenderConfig struct {
	ViewportWidth  int    `mapstructure:"viewport_width"`
	ViewportHeight int    `mapstructure:"viewport_height"`
	NavTimeoutSec  int    `mapstructure:"nav_timeout_seconds"`
	SettleDelayMs  int    `mapstructure:"settle_delay_ms"`
	MaxParallel    int    `mapstructure:"max_parallel"`
	FullPage       bool   `mapstructure:"full_page"`
	UserAgent      string `mapstructure:"user_agent"`
}

// GeoIPConfig locates the country database and the fallback country.
type GeoIPConfig struct {
	DBPaths        []string `mapstructure:"db_paths"`
	DefaultCountry string   `mapstructure:"default_country"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCREENSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout_seconds", 90)
	v.SetDefault("target.url", "https://isitchristmas.com")
	v.SetDefault("render.viewport_width", 1920)
	v.SetDefault("render.viewport_height", 1080)
	v.SetDefault("render.nav_timeout_seconds", 25)
	v.SetDefault("render.settle_delay_ms", 2000)
	v.SetDefault("render.max_parallel", 2)
	v.SetDefault("render.full_page", false)
	v.SetDefault("geoip.db_paths", []string{
		"GeoLite2-Country.mmdb",
		"/usr/share/GeoIP/GeoLite2-Country.mmdb",
		"/var/lib/GeoIP/GeoLite2-Country.mmdb",
	})
	v.SetDefault("geoip.default_country", "GB")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Target.URL == "" {
		return fmt.Errorf("target.url must be set")
	}
	if c.Render.ViewportWidth <= 0 || c.Render.ViewportHeight <= 0 {
		return fmt.Errorf("render viewport dimensions must be > 0")
	}
	if c.Render.NavTimeoutSec <= 0 {
		return fmt.Errorf("render.nav_timeout_seconds must be > 0")
	}
	if c.Render.SettleDelayMs < 0 {
		return fmt.Errorf("render.settle_delay_ms must be >= 0")
	}
	if c.Render.MaxParallel < 0 {
		return fmt.Errorf("render.max_parallel must be >= 0")
	}
	if _, err := geo.ParseCountry(c.GeoIP.DefaultCountry); err != nil {
		return fmt.Errorf("geoip.default_country: %w", err)
	}
	return nil
}

// DefaultCountry returns the validated default country code.
func (c Config) DefaultCountry() geo.CountryCode {
	cc, err := geo.ParseCountry(c.GeoIP.DefaultCountry)
	if err != nil {
		return geo.CountryCode("GB")
	}
	return cc
}

// NavigationTimeout converts the navigation bound to a duration.
func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Render.NavTimeoutSec) * time.Second
}

// SettleDelay converts the settle wait to a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Render.SettleDelayMs) * time.Millisecond
}

// RequestTimeout converts the whole-request bound to a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}
