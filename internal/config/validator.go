package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks the config for:
//   - Sink credentials (there is no built-in fallback)
//   - Well-formed URLs and a two-letter default country
//   - Known dispatch mode and log level
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Sink.PixelID == "" {
		errs = append(errs, fmt.Sprintf("sink.pixel_id is required (or set %s)", EnvPixelID))
	}
	if cfg.Sink.AccessToken == "" {
		errs = append(errs, fmt.Sprintf("sink.access_token is required (or set %s)", EnvAccessToken))
	}
	if u, err := url.Parse(cfg.Sink.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("sink.base_url %q is not an absolute URL", cfg.Sink.BaseURL))
	}
	if cfg.Sink.TimeoutMs < 0 {
		errs = append(errs, "sink.timeout_ms must not be negative")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", cfg.Server.Port))
	}
	if c := cfg.Translate.DefaultCountry; len(strings.TrimSpace(c)) != 2 {
		errs = append(errs, fmt.Sprintf("translate.default_country %q must be a two-letter code", c))
	}
	switch cfg.Dispatch.Mode {
	case DispatchSync, DispatchAsync:
	default:
		errs = append(errs, fmt.Sprintf("dispatch.mode %q must be %q or %q", cfg.Dispatch.Mode, DispatchSync, DispatchAsync))
	}
	if cfg.Dispatch.Workers < 0 || cfg.Dispatch.QueueDepth < 0 {
		errs = append(errs, "dispatch.workers and dispatch.queue_depth must not be negative")
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ParseLevel maps a log.level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return lvl, nil
}
