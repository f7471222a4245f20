package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/capibridge/internal/api"
	"github.com/gyaneshwarpardhi/capibridge/internal/capi"
	"github.com/gyaneshwarpardhi/capibridge/internal/config"
	"github.com/gyaneshwarpardhi/capibridge/internal/engine"
	"github.com/gyaneshwarpardhi/capibridge/internal/translator"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional; env overrides apply)")
	flag.Parse()

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	// ── Pipeline ──────────────────────────────────────────────────────────────
	p := buildPipeline(cfg)
	slog.Info("pipeline built",
		"pixel_id", cfg.Sink.PixelID,
		"api_version", cfg.Sink.APIVersion,
		"event_types", p.Translator.Registry().Types(),
		"access_token", cfg.Sink.AccessToken,
		"dispatch_mode", cfg.Dispatch.Mode,
	)

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, p, cfg.Dispatch)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		eng.Swap(buildPipeline(newCfg))
		slog.Info("pipeline hot-reloaded", "api_version", newCfg.Sink.APIVersion)
	})
	if *cfgPath != "" {
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(eng, cfg.Service.Name),
		ReadTimeout:  ms(cfg.Server.ReadTimeoutMs),
		WriteTimeout: ms(cfg.Server.WriteTimeoutMs),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", addr, "service", cfg.Service.Name)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), ms(cfg.Server.ShutdownTimeoutMs))
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	eng.Shutdown() // flush queued fan-outs before stopping workers
	cancel()
	slog.Info("goodbye")
}

func buildPipeline(cfg *config.Config) *engine.Pipeline {
	client := capi.NewClient(capi.Options{
		BaseURL:     cfg.Sink.BaseURL,
		APIVersion:  cfg.Sink.APIVersion,
		PixelID:     cfg.Sink.PixelID,
		AccessToken: cfg.Sink.AccessToken.Value(),
		Timeout:     ms(cfg.Sink.TimeoutMs),
	})
	slog.Debug("sink client ready", "endpoint", client.Endpoint())
	return &engine.Pipeline{
		Translator: translator.New(translator.Settings{
			EventSourceURL:  cfg.Translate.EventSourceURL,
			ActionSource:    cfg.Translate.ActionSource,
			DefaultCurrency: cfg.Translate.DefaultCurrency,
			DefaultCountry:  cfg.Translate.DefaultCountry,
		}, nil),
		Sender: client,
	}
}

func newLogger(c config.LogConf) *slog.Logger {
	lvl, _ := config.ParseLevel(c.Level) // validated above
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
