// Command agentdeckd runs the agentdeck demo HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentdeck/agentdeck"
	"github.com/agentdeck/agentdeck/config"
	"github.com/agentdeck/agentdeck/logging"
	"github.com/agentdeck/agentdeck/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewSlogLogger(logging.LogLevelError, "text").Error("config load failed", "error", err.Error())
		os.Exit(1)
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	deck := agentdeck.New(cfg, func(o *agentdeck.Options) {
		o.Logger = logger
	})

	// Best effort; a missing API key degrades to per-request errors instead
	// of refusing to start.
	if err := deck.Init(); err != nil {
		logger.Warn("agent registry not initialized", "error", err.Error())
	} else {
		logger.Info("agent registry initialized", "agents", deck.Registry().Names())
	}

	srv := server.New(deck, func(o *server.Options) {
		o.Logger = logger
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.Addr, "api_configured", deck.APIConfigured())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("server stopped")
}
