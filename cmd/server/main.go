package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"ledgergate/internal/gateway"
	"ledgergate/internal/platform/config"
	"ledgergate/internal/platform/httpserver"
	"ledgergate/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing ledgergate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"node_url", cfg.Node.URL,
		"page_size", cfg.Demo.PageSize,
	)

	// Exporters attach to this provider through span processors.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Node.Timeout+5*time.Second)
	gw, err := gateway.New(connectCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to connect to ledger node", "error", err)
		os.Exit(1)
	}

	if err := httpserver.Run(ctx, httpserver.New(cfg.Addr, gw.Handler), log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
