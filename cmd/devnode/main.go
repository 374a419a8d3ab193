package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ledgergate/internal/devnode"
	"ledgergate/internal/platform/httpserver"
	"ledgergate/internal/platform/logger"
)

// main runs a local ledger node for development and end-to-end tests.
func main() {
	log := logger.New(getEnv("LOG_LEVEL", "info"))

	cfgPath := getEnv("DEVNODE_CONFIG", "configs/devnode.yaml")
	cfg, err := devnode.LoadConfig(cfgPath)
	if err != nil {
		log.Error("failed to load devnode config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	node, err := devnode.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start devnode", "error", err)
		os.Exit(1)
	}
	defer node.Close() //nolint:errcheck // process is exiting

	log.Info("initializing devnode",
		"node", cfg.Self.String(),
		"peers", len(cfg.Peers),
		"vault", cfg.VaultDSN,
	)

	srv := httpserver.New(getEnv("DEVNODE_ADDR", ":10006"), node.Handler())
	if err := httpserver.Run(ctx, srv, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
