// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jeremyhahn/go-seaccess/internal/config"
	"github.com/jeremyhahn/go-seaccess/internal/rest"
	"github.com/jeremyhahn/go-seaccess/pkg/health"
	"github.com/jeremyhahn/go-seaccess/pkg/logging"
	"github.com/jeremyhahn/go-seaccess/pkg/metrics"
	"github.com/jeremyhahn/go-seaccess/pkg/ratelimit"
	"github.com/jeremyhahn/go-seaccess/pkg/registry"
	"github.com/jeremyhahn/go-seaccess/pkg/seaccess"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "/etc/seaccess/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("go-seaccess server\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Git Commit: %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		os.Exit(0)
	}

	// Check for config file override via environment
	if envConfig := os.Getenv("SEACCESS_CONFIG"); envConfig != "" {
		*configPath = envConfig
	}

	slog.Info("Starting seaccess server",
		"config", *configPath,
		"version", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	metrics.SetEnabled(cfg.Metrics.Enabled)
	logger := logging.NewLogger(cfg.DebugLogging())

	reg, err := registry.LoadStatic(cfg.Registry.Path)
	if err != nil {
		slog.Error("Failed to load package registry", slog.Any("error", err))
		os.Exit(1)
	}

	controller, err := seaccess.New(reg, cfg.Policy.Path,
		seaccess.WithLogger(logger),
		seaccess.WithBrokerPackage(cfg.Policy.BrokerPackage))
	if err != nil {
		slog.Error("Failed to create access controller", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker()
	checker.RegisterCheck("policy", func(ctx context.Context) health.CheckResult {
		// A missing or corrupt policy denies everything; surface that as
		// degraded rather than unhealthy so the daemon keeps serving its
		// fail-closed verdicts.
		if controller.WhitelistLen() == 0 {
			return health.CheckResult{
				Name:    "policy",
				Status:  health.StatusDegraded,
				Message: "whitelist is empty, all access denied",
			}
		}
		return health.CheckResult{
			Name:   "policy",
			Status: health.StatusHealthy,
		}
	})

	limiter := ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	})

	srv, err := rest.NewServer(&rest.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Controller:   controller,
		Checker:      checker,
		Logger:       logger,
		Limiter:      limiter,
		Version:      version,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	})
	if err != nil {
		slog.Error("Failed to create server", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownCtx := rest.SetupSignalHandler()

	if err := srv.Start(); err != nil {
		slog.Error("Failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
	checker.MarkStarted()

	<-shutdownCtx.Done()

	if err := srv.Shutdown(); err != nil {
		slog.Error("Error during shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
