// Copyright 2025 Certen Protocol

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certen/ledger-engine/pkg/adapter/native"
	"github.com/certen/ledger-engine/pkg/config"
	"github.com/certen/ledger-engine/pkg/metrics"
	"github.com/certen/ledger-engine/pkg/module"
	"github.com/certen/ledger-engine/pkg/module/oid"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	log.Printf("starting ledger engine, config=%s", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	reg := module.NewRegistry()
	if err := reg.Register("oid", oid.Runtime{}); err != nil {
		log.Fatal("failed to register module: ", err)
	}

	adapter, err := native.Open(cfg, reg)
	if err != nil {
		log.Fatal("failed to open storage backend: ", err)
	}
	defer adapter.Close()

	log.Printf("storage backend ready: kind=%s", cfg.Storage.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var httpServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		httpServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		go func() {
			log.Printf("metrics listening on %s", cfg.Metrics.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("metrics server failed: ", err)
			}
		}()
	}

	<-ctx.Done()
	stop()
	log.Println("shutting down...")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics server shutdown error: %v", err)
		}
	}
}
