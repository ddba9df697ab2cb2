// Owlskill is a voice skill backend that lets a user add, list, check and
// remove items on a KitchenOwl shopping list by speaking to a voice assistant.
//
// Usage:
//
//	owlskill [flags]
//	owlskill --config /path/to/owlskill.yaml
//
// @title       owlskill API
// @version     1.0
// @description Voice skill backend for a KitchenOwl shopping list.
// @BasePath    /
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nadzzz/owlskill/internal/config"
	"github.com/nadzzz/owlskill/internal/health"
	"github.com/nadzzz/owlskill/internal/kitchenowl"
	"github.com/nadzzz/owlskill/internal/locale"
	"github.com/nadzzz/owlskill/internal/skill"
	"github.com/nadzzz/owlskill/internal/transport"
	grpctransport "github.com/nadzzz/owlskill/internal/transport/grpc"
	httptransport "github.com/nadzzz/owlskill/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/owlskill.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("owlskill %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("owlskill starting", "version", version)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := locale.Load(cfg.Skill.DefaultLocale, cfg.Skill.LocalesDir)
	if err != nil {
		slog.Error("failed to load locales", "error", err)
		os.Exit(1)
	}
	slog.Info("locales loaded", "locales", catalog.Locales(), "default", cfg.Skill.DefaultLocale)

	lists := kitchenowl.New(cfg.KitchenOwl)
	slog.Info("using KitchenOwl",
		"api_url", cfg.KitchenOwl.APIURL,
		"household_id", cfg.KitchenOwl.HouseholdID,
		"breaker", cfg.KitchenOwl.Breaker.Enabled)

	sk := skill.New(lists, catalog)

	// Initialize enabled transports.
	verifier := skill.Verifier{
		ApplicationID: cfg.Skill.ApplicationID,
		Tolerance:     cfg.Skill.TimestampTolerance,
	}
	if verifier.ApplicationID == "" {
		slog.Warn("skill.application_id not set, requests from any skill are accepted")
	}

	var transports []transport.Transport
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC, verifier))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, verifier))
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort,
		health.Check{Name: "kitchenowl", Healthy: lists.Healthy})
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, sk.Invoke); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("owlskill ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("owlskill stopped")
}
