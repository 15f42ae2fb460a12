// Indigo Bridge - Indigo to HomeKit accessory bridge
//
// This is the main entry point for the Indigo Bridge daemon. It connects to
// an Indigo home automation server's REST API, discovers devices and action
// groups, and exposes them as accessories to a HomeKit-style framework. An
// inbound HTTP listener accepts push notifications from the Indigo server so
// physical device changes reach controllers without polling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/webdeck/homebridge-indigo/internal/api"
	"github.com/webdeck/homebridge-indigo/internal/bridge"
	"github.com/webdeck/homebridge-indigo/internal/indigo"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Indigo Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Start the Indigo client and its serialized request queue
	client := indigo.New(cfg.Indigo)
	client.SetLogger(log.With("component", "indigo"))
	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("starting indigo client: %w", err)
	}
	defer func() {
		log.Info("closing indigo client")
		client.Close()
	}()
	log.Info("indigo client started",
		"server", cfg.Indigo.BaseURL(),
		"timeout_seconds", cfg.Indigo.RequestTimeout,
	)

	// Discover devices and build the accessory registry
	registry := bridge.NewRegistry(cfg.Bridge, cfg.Indigo.TemperatureUnit, client,
		log.With("component", "bridge"))
	if err := registry.Discover(ctx); err != nil {
		return fmt.Errorf("discovering devices: %w", err)
	}
	log.Info("device discovery complete", "accessories", registry.Count())

	// Start the push listener
	server, err := api.New(api.Deps{
		Config:   cfg.Listener,
		WS:       cfg.WebSocket,
		Logger:   log.With("component", "api"),
		Registry: registry,
		Client:   client,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating push listener: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting push listener: %w", err)
	}
	defer func() {
		log.Info("stopping push listener")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping push listener", "error", closeErr)
		}
	}()

	// Relay mirrored trait updates onto the WebSocket event stream
	registry.SetUpdateFunc(func(id string, trait bridge.Trait, value any) {
		server.Hub().BroadcastTrait(id, string(trait), value)
	})

	// Verify everything came up healthy
	if err := healthCheck(ctx, client, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. Push listener
	// 2. Indigo client

	log.Info("Indigo Bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses INDIGO_BRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INDIGO_BRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the client and listener are running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - client: Indigo client to check
//   - server: Push listener to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, client *indigo.Client, server *api.Server) error {
	if err := client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("indigo: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("listener: %w", err)
	}
	return nil
}
