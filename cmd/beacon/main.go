// Beacon Core - Device Event Aggregation Service
//
// This is the main entry point for the Beacon Core application. Beacon
// aggregates telemetry submitted by field devices (contacts, SMS, call
// logs, locations, screenshots, audio recordings), keeps it in an
// in-memory store, and pushes every change to connected observer
// consoles in real time over WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/davenersa/beacon-core/internal/api"
	"github.com/davenersa/beacon-core/internal/bridges/mqttingest"
	"github.com/davenersa/beacon-core/internal/broadcast"
	"github.com/davenersa/beacon-core/internal/gateway"
	"github.com/davenersa/beacon-core/internal/infrastructure/config"
	"github.com/davenersa/beacon-core/internal/infrastructure/influxdb"
	"github.com/davenersa/beacon-core/internal/infrastructure/logging"
	"github.com/davenersa/beacon-core/internal/infrastructure/mqtt"
	"github.com/davenersa/beacon-core/internal/metrics"
	"github.com/davenersa/beacon-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Beacon Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log.Info("configuration loaded", "path", configPath)
	} else {
		cfg, err = config.Default()
		if err != nil {
			return fmt.Errorf("building default config: %w", err)
		}
		log.Info("no config file found, using defaults", "path", configPath)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Core: broadcaster, store, gateway. Everything else hangs off these.
	broadcaster := broadcast.New(cfg.Broadcast.Buffer)
	broadcaster.SetLogger(log)
	defer broadcaster.Close()

	registry := telemetry.NewRegistry()
	store := telemetry.NewStore(registry, broadcaster)
	store.SetLogger(log)

	gw := gateway.New(store, broadcaster)
	gw.SetLogger(log)
	log.Info("telemetry store initialised", "buffer", cfg.Broadcast.Buffer)

	// Connect to MQTT broker (optional ingest path)
	var mqttClient *mqtt.Client
	var bridge *mqttingest.Bridge
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge = mqttingest.New(store, mqttClient, byte(cfg.MQTT.QoS))
		bridge.SetLogger(log)
		if startErr := bridge.Start(); startErr != nil {
			return fmt.Errorf("starting MQTT ingest bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping MQTT ingest bridge")
			if stopErr := bridge.Stop(); stopErr != nil {
				log.Error("error stopping MQTT ingest bridge", "error", stopErr)
			}
		}()
		log.Info("MQTT ingest bridge started", "topic", mqtt.Topics{}.IngestAll())
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional metrics path)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		// The metrics recorder observes the broadcaster like any other
		// subscriber, so a slow InfluxDB can never stall ingestion.
		recorder := metrics.New(broadcaster, influxClient)
		recorder.SetLogger(log)
		recorder.Start(ctx)
		defer func() {
			log.Info("stopping metrics recorder")
			recorder.Stop()
		}()
		log.Info("metrics recorder started")
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the HTTP/WebSocket API server
	server, err := api.New(api.Deps{
		Config:  cfg.Server,
		WS:      cfg.WebSocket,
		Storage: cfg.Storage,
		Logger:  log,
		Store:   store,
		Gateway: gw,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"ws_path", cfg.WebSocket.Path,
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, server, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server (ends observer sessions)
	// 2. Metrics recorder / InfluxDB (if enabled)
	// 3. MQTT ingest bridge / MQTT (if enabled)
	// 4. Broadcaster

	log.Info("Beacon Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BEACON_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BEACON_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient and influxClient may be nil when disabled.
func healthCheck(ctx context.Context, server *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
