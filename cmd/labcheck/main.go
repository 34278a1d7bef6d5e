// LabCheck Core - Lab Occupancy Tracking
//
// This is the main entry point for the LabCheck Core service. It ingests
// sensor events over MQTT, maintains bounded room occupancy in SQLite,
// and pushes room status to displays over WebSocket and retained MQTT
// topics, with optional InfluxDB telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/labcheck/labcheck-core/migrations"

	"github.com/labcheck/labcheck-core/internal/api"
	"github.com/labcheck/labcheck-core/internal/eventlog"
	"github.com/labcheck/labcheck-core/internal/infrastructure/config"
	"github.com/labcheck/labcheck-core/internal/infrastructure/database"
	"github.com/labcheck/labcheck-core/internal/infrastructure/logging"
	"github.com/labcheck/labcheck-core/internal/infrastructure/mqtt"
	"github.com/labcheck/labcheck-core/internal/infrastructure/tsdb"
	"github.com/labcheck/labcheck-core/internal/ingest"
	"github.com/labcheck/labcheck-core/internal/occupancy"
	"github.com/labcheck/labcheck-core/internal/room"
	"github.com/labcheck/labcheck-core/internal/sensor"
	"github.com/labcheck/labcheck-core/internal/status"
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
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting LabCheck Core",
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

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the domain layer on top of the database
	rooms := room.NewRegistry(
		room.NewSQLiteRepository(db.DB),
		cfg.Occupancy.DefaultCapacity,
		room.Orientation(cfg.Occupancy.DefaultOrientation),
	)
	sensors := sensor.NewDirectory(sensor.NewSQLiteRepository(db.DB), rooms)
	events := eventlog.NewSQLiteRepository(db.DB)

	// The default room exists before the first sensor event arrives, so
	// displays polling /status on boot never see a 500.
	defaultRoom, err := rooms.EnsureDefaultRoom(ctx)
	if err != nil {
		return fmt.Errorf("ensuring default room: %w", err)
	}
	log.Info("default room ready", "room_id", defaultRoom.ID, "name", defaultRoom.Name)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
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

	// Connect to InfluxDB (optional)
	var influxClient *tsdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = tsdb.Connect(cfg.InfluxDB)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Shared WebSocket hub: the notifier broadcasts through it, the API
	// server accepts client connections into it.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Status fanout: WebSocket + retained MQTT, plus InfluxDB if enabled.
	var metrics status.MetricWriter
	if influxClient != nil {
		metrics = influxClient
	}
	notifier := status.NewNotifier(rooms, hub, mqttClient, metrics, log)

	// Occupancy engine and MQTT ingest pipeline
	engine := occupancy.New(occupancy.Deps{
		DB:       db.DB,
		Sensors:  sensors,
		Rooms:    room.NewSQLiteRepository(db.DB),
		Events:   events,
		Notifier: notifier,
		Logger:   log,
	})

	consumer := ingest.NewConsumer(engine, log, byte(cfg.MQTT.QoS))
	if err := consumer.Start(ctx, mqttClient); err != nil {
		return fmt.Errorf("starting sensor event consumer: %w", err)
	}
	log.Info("sensor event consumer started")

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Rooms:   rooms,
		Sensors: sensors,
		Events:  events,
		Health: map[string]api.HealthChecker{
			"database": db.HealthCheck,
			"mqtt":     mqttClient.HealthCheck,
		},
		ExternalHub: hub,
		Version:     version,
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

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Publish the boot-time status so displays that connect before the
	// first sensor event still render current state.
	notifier.NotifyRoomChanged(defaultRoom.ID)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("LabCheck Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LABCHECK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LABCHECK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *tsdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
