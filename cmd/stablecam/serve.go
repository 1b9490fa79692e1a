package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/stablecam/stablecam/migrations"

	"github.com/stablecam/stablecam/internal/api"
	"github.com/stablecam/stablecam/internal/history"
	"github.com/stablecam/stablecam/internal/infrastructure/database"
	"github.com/stablecam/stablecam/internal/infrastructure/influxdb"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/infrastructure/mqtt"
	"github.com/stablecam/stablecam/internal/monitor"
)

const (
	// prunePeriod is how often expired history rows are removed.
	prunePeriod = 12 * time.Hour

	// fleetGaugePeriod is how often fleet counts are written to InfluxDB.
	fleetGaugePeriod = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring daemon",
	Long: `Serve runs the reconciliation loop as a long-lived daemon with the
optional sinks configured in config.yaml: connection history (SQLite),
the MQTT event bridge, InfluxDB telemetry and the diagnostic HTTP API.

The daemon shuts down cleanly on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error { //nolint:gocognit // Daemon wiring: each optional sink adds a block
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting stablecam",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	mgr, bus, err := newManager(cfg, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Connection history (optional)
	var historyStore *history.Store
	if cfg.History.Enabled {
		historyPath := cfg.History.Path
		if historyPath == "" {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return fmt.Errorf("resolving history path: %w", homeErr)
			}
			historyPath = filepath.Join(home, ".stablecam", "history.db")
		}

		db, dbErr := database.Open(database.Config{
			Path:        historyPath,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening history database: %w", dbErr)
		}
		defer func() {
			log.Info("closing history database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing history database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running history migrations: %w", migrateErr)
		}

		historyStore = history.NewStore(db)
		recorder := history.NewRecorder(historyStore)
		recorder.SetLogger(log)
		if attachErr := recorder.Attach(bus); attachErr != nil {
			return fmt.Errorf("attaching history recorder: %w", attachErr)
		}
		defer recorder.Detach(bus)
		log.Info("history recording enabled", "path", historyPath)

		if cfg.History.RetentionDays > 0 {
			retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			g.Go(func() error {
				return pruneLoop(gctx, log, historyStore, retention)
			})
		}
	}

	// MQTT event bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
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

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge := mqtt.NewBridge(mqttClient, byte(cfg.MQTT.QoS))
		bridge.SetLogger(log)
		if attachErr := bridge.Attach(bus); attachErr != nil {
			return fmt.Errorf("attaching MQTT bridge: %w", attachErr)
		}
		defer bridge.Detach(bus)
	}

	// InfluxDB telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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

		sink := influxdb.NewSink(influxClient)
		if attachErr := sink.Attach(bus); attachErr != nil {
			return fmt.Errorf("attaching InfluxDB sink: %w", attachErr)
		}
		defer sink.Detach(bus)

		g.Go(func() error {
			return fleetGaugeLoop(gctx, log, mgr, influxClient)
		})
	}

	// Diagnostic HTTP API (optional)
	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log,
			Monitor: mgr,
			Bus:     bus,
			History: historyStore,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	// Reconciliation loop
	if err := mgr.Run(ctx); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer func() {
		if stopErr := mgr.Stop(); stopErr != nil && !errors.Is(stopErr, monitor.ErrNotRunning) {
			log.Error("error stopping monitor", "error", stopErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	if waitErr := g.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		log.Error("background task failed", "error", waitErr)
	}

	log.Info("stablecam stopped")
	return nil
}

// pruneLoop removes expired history rows on a fixed period.
func pruneLoop(ctx context.Context, log *logging.Logger, store *history.Store, retention time.Duration) error {
	ticker := time.NewTicker(prunePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := store.Prune(ctx, retention)
			if err != nil {
				log.Error("history prune failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("history pruned", "removed", removed)
			}
		}
	}
}

// fleetGaugeLoop periodically writes registry-wide counts to InfluxDB.
func fleetGaugeLoop(ctx context.Context, log *logging.Logger, mgr *monitor.Manager, client *influxdb.Client) error {
	ticker := time.NewTicker(fleetGaugePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			devices, err := mgr.List()
			if err != nil {
				log.Error("fleet gauge read failed", "error", err)
				continue
			}
			connected := 0
			for _, d := range devices {
				if d.IsConnected() {
					connected++
				}
			}
			client.WriteFleetGauge(len(devices), connected)
		}
	}
}
