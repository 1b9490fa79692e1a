// Package influxdb provides optional time-series telemetry for StableCam.
//
// It wraps the official influxdb-client-go v2 library with StableCam-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Camera connect/disconnect transitions (connection_events measurement)
//   - Fleet-level gauges (registered vs connected counts)
//   - Custom measurements via the generic WritePoint helpers
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "stablecam",
//	    Bucket: "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	sink := influxdb.NewSink(client)
//	if err := sink.Attach(bus); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead when cameras flap rapidly.
package influxdb
