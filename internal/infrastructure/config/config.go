package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for StableCam.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	History   HistoryConfig   `yaml:"history"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RegistryConfig contains registry store settings.
type RegistryConfig struct {
	// Path is the registry JSON file location.
	// Empty selects ~/.stablecam/registry.json.
	Path string `yaml:"path"`
}

// MonitorConfig contains reconciliation loop settings.
type MonitorConfig struct {
	// PollIntervalMS is the reconciliation period in milliseconds.
	// Zero selects the default; values below the minimum are clamped.
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// HistoryConfig contains connection-event history settings.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file location.
	// Empty selects ~/.stablecam/history.db.
	Path string `yaml:"path"`

	// RetentionDays bounds how long events are kept. Zero disables pruning.
	RetentionDays int `yaml:"retention_days"`

	WALMode     bool `yaml:"wal_mode"`
	BusyTimeout int  `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT event bridge settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains the diagnostic HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`

	// JWTSecret enables HS256 bearer authentication when non-empty.
	// An empty secret leaves the API unauthenticated (local diagnostics).
	JWTSecret string `yaml:"jwt_secret"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains the websocket event stream settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains status telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: STABLECAM_SECTION_KEY
// For example: STABLECAM_REGISTRY_PATH, STABLECAM_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is present:
// defaults plus environment overrides. CLI one-shot commands use this so
// they work without any setup.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollIntervalMS: 2000,
		},
		History: HistoryConfig{
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "stablecam",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8875,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: STABLECAM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STABLECAM_REGISTRY_PATH"); v != "" {
		cfg.Registry.Path = v
	}

	if v := os.Getenv("STABLECAM_MONITOR_POLL_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.PollIntervalMS = ms
		}
	}

	if v := os.Getenv("STABLECAM_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	if v := os.Getenv("STABLECAM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("STABLECAM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("STABLECAM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("STABLECAM_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("STABLECAM_API_JWT_SECRET"); v != "" {
		cfg.API.JWTSecret = v
	}

	if v := os.Getenv("STABLECAM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Monitor.PollIntervalMS < 0 {
		errs = append(errs, "monitor.poll_interval_ms must not be negative")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}
		// A short HS256 secret is worse than no auth: it suggests
		// protection while being trivially brute-forced.
		const minJWTSecretLength = 32
		if c.API.JWTSecret != "" && len(c.API.JWTSecret) < minJWTSecretLength {
			errs = append(errs, "api.jwt_secret must be at least 32 characters")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set STABLECAM_INFLUXDB_TOKEN)")
		}
	}

	if c.History.Enabled && c.History.RetentionDays < 0 {
		errs = append(errs, "history.retention_days must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollInterval returns the monitor poll interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Monitor.PollIntervalMS) * time.Millisecond
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
