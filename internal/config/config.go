// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

// Package config provides layered configuration loading for SentinelShield
// using koanf v2: built-in defaults, then an optional YAML file, then
// environment variables, with ENV > file > defaults precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server process.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Feedback FeedbackConfig `koanf:"feedback"`
	NATS     NATSConfig     `koanf:"nats"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// SecurityConfig holds authentication settings. Token issuance happens in
// the external auth service; this process only verifies tokens.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AdminRole      string        `koanf:"admin_role"`
}

// RealtimeConfig holds WebSocket connection and delivery settings.
type RealtimeConfig struct {
	// HeartbeatInterval is how often each connection receives an
	// application-level heartbeat envelope.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// QueueCapacity bounds the per-(org,user) offline outbox.
	QueueCapacity int `koanf:"queue_capacity"`

	// SendBuffer is the per-connection outbound channel size. A full
	// buffer counts as a send failure and reaps the connection.
	SendBuffer int `koanf:"send_buffer"`

	WriteWait        time.Duration `koanf:"write_wait"`
	PongWait         time.Duration `koanf:"pong_wait"`
	MaxMessageSize   int64         `koanf:"max_message_size"`
	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
}

// FeedbackConfig holds analyst-feedback and retraining settings.
type FeedbackConfig struct {
	// RetrainThreshold is the unprocessed-feedback count that gates
	// retraining.
	RetrainThreshold int `koanf:"retrain_threshold"`

	// StorePath is the badger directory for durable feedback and job
	// records. Empty disables persistence (in-memory only, used in tests).
	StorePath string `koanf:"store_path"`

	// CheckInterval is how often the scheduler consults the buffer.
	CheckInterval time.Duration `koanf:"check_interval"`

	// TrainerURL is the external training worker's webhook. Empty
	// disables job dispatch.
	TrainerURL string `koanf:"trainer_url"`

	TrainerTimeout time.Duration `koanf:"trainer_timeout"`
}

// NATSConfig holds detection-pipeline ingest settings.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	StoreDir       string        `koanf:"store_dir"`
	ThreatSubject  string        `koanf:"threat_subject"`
	StreamName     string        `koanf:"stream_name"`
	QueueGroup     string        `koanf:"queue_group"`
	DurableName    string        `koanf:"durable_name"`
	AckWaitTimeout time.Duration `koanf:"ack_wait_timeout"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8443,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:      "",
			SessionTimeout: 24 * time.Hour,
			AdminRole:      "admin",
		},
		Realtime: RealtimeConfig{
			HeartbeatInterval: 30 * time.Second,
			QueueCapacity:     1000,
			SendBuffer:        256,
			WriteWait:         10 * time.Second,
			PongWait:          60 * time.Second,
			MaxMessageSize:    512 * 1024,
			HandshakeTimeout:  10 * time.Second,
		},
		Feedback: FeedbackConfig{
			RetrainThreshold: 100,
			StorePath:        "/data/feedback",
			CheckInterval:    30 * time.Second,
			TrainerURL:       "",
			TrainerTimeout:   10 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats/jetstream",
			ThreatSubject:  "threats.detected.>",
			StreamName:     "THREATS",
			QueueGroup:     "broadcasters",
			DurableName:    "threat-broadcaster",
			AckWaitTimeout: 30 * time.Second,
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values that cannot be recovered
// from at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters")
	}
	if c.Realtime.HeartbeatInterval <= 0 {
		return fmt.Errorf("realtime.heartbeat_interval must be positive")
	}
	if c.Realtime.QueueCapacity < 0 {
		return fmt.Errorf("realtime.queue_capacity must not be negative")
	}
	if c.Realtime.SendBuffer < 1 {
		return fmt.Errorf("realtime.send_buffer must be at least 1")
	}
	if c.Feedback.RetrainThreshold < 1 {
		return fmt.Errorf("feedback.retrain_threshold must be at least 1")
	}
	if c.NATS.Enabled && c.NATS.URL == "" && !c.NATS.EmbeddedServer {
		return fmt.Errorf("nats.url is required when nats ingest is enabled")
	}
	return nil
}
