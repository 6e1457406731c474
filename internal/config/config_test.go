// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Feedback.RetrainThreshold != 100 {
		t.Errorf("Feedback.RetrainThreshold = %d, want 100", cfg.Feedback.RetrainThreshold)
	}
	if cfg.Realtime.HeartbeatInterval != 30*time.Second {
		t.Errorf("Realtime.HeartbeatInterval = %v", cfg.Realtime.HeartbeatInterval)
	}
	if cfg.Realtime.QueueCapacity != 1000 {
		t.Errorf("Realtime.QueueCapacity = %d", cfg.Realtime.QueueCapacity)
	}
	if cfg.Security.AdminRole != "admin" {
		t.Errorf("Security.AdminRole = %q", cfg.Security.AdminRole)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS ingest enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging defaults = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_SERVER_PORT", "9000")
	t.Setenv("SENTINEL_FEEDBACK_RETRAIN_THRESHOLD", "25")
	t.Setenv("SENTINEL_REALTIME_HEARTBEAT_INTERVAL", "5s")
	t.Setenv("SENTINEL_SECURITY_ADMIN_ROLE", "soc_admin")
	t.Setenv("SENTINEL_SERVER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Feedback.RetrainThreshold != 25 {
		t.Errorf("Feedback.RetrainThreshold = %d, want 25", cfg.Feedback.RetrainThreshold)
	}
	if cfg.Realtime.HeartbeatInterval != 5*time.Second {
		t.Errorf("Realtime.HeartbeatInterval = %v, want 5s", cfg.Realtime.HeartbeatInterval)
	}
	if cfg.Security.AdminRole != "soc_admin" {
		t.Errorf("Security.AdminRole = %q", cfg.Security.AdminRole)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	yaml := strings.Join([]string{
		"server:",
		"  port: 8080",
		"feedback:",
		"  retrain_threshold: 50",
		"nats:",
		"  enabled: true",
		"  embedded_server: true",
	}, "\n")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Feedback.RetrainThreshold != 50 {
		t.Errorf("Feedback.RetrainThreshold = %d, want 50", cfg.Feedback.RetrainThreshold)
	}
	if !cfg.NATS.Enabled || !cfg.NATS.EmbeddedServer {
		t.Error("nats file settings not applied")
	}
	// Untouched sections keep their defaults.
	if cfg.Realtime.SendBuffer != 256 {
		t.Errorf("Realtime.SendBuffer = %d, want default 256", cfg.Realtime.SendBuffer)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SENTINEL_SERVER_PORT", "9443")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9443 {
		t.Errorf("Server.Port = %d, want env value 9443", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "too-short" },
			wantErr: "jwt_secret",
		},
		{
			name: "jwt secret long enough",
			mutate: func(c *Config) {
				c.Security.JWTSecret = strings.Repeat("s", 32)
			},
		},
		{
			name:    "zero heartbeat",
			mutate:  func(c *Config) { c.Realtime.HeartbeatInterval = 0 },
			wantErr: "heartbeat_interval",
		},
		{
			name:    "negative queue capacity",
			mutate:  func(c *Config) { c.Realtime.QueueCapacity = -1 },
			wantErr: "queue_capacity",
		},
		{
			name:    "zero send buffer",
			mutate:  func(c *Config) { c.Realtime.SendBuffer = 0 },
			wantErr: "send_buffer",
		},
		{
			name:    "zero retrain threshold",
			mutate:  func(c *Config) { c.Feedback.RetrainThreshold = 0 },
			wantErr: "retrain_threshold",
		},
		{
			name: "nats enabled without url",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.URL = ""
			},
			wantErr: "nats.url",
		},
		{
			name: "nats enabled embedded without url",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.URL = ""
				c.NATS.EmbeddedServer = true
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SENTINEL_SERVER_PORT", "server.port"},
		{"SENTINEL_FEEDBACK_RETRAIN_THRESHOLD", "feedback.retrain_threshold"},
		{"SENTINEL_REALTIME_HEARTBEAT_INTERVAL", "realtime.heartbeat_interval"},
		{"SENTINEL_NATS_THREAT_SUBJECT", "nats.threat_subject"},
		{"SENTINEL_UNKNOWN_SECTION", ""},
		{"SENTINEL_SERVERPORT", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
