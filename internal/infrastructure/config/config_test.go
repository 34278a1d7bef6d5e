package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfigFile writes YAML content to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, "database:\n  path: /tmp/test.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("database path: got %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt port default: got %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Broker.ClientID != "labcheck-core" {
		t.Errorf("mqtt client_id default: got %q", cfg.MQTT.Broker.ClientID)
	}
	if cfg.Occupancy.DefaultCapacity != 20 {
		t.Errorf("default capacity: got %d, want 20", cfg.Occupancy.DefaultCapacity)
	}
	if cfg.Occupancy.DefaultOrientation != "normal" {
		t.Errorf("default orientation: got %q, want %q", cfg.Occupancy.DefaultOrientation, "normal")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  path: /data/labcheck.db
mqtt:
  broker:
    host: broker.example.com
    port: 8883
    tls: true
occupancy:
  default_capacity: 12
  default_orientation: inverted
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("mqtt host: got %q", cfg.MQTT.Broker.Host)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("mqtt tls: expected true")
	}
	if cfg.Occupancy.DefaultCapacity != 12 {
		t.Errorf("default capacity: got %d, want 12", cfg.Occupancy.DefaultCapacity)
	}
	if cfg.Occupancy.DefaultOrientation != "inverted" {
		t.Errorf("default orientation: got %q, want inverted", cfg.Occupancy.DefaultOrientation)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "database:\n  path: /tmp/file.db\n")

	t.Setenv("LABCHECK_DATABASE_PATH", "/env/override.db")
	t.Setenv("LABCHECK_MQTT_HOST", "env-broker")
	t.Setenv("LABCHECK_OCCUPANCY_DEFAULT_CAPACITY", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/env/override.db" {
		t.Errorf("database path: got %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("mqtt host: got %q, want env-broker", cfg.MQTT.Broker.Host)
	}
	if cfg.Occupancy.DefaultCapacity != 7 {
		t.Errorf("default capacity: got %d, want 7", cfg.Occupancy.DefaultCapacity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(_ *Config) {}, false},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, true},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid port", func(c *Config) { c.API.Port = 0 }, true},
		{"zero capacity", func(c *Config) { c.Occupancy.DefaultCapacity = 0 }, true},
		{"negative capacity", func(c *Config) { c.Occupancy.DefaultCapacity = -1 }, true},
		{"bad orientation", func(c *Config) { c.Occupancy.DefaultOrientation = "sideways" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
