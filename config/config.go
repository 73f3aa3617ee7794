// Package config handles configuration persistence for the s7 CLI/service.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration: one PLC connection
// plus the optional telemetry surfaces (MQTT publisher, HTTP API) built on
// top of it.
type Config struct {
	PLC     PLCConfig     `yaml:"plc"`
	Publish PublishConfig `yaml:"publish,omitempty"`
	API     APIConfig     `yaml:"api,omitempty"`
}

// PLCConfig describes how to reach and address a single CPU.
type PLCConfig struct {
	Address            string        `yaml:"address"`
	Rack               int           `yaml:"rack"`
	Slot               int           `yaml:"slot"`
	RequestedPDULength uint16        `yaml:"pdu_length,omitempty"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout,omitempty"`
	ReadTimeout        time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout       time.Duration `yaml:"write_timeout,omitempty"`
}

// PublishConfig configures the MQTT tag publisher.
type PublishConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Broker   string        `yaml:"broker,omitempty"`
	ClientID string        `yaml:"client_id,omitempty"`
	Topic    string        `yaml:"topic,omitempty"`
	PollRate time.Duration `yaml:"poll_rate,omitempty"`
	Tags     []TagConfig   `yaml:"tags,omitempty"`
}

// TagConfig names one address to publish under a friendly name.
type TagConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Size    int    `yaml:"size"`
}

// APIConfig configures the read/write/control HTTP API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PLC: PLCConfig{
			Rack:               0,
			Slot:               2,
			RequestedPDULength: 480,
			ConnectTimeout:     10 * time.Second,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
		},
		Publish: PublishConfig{
			PollRate: time.Second,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// DefaultPath returns the default configuration file path (~/.s7link/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".s7link", "config.yaml")
}

// Load reads configuration from a YAML file, falling back to defaults for
// any field the file doesn't set. A missing file is not an error: Load
// returns DefaultConfig().
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals and writes the configuration to path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
