package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// SimulatorConfig defines the fallback simulator cadence
type SimulatorConfig struct {
	TickIntervalInMilliseconds uint32 `toml:"TickIntervalInMilliseconds"`
	SeedPoints                 int    `toml:"SeedPoints"`
}

// StoreConfig defines the retention of the in-memory view state
type StoreConfig struct {
	EventLogCapacity int `toml:"EventLogCapacity"`
	ErrorLogCapacity int `toml:"ErrorLogCapacity"`
	UsageWindow      int `toml:"UsageWindow"`
}

// MetricsConfig holds the metrics shown before the first update arrives
type MetricsConfig struct {
	TotalKeys   int64   `toml:"TotalKeys"`
	ActiveKeys  int64   `toml:"ActiveKeys"`
	Unlocks     int64   `toml:"Unlocks"`
	SuccessRate float64 `toml:"SuccessRate"`
}

// InsightConfig defines the summarization service call
type InsightConfig struct {
	Endpoint             string `toml:"Endpoint"`
	Model                string `toml:"Model"`
	TimeoutInSeconds     uint32 `toml:"TimeoutInSeconds"`
	// MaxRequestsPerMinute limits the analysis requests, 0 disables the limit
	MaxRequestsPerMinute uint32 `toml:"MaxRequestsPerMinute"`
}

// Config maps to the config.toml file for the dashboard service
type Config struct {
	ListenAddress              string          `toml:"ListenAddress"`
	StreamEndpoint             string          `toml:"StreamEndpoint"`
	HandshakeTimeoutInSeconds  uint32          `toml:"HandshakeTimeoutInSeconds"`
	ReconnectIntervalInSeconds uint32          `toml:"ReconnectIntervalInSeconds"`
	Simulator                  SimulatorConfig `toml:"Simulator"`
	Store                      StoreConfig     `toml:"Store"`
	InitialMetrics             MetricsConfig   `toml:"InitialMetrics"`
	Insight                    InsightConfig   `toml:"Insight"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
