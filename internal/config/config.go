package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	MaxHistoryItems    int  `json:"max_history_items"`
	ShowCharCount      bool `json:"show_char_count"`
	AutoStartMonitor   bool `json:"auto_start_monitoring"`
	MonitorInterval    int  `json:"monitoring_interval_ms"`
	EnableAutoSync     bool `json:"enable_auto_sync"`
	EnableBackground   bool `json:"enable_background_sync"`
	BackgroundInterval int  `json:"background_sync_interval_min"`

	SyncBaseURL string `json:"sync_base_url"`

	// Update settings
	CheckUpdatesOnStartup bool `json:"check_updates_on_startup"`
}

func Default() *Config {
	return &Config{
		MaxHistoryItems:    100,
		ShowCharCount:      true,
		AutoStartMonitor:   true,
		MonitorInterval:    2000,
		EnableAutoSync:     true,
		EnableBackground:   false,
		BackgroundInterval: 30,

		CheckUpdatesOnStartup: true,
	}
}

func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Return default config if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.validate()

	return config, nil
}

func (c *Config) Save(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) validate() {
	if c.MaxHistoryItems <= 0 {
		c.MaxHistoryItems = 100
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = 2000
	}
	if c.BackgroundInterval <= 0 {
		c.BackgroundInterval = 30
	}
}
