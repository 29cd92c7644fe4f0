// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dashboard DashboardConfig `toml:"dashboard"`
	Export    ExportConfig    `toml:"export"`
}

// DashboardConfig maps dataset and dashboard settings.
type DashboardConfig struct {
	Data     *string  `toml:"data"`
	Bins     *int     `toml:"bins"`
	Humidity *float64 `toml:"rh"`
}

// ExportConfig maps CSV export settings.
type ExportConfig struct {
	Dir  *string `toml:"dir"`
	Gzip *bool   `toml:"gzip"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
