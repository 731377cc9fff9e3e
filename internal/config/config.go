// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultPort is used by both the event channel (UDP) and the blob
// listener (TCP) unless the config overrides it.
const DefaultPort = 42069

// Direction names the screen edge a peer sits behind.
type Direction string

const (
	Left   Direction = "left"
	Right  Direction = "right"
	Top    Direction = "top"
	Bottom Direction = "bottom"
)

// Directions lists every configurable direction in a stable order.
var Directions = []Direction{Left, Right, Top, Bottom}

// Config represents the application configuration
type Config struct {
	// Port shared by the UDP event channel and the TCP blob listener
	Port int `mapstructure:"port"`

	// Peers keyed by screen edge
	Peers PeersConfig `mapstructure:"peers"`

	// Capture holds the evdev device selection for the sharing host
	Capture CaptureConfig `mapstructure:"capture"`

	// Keymap configuration for the sharing host
	Keymap KeymapConfig `mapstructure:"keymap"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// PeersConfig holds one optional peer per screen edge
type PeersConfig struct {
	Left   *Peer `mapstructure:"left"`
	Right  *Peer `mapstructure:"right"`
	Top    *Peer `mapstructure:"top"`
	Bottom *Peer `mapstructure:"bottom"`
}

// Peer describes one remote host. At least one of IP or HostName must
// be set; IP wins when both are present. Port falls back to the global
// default when zero.
type Peer struct {
	HostName string `mapstructure:"host_name"`
	IP       string `mapstructure:"ip"`
	Port     int    `mapstructure:"port"`
}

// CaptureConfig pins the evdev devices to capture from. Empty paths
// mean auto-detection.
type CaptureConfig struct {
	MouseDevice    string `mapstructure:"mouse_device"`
	KeyboardDevice string `mapstructure:"keyboard_device"`
}

// KeymapConfig locates the XKB keymap description offered to peers
type KeymapConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Port:    DefaultPort,
		Peers:   PeersConfig{},
		Capture: CaptureConfig{},
		Keymap:  KeymapConfig{},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("edgehop")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/edgehop")
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "edgehop"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("port", DefaultConfig.Port)
	viper.SetDefault("capture.mouse_device", DefaultConfig.Capture.MouseDevice)
	viper.SetDefault("capture.keyboard_device", DefaultConfig.Capture.KeyboardDevice)
	viper.SetDefault("keymap.file", DefaultConfig.Keymap.File)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Peer returns the configured peer for a direction, nil when that
// direction is inert.
func (c *Config) Peer(dir Direction) *Peer {
	switch dir {
	case Left:
		return c.Peers.Left
	case Right:
		return c.Peers.Right
	case Top:
		return c.Peers.Top
	case Bottom:
		return c.Peers.Bottom
	}
	return nil
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/edgehop/edgehop.toml"
	}

	return filepath.Join(home, ".config", "edgehop", "edgehop.toml")
}
