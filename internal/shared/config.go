package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	MPD     MPDConfig     `toml:"mpd"`
	Library LibraryConfig `toml:"library"`
	Sync    SyncConfig    `toml:"sync"`
}

// MPDConfig contains the MPD connection settings.
type MPDConfig struct {
	// Address is either "host:port" or an absolute unix socket path.
	Address  string `toml:"address"`
	Password string `toml:"password"`
}

// LibraryConfig contains music library settings.
type LibraryConfig struct {
	// Root overrides the music directory reported by the server. Required
	// when label rules are used over a TCP connection, because MPD answers
	// the "config" command only on unix socket connections.
	Root string `toml:"root"`
}

// SyncConfig contains synchronization settings.
type SyncConfig struct {
	// RateLimit caps mutating playlist batches per second.
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
