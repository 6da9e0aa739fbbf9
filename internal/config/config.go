package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"berrypoker/internal/util"
)

// Config provides configuration for the poker server
type Config struct {
	loaded bool

	BindAddress string `yaml:"bindAddress" envconfig:"bind_address"`
	Port        int    `yaml:"port" envconfig:"port"`

	DatabasePath string `yaml:"databasePath" envconfig:"database_path"`

	// RoomFreshnessWindow bounds how old a persisted room may be and still
	// be recovered at startup.
	RoomFreshnessWindow time.Duration `yaml:"roomFreshnessWindow" envconfig:"room_freshness_window"`

	// RoomIdleTimeout is how long a room may sit empty before it's purged from memory and storage.
	RoomIdleTimeout time.Duration `yaml:"roomIdleTimeout" envconfig:"room_idle_timeout"`

	// PersistInterval is how often dirty rooms are flushed to storage.
	PersistInterval time.Duration `yaml:"persistInterval" envconfig:"persist_interval"`

	CORSOrigins []string `yaml:"corsOrigins" envconfig:"cors_origins"`

	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
}

// DefaultConfig returns the configuration used when no file or environment overrides are present
func DefaultConfig() Config {
	return Config{
		loaded:              true,
		BindAddress:         "0.0.0.0",
		Port:                8080,
		DatabasePath:        "./berrypoker.db",
		RoomFreshnessWindow: 24 * time.Hour,
		RoomIdleTimeout:     30 * time.Minute,
		PersistInterval:     30 * time.Second,
		CORSOrigins:         []string{"*"},
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration, starting from defaults, then a YAML
// file if present, then environment variables.
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("BERRYPOKER_CONFIG_FILE", "config.yaml")
	if file, err := os.Open(configFile); err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	}

	if err := envconfig.Process("berrypoker", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
