package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the monitoring server
type AppConfig struct {
	Server    ServerSettings    `yaml:"server"`
	Simulator SimulatorSettings `yaml:"simulator"`
	Model     ModelSettings     `yaml:"model"`
	Storage   StorageSettings   `yaml:"storage"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// ServerSettings contains HTTP server configuration
type ServerSettings struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// SimulatorSettings controls the refresh loop and the synthetic data sources
type SimulatorSettings struct {
	// Locations overrides the built-in moss wall installations when set.
	Locations []string `yaml:"locations"`

	// RefreshInterval drives the recompute loop. Clamped to 5s-60s by
	// Validate, matching the range the dashboard controls expose.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	AutoRefresh     bool          `yaml:"auto_refresh"`

	// Seed makes the simulators deterministic when non-zero. Zero means
	// seed from the clock.
	Seed int64 `yaml:"seed"`
}

// ModelSettings configures the health classifier
type ModelSettings struct {
	Path         string `yaml:"path"`
	Strategy     string `yaml:"strategy"` // "tree" or "heuristic"
	TrainingSeed int64  `yaml:"training_seed"`
}

// StorageSettings contains the optional snapshot log configuration
type StorageSettings struct {
	Enabled       bool          `yaml:"enabled"`
	DBPath        string        `yaml:"db_path"`
	BatchSize     int           `yaml:"batch_size"`
	FlushPeriod   time.Duration `yaml:"flush_period"`
	ChannelSize   int           `yaml:"channel_size"`
	RetentionDays int           `yaml:"retention_days"`
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadAppConfig loads configuration from a YAML file
func LoadAppConfig(path string) (*AppConfig, error) {
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var config AppConfig
	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.ApplyDefaults()
	config.OverrideFromEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Default returns a fully defaulted configuration, used when no config file
// is supplied.
func Default() *AppConfig {
	var config AppConfig
	config.Simulator.AutoRefresh = true
	config.ApplyDefaults()
	return &config
}

// ApplyDefaults sets default values for any unset fields
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8081
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Simulator.RefreshInterval == 0 {
		c.Simulator.RefreshInterval = 10 * time.Second
	}
	if c.Model.Path == "" {
		c.Model.Path = "./data/moss_health_model.json"
	}
	if c.Model.Strategy == "" {
		c.Model.Strategy = "tree"
	}
	if c.Model.TrainingSeed == 0 {
		c.Model.TrainingSeed = 42
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = "./data/moss-monitor.db"
	}
	if c.Storage.BatchSize == 0 {
		c.Storage.BatchSize = 100
	}
	if c.Storage.FlushPeriod == 0 {
		c.Storage.FlushPeriod = 5 * time.Second
	}
	if c.Storage.ChannelSize == 0 {
		c.Storage.ChannelSize = 1000
	}
	if c.Storage.RetentionDays == 0 {
		c.Storage.RetentionDays = 30
	}
	if c.Storage.CleanupPeriod == 0 {
		c.Storage.CleanupPeriod = 1 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// OverrideFromEnv overrides config values from environment variables
func (c *AppConfig) OverrideFromEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("SIMULATOR_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Simulator.Seed = seed
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Simulator.RefreshInterval < 5*time.Second || c.Simulator.RefreshInterval > 60*time.Second {
		return fmt.Errorf("refresh interval must be between 5s and 60s")
	}
	if c.Model.Strategy != "tree" && c.Model.Strategy != "heuristic" {
		return fmt.Errorf("model strategy must be %q or %q", "tree", "heuristic")
	}
	if c.Storage.Enabled && c.Storage.BatchSize < 1 {
		return fmt.Errorf("storage batch size must be at least 1")
	}
	if c.Storage.Enabled && c.Storage.RetentionDays < 1 {
		return fmt.Errorf("storage retention must be at least 1 day")
	}
	return nil
}

// String returns a string representation of the configuration
func (c *AppConfig) String() string {
	return fmt.Sprintf("AppConfig{Server: %+v, Simulator: %+v, Model: %+v, Storage: %+v, Logging: %+v}",
		c.Server,
		c.Simulator,
		c.Model,
		c.Storage,
		c.Logging,
	)
}
