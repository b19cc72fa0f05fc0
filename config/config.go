package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Feed        FeedConfig    `mapstructure:"feed"`
	Ingest      IngestConfig  `mapstructure:"ingest"`
	Data        DataConfig    `mapstructure:"data"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Address     string        `mapstructure:"address"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CorsEnabled bool          `mapstructure:"cors_enabled"`
	CorsOrigins []string      `mapstructure:"cors_origins"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig holds the paced replay configuration
type FeedConfig struct {
	// WSPath is the only path the WebSocket upgrade is accepted on.
	WSPath string `mapstructure:"ws_path"`
	// TailSize is the number of trailing log events delivered one per
	// Interval instead of immediately.
	TailSize int           `mapstructure:"tail_size"`
	Interval time.Duration `mapstructure:"interval"`
}

// IngestConfig holds the observer-side ingestion configuration
type IngestConfig struct {
	FeedURL        string `mapstructure:"feed_url"`
	RestaurantsURL string `mapstructure:"restaurants_url"`
	// FlushThreshold is the buffered event count that triggers an automatic
	// flush; FlushInterval is the periodic fallback flush cadence.
	FlushThreshold int           `mapstructure:"flush_threshold"`
	FlushInterval  time.Duration `mapstructure:"flush_interval"`
	// SummaryInterval is how often the dashboard logs view summaries.
	SummaryInterval time.Duration `mapstructure:"summary_interval"`
}

// DataConfig holds the fixture file locations
type DataConfig struct {
	EventsPath      string `mapstructure:"events_path"`
	RestaurantsPath string `mapstructure:"restaurants_path"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Setup configuration paths
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		// Continue without a config file - ENV vars and defaults apply
	}

	// Enable environment variables to override config
	v.SetEnvPrefix("ORDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("environment", "development")
	v.SetDefault("server.address", "0.0.0.0:8014")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.cors_enabled", true)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Paced replay settings
	v.SetDefault("feed.ws_path", "/ws")
	v.SetDefault("feed.tail_size", 1000)
	v.SetDefault("feed.interval", "1s")

	// Ingestion settings
	v.SetDefault("ingest.feed_url", "ws://localhost:8014/ws")
	v.SetDefault("ingest.restaurants_url", "http://localhost:8014/restaurants")
	v.SetDefault("ingest.flush_threshold", 1200)
	v.SetDefault("ingest.flush_interval", "5s")
	v.SetDefault("ingest.summary_interval", "30s")

	// Fixture locations
	v.SetDefault("data.events_path", "data/events.json")
	v.SetDefault("data.restaurants_path", "data/restaurants.json")

	// Logging settings
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
