package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// Config holds the configuration for the weather agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string

	// Display configuration
	DisplayID string
	Location  string
	Latitude  float64
	Longitude float64

	// Weather provider configuration
	WeatherAPIURL     string
	WeatherAPIKey     string
	UnitGroup         string
	RequestTimeoutSec int
	ForecastDays      int

	// Refresh loop configuration
	RefreshIntervalSec   int
	MinRefreshIntervalMs int

	// Optional YAML file tuning particles and lightning
	EffectsConfigPath string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:  "localhost",
		MQTTPort:    1883,
		RedisHost:   "localhost",
		RedisPort:   6379,
		RedisDB:     0,
		ServiceName: "weather-agent",
		HealthPort:  8080,
		LogLevel:    "info",
		DisplayID:   "default",

		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,

		WeatherAPIURL:        "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		UnitGroup:            "us",
		RequestTimeoutSec:    10,
		ForecastDays:         5,
		RefreshIntervalSec:   600,
		MinRefreshIntervalMs: 60000,
	}
}

// LoadFromEnv loads configuration from environment variables with JEEVES_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("JEEVES_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("JEEVES_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("JEEVES_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("JEEVES_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("JEEVES_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("JEEVES_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("JEEVES_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("JEEVES_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("JEEVES_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Service configuration
	if v := os.Getenv("JEEVES_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("JEEVES_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("JEEVES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Display configuration
	if v := os.Getenv("JEEVES_DISPLAY_ID"); v != "" {
		c.DisplayID = v
	}
	if v := os.Getenv("JEEVES_WEATHER_LOCATION"); v != "" {
		c.Location = v
	}
	if v := os.Getenv("JEEVES_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("JEEVES_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}

	// Weather provider configuration
	if v := os.Getenv("JEEVES_WEATHER_API_URL"); v != "" {
		c.WeatherAPIURL = v
	}
	if v := os.Getenv("JEEVES_WEATHER_API_KEY"); v != "" {
		c.WeatherAPIKey = v
	}
	if v := os.Getenv("JEEVES_UNIT_GROUP"); v != "" {
		c.UnitGroup = v
	}
	if v := os.Getenv("JEEVES_REQUEST_TIMEOUT_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			c.RequestTimeoutSec = sec
		}
	}
	if v := os.Getenv("JEEVES_FORECAST_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.ForecastDays = days
		}
	}

	// Refresh loop configuration
	if v := os.Getenv("JEEVES_REFRESH_INTERVAL_SEC"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.RefreshIntervalSec = interval
		}
	}
	if v := os.Getenv("JEEVES_MIN_REFRESH_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.MinRefreshIntervalMs = ms
		}
	}

	if v := os.Getenv("JEEVES_EFFECTS_CONFIG"); v != "" {
		c.EffectsConfigPath = v
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	c.bindFlags(pflag.CommandLine)
	pflag.Parse()
}

// LoadFromArgs parses the given arguments with a dedicated flag set
func (c *Config) LoadFromArgs(args []string) error {
	fs := pflag.NewFlagSet(c.ServiceName, pflag.ContinueOnError)
	c.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}

func (c *Config) bindFlags(fs *pflag.FlagSet) {
	// MQTT flags
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	fs.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Service flags
	fs.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Display flags
	fs.StringVar(&c.DisplayID, "display-id", c.DisplayID, "Display identifier used in topics and keys")
	fs.StringVar(&c.Location, "location", c.Location, "Default location name (city or address)")
	fs.Float64Var(&c.Latitude, "latitude", c.Latitude, "Fallback latitude when no location name is set")
	fs.Float64Var(&c.Longitude, "longitude", c.Longitude, "Fallback longitude when no location name is set")

	// Weather provider flags
	fs.StringVar(&c.WeatherAPIURL, "weather-api-url", c.WeatherAPIURL, "Visual Crossing timeline endpoint")
	fs.StringVar(&c.WeatherAPIKey, "weather-api-key", c.WeatherAPIKey, "Visual Crossing API key")
	fs.StringVar(&c.UnitGroup, "unit-group", c.UnitGroup, "Unit group (us, uk, metric)")
	fs.IntVar(&c.RequestTimeoutSec, "request-timeout", c.RequestTimeoutSec, "Weather request timeout in seconds")
	fs.IntVar(&c.ForecastDays, "forecast-days", c.ForecastDays, "Number of forecast days after today")

	// Refresh flags
	fs.IntVar(&c.RefreshIntervalSec, "refresh-interval", c.RefreshIntervalSec, "Weather refresh interval in seconds")
	fs.IntVar(&c.MinRefreshIntervalMs, "min-refresh-interval-ms", c.MinRefreshIntervalMs, "Minimum time between periodic refreshes (ms)")

	fs.StringVar(&c.EffectsConfigPath, "effects-config", c.EffectsConfigPath, "Path to effects tuning YAML")
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.DisplayID == "" {
		return fmt.Errorf("display ID is required")
	}
	if c.WeatherAPIKey == "" {
		return fmt.Errorf("weather API key is required")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if c.RefreshIntervalSec <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.MinRefreshIntervalMs < 0 {
		return fmt.Errorf("min refresh interval must not be negative")
	}
	if c.ForecastDays < 0 || c.ForecastDays > 14 {
		return fmt.Errorf("forecast days must be between 0 and 14")
	}

	validUnitGroups := map[string]bool{
		"us":     true,
		"uk":     true,
		"metric": true,
	}
	if !validUnitGroups[c.UnitGroup] {
		return fmt.Errorf("invalid unit group: %s (must be us, uk, or metric)", c.UnitGroup)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
