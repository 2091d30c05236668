package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Weather WeatherConfig `toml:"wx"`      // TAF fetching and caching settings
	NOTAMs  NOTAMConfig   `toml:"notams"`  // FAA NOTAM source settings
	Routes  RoutesConfig  `toml:"routes"`  // Route table file locations
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// WeatherConfig contains TAF fetching and caching configuration
type WeatherConfig struct {
	RefreshIntervalMinutes int    `toml:"refresh_interval_minutes"` // Board refresh interval in minutes
	APIBaseURL             string `toml:"api_base_url"`             // Base URL for the aviation weather API (e.g., https://aviationweather.gov/api/data)
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`  // HTTP request timeout in seconds
	MaxRetries             int    `toml:"max_retries"`              // Maximum number of retry attempts for failed requests
	CacheExpiryMinutes     int    `toml:"cache_expiry_minutes"`     // Age at which a cached snapshot is reported stale
}

// NOTAMConfig contains FAA NOTAM source configuration. The client
// credential pair lives in a separate JSON file (or the FAA_CLIENT_ID /
// FAA_CLIENT_SECRET environment variables), never in this file.
type NOTAMConfig struct {
	Enabled               bool   `toml:"enabled"`                 // Whether to fetch NOTAMs at all
	APIBaseURL            string `toml:"api_base_url"`            // Base URL for the FAA NOTAM API
	CredentialsPath       string `toml:"credentials_path"`        // Path to client credentials JSON (client_id/client_secret)
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP request timeout in seconds
}

// RoutesConfig contains the route table file locations
type RoutesConfig struct {
	RegionsPath    string `toml:"regions_path"`    // Region -> destination airports file
	AlternatesPath string `toml:"alternates_path"` // Destination -> alternate airports file
	EnroutePath    string `toml:"enroute_path"`    // Region -> enroute alternates (EDTO ERAs) file
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	config := defaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			Host:               "127.0.0.1",
			CORSAllowedOrigins: []string{"*"},
			ReadTimeoutSecs:    30,
			WriteTimeoutSecs:   30,
			IdleTimeoutSecs:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Weather: WeatherConfig{
			RefreshIntervalMinutes: 10,
			APIBaseURL:             "https://aviationweather.gov/api/data",
			RequestTimeoutSeconds:  10,
			MaxRetries:             2,
			CacheExpiryMinutes:     15,
		},
		NOTAMs: NOTAMConfig{
			Enabled:               true,
			APIBaseURL:            "https://api-staging.cgifederal-aim.com",
			CredentialsPath:       "faa/credentials.json",
			RequestTimeoutSeconds: 30,
		},
		Routes: RoutesConfig{
			RegionsPath:    "configs/Region.txt",
			AlternatesPath: "configs/Airport_list.txt",
			EnroutePath:    "configs/Enroute_Alternates.txt",
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := c.ValidateServer(); err != nil {
		return err
	}
	if err := c.ValidateWeather(); err != nil {
		return err
	}
	if err := c.ValidateNOTAMs(); err != nil {
		return err
	}
	return c.ValidateRoutes()
}

// ValidateServer checks the HTTP server configuration
func (c *Config) ValidateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	return nil
}

// ValidateWeather checks the TAF fetching configuration
func (c *Config) ValidateWeather() error {
	if c.Weather.RefreshIntervalMinutes <= 0 {
		return fmt.Errorf("wx refresh_interval_minutes must be greater than 0: %d", c.Weather.RefreshIntervalMinutes)
	}
	if c.Weather.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("wx request_timeout_seconds must be greater than 0: %d", c.Weather.RequestTimeoutSeconds)
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("wx max_retries must be 0 or greater: %d", c.Weather.MaxRetries)
	}
	if c.Weather.CacheExpiryMinutes <= 0 {
		return fmt.Errorf("wx cache_expiry_minutes must be greater than 0: %d", c.Weather.CacheExpiryMinutes)
	}
	if c.Weather.APIBaseURL == "" {
		return fmt.Errorf("wx api_base_url cannot be empty")
	}
	return nil
}

// ValidateNOTAMs checks the FAA NOTAM source configuration
func (c *Config) ValidateNOTAMs() error {
	if !c.NOTAMs.Enabled {
		return nil
	}
	if c.NOTAMs.APIBaseURL == "" {
		return fmt.Errorf("notams api_base_url cannot be empty when NOTAM fetching is enabled")
	}
	if c.NOTAMs.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("notams request_timeout_seconds must be greater than 0: %d", c.NOTAMs.RequestTimeoutSeconds)
	}
	return nil
}

// ValidateRoutes checks the route table file configuration
func (c *Config) ValidateRoutes() error {
	if c.Routes.RegionsPath == "" {
		return fmt.Errorf("routes regions_path cannot be empty")
	}
	if c.Routes.AlternatesPath == "" {
		return fmt.Errorf("routes alternates_path cannot be empty")
	}
	if c.Routes.EnroutePath == "" {
		return fmt.Errorf("routes enroute_path cannot be empty")
	}
	return nil
}
