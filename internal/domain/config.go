package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration file.
const (
	EnvAPIKey         = "LETTA_API_KEY"
	EnvDefaultAgentID = "LETTA_DEFAULT_AGENT_ID"
	EnvBaseURL        = "LETTA_BASE_URL"
)

// DefaultBaseURL is the Letta Cloud API root.
const DefaultBaseURL = "https://api.letta.com"

// Listen address used by the http transport when none is configured.
const (
	DefaultHTTPHost = "127.0.0.1"
	DefaultHTTPPort = 8080
)

// Config represents the server configuration.
// It is loaded from an optional YAML file and then overridden by the environment.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Letta     LettaConfig     `yaml:"letta"`
	Log       LogConfig       `yaml:"log"`
}

// TransportConfig defines transport settings.
// Specifies whether to use stdio or HTTP transport.
type TransportConfig struct {
	Type string     `yaml:"type"` // "stdio" or "http"
	HTTP HTTPConfig `yaml:"http,omitempty"`
}

// HTTPConfig defines HTTP transport settings.
// Only used when transport type is "http".
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LettaConfig defines how to reach the Letta platform.
type LettaConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key,omitempty"`
	DefaultAgentID string `yaml:"default_agent_id,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// logLevels lists the accepted values of log.level.
var logLevels = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type: "stdio",
			HTTP: HTTPConfig{Host: DefaultHTTPHost, Port: DefaultHTTPPort},
		},
		Letta:     LettaConfig{BaseURL: DefaultBaseURL},
		Log:       LogConfig{Level: "INFO"},
	}
}

// LoadConfig reads the YAML file at path (optional when empty), applies
// environment overrides and validates the result.
// A missing API key is not a load error: it is reported on the first remote call.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Newf("configuration file not found: %s", path)
			}
			return nil, errors.Wrap(err, "failed to read configuration file")
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrap(err, "invalid YAML syntax in configuration file")
		}
	}

	config.ApplyEnvironment(os.LookupEnv)
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// ApplyEnvironment overrides Letta settings with non-empty environment values.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.Letta.APIKey = v
	}
	if v, ok := lookup(EnvDefaultAgentID); ok && v != "" {
		c.Letta.DefaultAgentID = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Letta.BaseURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = "stdio"
	}
	if c.Transport.HTTP.Host == "" {
		c.Transport.HTTP.Host = DefaultHTTPHost
	}
	if c.Transport.HTTP.Port == 0 {
		c.Transport.HTTP.Port = DefaultHTTPPort
	}
	if c.Letta.BaseURL == "" {
		c.Letta.BaseURL = DefaultBaseURL
	}
	c.Letta.BaseURL = strings.TrimRight(c.Letta.BaseURL, "/")
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var problems []string

	if err := c.validateTransport(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := c.Letta.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if !isLogLevel(c.Log.Level) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}

	if len(problems) > 0 {
		return errors.Newf("validation errors: %s", strings.Join(problems, "; "))
	}

	return nil
}

// validateTransport validates the transport configuration.
func (c *Config) validateTransport() error {
	var problems []string

	if c.Transport.Type == "" {
		problems = append(problems, "transport type is required")
	} else if c.Transport.Type != "stdio" && c.Transport.Type != "http" {
		problems = append(problems, fmt.Sprintf("invalid transport type '%s': must be 'stdio' or 'http'", c.Transport.Type))
	}

	if c.Transport.Type == "http" {
		if c.Transport.HTTP.Host == "" {
			problems = append(problems, "HTTP host is required when transport type is 'http'")
		}
		if c.Transport.HTTP.Port <= 0 || c.Transport.HTTP.Port > 65535 {
			problems = append(problems, fmt.Sprintf("invalid HTTP port %d: must be between 1 and 65535", c.Transport.HTTP.Port))
		}
	}

	if len(problems) > 0 {
		return errors.Newf("%s", strings.Join(problems, "; "))
	}

	return nil
}

// Validate checks the Letta base URL. The API key is checked lazily.
func (lc *LettaConfig) Validate() error {
	if lc.BaseURL == "" {
		return errors.New("letta base_url is required")
	}

	parsedURL, err := url.Parse(lc.BaseURL)
	if err != nil {
		return errors.Newf("letta base_url is invalid: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("letta base_url must use http or https scheme")
	}
	if parsedURL.Host == "" {
		return errors.New("letta base_url must include a host")
	}

	return nil
}

func isLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}
