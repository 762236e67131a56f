// Package config provides configuration structures and loading logic for the proxy.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chefstack/ai-proxy/pkg/domain"
)

// Config holds the global configuration for the proxy.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Auth      AuthConfig      `yaml:"auth"`
	Limits    LimitsConfig    `yaml:"limits"`
	CORS      CORSConfig      `yaml:"cors"`
	Features  []string        `yaml:"features"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

// UpstreamConfig holds configuration for the generative-AI provider.
// APIKey is sourced from the environment only; it never appears in the
// config file and never reaches the client.
type UpstreamConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"-"`
	TextModel   string        `yaml:"text_model"`
	ImageModel  string        `yaml:"image_model"`
	TextTimeout time.Duration `yaml:"text_timeout"`
	ImageTimeout time.Duration `yaml:"image_timeout"`
}

// AuthConfig holds configuration for bearer-token verification.
// When JWTSecret is set, tokens are verified locally; otherwise the
// identity provider's introspection endpoint at ProviderURL is called.
type AuthConfig struct {
	ProviderURL          string        `yaml:"provider_url"`
	JWTSecret            string        `yaml:"-"`
	IntrospectionTimeout time.Duration `yaml:"introspection_timeout"`
}

// LimitsConfig holds the request-body ceilings.
type LimitsConfig struct {
	TextBodyBytes  int64 `yaml:"text_body_bytes"`
	ImageBodyBytes int64 `yaml:"image_body_bytes"`
	MaxImages      int   `yaml:"max_images"`
}

// CORSConfig holds the cross-origin allowlist. An empty allowlist falls
// back to the wildcard origin; callers should treat that as a development
// convenience, not a production posture.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TelemetryConfig holds configuration for OpenTelemetry.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		//nolint:gosec // Config file path is controlled by admin/operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress: ":8080",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  90 * time.Second,
			IdleTimeout:   120 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:      "https://generativelanguage.googleapis.com",
			TextModel:    "gemini-2.0-flash",
			ImageModel:   "imagen-3.0-generate-002",
			TextTimeout:  25 * time.Second,
			ImageTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			IntrospectionTimeout: 5 * time.Second,
		},
		Limits: LimitsConfig{
			TextBodyBytes:  1 << 20, // 1 MiB
			ImageBodyBytes: 512 << 10,
			MaxImages:      domain.MaxImagesPerRequest,
		},
		Features: domain.DefaultFeatures(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CHEFSTACK_LISTEN_ADDR"); val != "" {
		cfg.Server.ListenAddress = val
	}

	if val := os.Getenv("GEMINI_API_BASE"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	cfg.Upstream.APIKey = os.Getenv("GEMINI_API_KEY")
	if val := os.Getenv("GEMINI_TEXT_MODEL"); val != "" {
		cfg.Upstream.TextModel = val
	}
	if val := os.Getenv("GEMINI_IMAGE_MODEL"); val != "" {
		cfg.Upstream.ImageModel = val
	}
	if d, ok := envDuration("CHEFSTACK_TEXT_TIMEOUT_MS"); ok {
		cfg.Upstream.TextTimeout = d
	}
	if d, ok := envDuration("CHEFSTACK_IMAGE_TIMEOUT_MS"); ok {
		cfg.Upstream.ImageTimeout = d
	}

	if val := os.Getenv("CHEFSTACK_AUTH_URL"); val != "" {
		cfg.Auth.ProviderURL = val
	}
	cfg.Auth.JWTSecret = os.Getenv("CHEFSTACK_JWT_SECRET")

	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		cfg.CORS.AllowedOrigins = SplitOrigins(val)
	}

	if val := os.Getenv("CHEFSTACK_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("CHEFSTACK_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}

	if val := os.Getenv("CHEFSTACK_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	ms, err := strconv.Atoi(val)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// SplitOrigins parses a comma-separated origin allowlist, dropping empty
// entries and surrounding whitespace.
func SplitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Validate performs comprehensive validation of the entire configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server configuration: %w", err)
	}
	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream configuration: %w", err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits configuration: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}
	if len(c.Features) == 0 {
		c.Features = domain.DefaultFeatures()
	}
	return nil
}

// Validate performs validation of server configuration.
func (c *ServerConfig) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = ":8080"
	}
	return nil
}

// Validate performs validation of upstream configuration. The API key is
// deliberately not required here: a missing secret surfaces as a generic
// 500 at request time rather than preventing startup of the health and
// metrics endpoints.
func (c *UpstreamConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.TextTimeout <= 0 {
		return fmt.Errorf("text_timeout must be positive")
	}
	if c.ImageTimeout <= 0 {
		return fmt.Errorf("image_timeout must be positive")
	}
	if strings.TrimSpace(c.TextModel) == "" {
		c.TextModel = "gemini-2.0-flash"
	}
	if strings.TrimSpace(c.ImageModel) == "" {
		c.ImageModel = "imagen-3.0-generate-002"
	}
	return nil
}

// Validate performs validation of the request-body limits.
func (c *LimitsConfig) Validate() error {
	if c.TextBodyBytes <= 0 {
		return fmt.Errorf("text_body_bytes must be positive")
	}
	if c.ImageBodyBytes <= 0 {
		return fmt.Errorf("image_body_bytes must be positive")
	}
	if c.MaxImages < 1 || c.MaxImages > domain.MaxImagesPerRequest {
		return fmt.Errorf("max_images must be between 1 and %d", domain.MaxImagesPerRequest)
	}
	return nil
}

// Validate performs validation of logging configuration.
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "info"
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
		return nil
	default:
		return fmt.Errorf("invalid log level %q, supported levels: debug, info, warn, error", c.Level)
	}
}
