package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Temperature unit values accepted by IndigoConfig.TemperatureUnit.
const (
	UnitFahrenheit = "fahrenheit"
	UnitCelsius    = "celsius"
)

// Config is the root configuration structure for Indigo Bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Indigo    IndigoConfig    `yaml:"indigo"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Listener  ListenerConfig  `yaml:"listener"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IndigoConfig contains connection settings for the Indigo server's REST API.
type IndigoConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	// Path is an optional prefix prepended to every resource path
	// (for reverse-proxied Indigo installations).
	Path     string `yaml:"path"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TemperatureUnit is the unit the Indigo server reports and accepts
	// for thermostat values: "fahrenheit" (default) or "celsius".
	TemperatureUnit string `yaml:"temperature_unit"`

	// RequestTimeout is the per-request timeout in seconds for calls to
	// the Indigo server. A hung request is dropped and reported as an
	// error to its caller rather than stalling the outbound queue forever.
	RequestTimeout int `yaml:"request_timeout"`
}

// BridgeConfig contains accessory mapping settings.
type BridgeConfig struct {
	// NamePrefix is prepended to every accessory display name.
	NamePrefix string `yaml:"name_prefix"`

	// IncludeIDs, when non-empty, restricts discovery to the listed device
	// identifiers. ExcludeIDs always wins over IncludeIDs.
	IncludeIDs []string `yaml:"include_ids"`
	ExcludeIDs []string `yaml:"exclude_ids"`

	// TreatAs remaps on/off-capable devices to alternative accessory
	// profiles by identifier.
	TreatAs TreatAsConfig `yaml:"treat_as"`

	// IncludeActions exposes Indigo action groups as momentary switches.
	IncludeActions bool `yaml:"include_actions"`

	// MirrorDelayMS is the delay before a successful target-state write is
	// mirrored into the corresponding current-state trait. This simulates
	// motion completion for position, lock, and door accessories and the
	// auto-off of action switches. The value is a UX compromise, not a
	// measured transition time.
	MirrorDelayMS int `yaml:"mirror_delay_ms"`
}

// TreatAsConfig lists device identifiers that should be exposed under an
// alternative accessory profile. Every override requires the device to
// support on/off control.
type TreatAsConfig struct {
	Switches        []string `yaml:"switches"`
	Locks           []string `yaml:"locks"`
	Doors           []string `yaml:"doors"`
	GarageDoors     []string `yaml:"garage_doors"`
	Windows         []string `yaml:"windows"`
	WindowCoverings []string `yaml:"window_coverings"`
}

// ListenerConfig contains settings for the inbound push notification endpoint.
type ListenerConfig struct {
	Host     string                `yaml:"host"`
	Port     int                   `yaml:"port"`
	Timeouts ListenerTimeoutConfig `yaml:"timeouts"`
}

// ListenerTimeoutConfig contains HTTP timeout settings in seconds.
type ListenerTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains settings for the live trait-update event stream.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INDIGO_SECTION_KEY
// For example: INDIGO_HOST, INDIGO_PASSWORD, INDIGO_LISTENER_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Indigo: IndigoConfig{
			Protocol:        "http",
			Host:            "localhost",
			Port:            8176,
			TemperatureUnit: UnitFahrenheit,
			RequestTimeout:  30,
		},
		Bridge: BridgeConfig{
			MirrorDelayMS: 1000,
		},
		Listener: ListenerConfig{
			// Loopback by default: the push endpoint carries no
			// authentication, so exposure beyond the local host must be
			// an explicit configuration act.
			Host: "127.0.0.1",
			Port: 8177,
			Timeouts: ListenerTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INDIGO_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Indigo server connection
	if v := os.Getenv("INDIGO_HOST"); v != "" {
		cfg.Indigo.Host = v
	}
	if v := os.Getenv("INDIGO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Indigo.Port = port
		}
	}
	if v := os.Getenv("INDIGO_USERNAME"); v != "" {
		cfg.Indigo.Username = v
	}
	if v := os.Getenv("INDIGO_PASSWORD"); v != "" {
		cfg.Indigo.Password = v
	}

	// Push listener
	if v := os.Getenv("INDIGO_LISTENER_HOST"); v != "" {
		cfg.Listener.Host = v
	}
	if v := os.Getenv("INDIGO_LISTENER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Listener.Port = port
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Indigo connection validation
	if c.Indigo.Protocol != "http" && c.Indigo.Protocol != "https" {
		errs = append(errs, "indigo.protocol must be http or https")
	}
	if c.Indigo.Host == "" {
		errs = append(errs, "indigo.host is required")
	}
	if c.Indigo.Port < 1 || c.Indigo.Port > 65535 {
		errs = append(errs, "indigo.port must be between 1 and 65535")
	}
	if c.Indigo.TemperatureUnit != UnitFahrenheit && c.Indigo.TemperatureUnit != UnitCelsius {
		errs = append(errs, "indigo.temperature_unit must be fahrenheit or celsius")
	}
	if c.Indigo.RequestTimeout < 1 {
		errs = append(errs, "indigo.request_timeout must be at least 1 second")
	}

	// Bridge validation
	if c.Bridge.MirrorDelayMS < 0 {
		errs = append(errs, "bridge.mirror_delay_ms must not be negative")
	}

	// Listener validation
	if c.Listener.Port < 1 || c.Listener.Port > 65535 {
		errs = append(errs, "listener.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// BaseURL constructs the base URL for all Indigo REST requests.
// The optional path prefix is normalised to a single leading slash and
// no trailing slash.
func (c *IndigoConfig) BaseURL() string {
	base := fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
	prefix := strings.Trim(c.Path, "/")
	if prefix != "" {
		base += "/" + prefix
	}
	return base
}

// GetRequestTimeout returns the Indigo per-request timeout as a Duration.
func (c *IndigoConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetMirrorDelay returns the deferred mirror delay as a Duration.
func (c *BridgeConfig) GetMirrorDelay() time.Duration {
	return time.Duration(c.MirrorDelayMS) * time.Millisecond
}

// GetReadTimeout returns the listener read timeout as a Duration.
func (c *ListenerConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the listener write timeout as a Duration.
func (c *ListenerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the listener idle timeout as a Duration.
func (c *ListenerConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
