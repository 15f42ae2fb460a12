package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
indigo:
  protocol: "https"
  host: "indigo.local"
  port: 8176
  username: "bridge"
  password: "secret"
  temperature_unit: "celsius"
bridge:
  name_prefix: "HB "
  include_actions: true
  mirror_delay_ms: 500
listener:
  host: "0.0.0.0"
  port: 8177
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Indigo.Host != "indigo.local" {
		t.Errorf("Indigo.Host = %q, want %q", cfg.Indigo.Host, "indigo.local")
	}
	if cfg.Indigo.TemperatureUnit != UnitCelsius {
		t.Errorf("Indigo.TemperatureUnit = %q, want %q", cfg.Indigo.TemperatureUnit, UnitCelsius)
	}
	if cfg.Bridge.NamePrefix != "HB " {
		t.Errorf("Bridge.NamePrefix = %q, want %q", cfg.Bridge.NamePrefix, "HB ")
	}
	if !cfg.Bridge.IncludeActions {
		t.Error("Bridge.IncludeActions = false, want true")
	}
	if cfg.Bridge.GetMirrorDelay().Milliseconds() != 500 {
		t.Errorf("GetMirrorDelay() = %v, want 500ms", cfg.Bridge.GetMirrorDelay())
	}
	if cfg.Listener.Host != "0.0.0.0" {
		t.Errorf("Listener.Host = %q, want %q", cfg.Listener.Host, "0.0.0.0")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "indigo:\n  host: \"10.0.1.2\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Indigo.Port != 8176 {
		t.Errorf("Indigo.Port = %d, want 8176", cfg.Indigo.Port)
	}
	if cfg.Indigo.TemperatureUnit != UnitFahrenheit {
		t.Errorf("Indigo.TemperatureUnit = %q, want fahrenheit default", cfg.Indigo.TemperatureUnit)
	}
	if cfg.Bridge.MirrorDelayMS != 1000 {
		t.Errorf("Bridge.MirrorDelayMS = %d, want 1000", cfg.Bridge.MirrorDelayMS)
	}
	if cfg.Listener.Host != "127.0.0.1" {
		t.Errorf("Listener.Host = %q, want loopback default", cfg.Listener.Host)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INDIGO_HOST", "env-host")
	t.Setenv("INDIGO_PASSWORD", "env-pass")
	t.Setenv("INDIGO_LISTENER_PORT", "9999")

	cfg, err := Load(writeConfig(t, "indigo:\n  host: \"file-host\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Indigo.Host != "env-host" {
		t.Errorf("Indigo.Host = %q, want env override %q", cfg.Indigo.Host, "env-host")
	}
	if cfg.Indigo.Password != "env-pass" {
		t.Errorf("Indigo.Password = %q, want env override", cfg.Indigo.Password)
	}
	if cfg.Listener.Port != 9999 {
		t.Errorf("Listener.Port = %d, want 9999", cfg.Listener.Port)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(_ *Config) {},
		},
		{
			name:    "bad protocol",
			mutate:  func(c *Config) { c.Indigo.Protocol = "ftp" },
			wantErr: "indigo.protocol",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Indigo.Host = "" },
			wantErr: "indigo.host",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Indigo.Port = 70000 },
			wantErr: "indigo.port",
		},
		{
			name:    "bad temperature unit",
			mutate:  func(c *Config) { c.Indigo.TemperatureUnit = "kelvin" },
			wantErr: "temperature_unit",
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Indigo.RequestTimeout = 0 },
			wantErr: "request_timeout",
		},
		{
			name:    "negative mirror delay",
			mutate:  func(c *Config) { c.Bridge.MirrorDelayMS = -1 },
			wantErr: "mirror_delay_ms",
		},
		{
			name:    "listener port out of range",
			mutate:  func(c *Config) { c.Listener.Port = 0 },
			wantErr: "listener.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestIndigoConfig_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  IndigoConfig
		want string
	}{
		{
			name: "no path prefix",
			cfg:  IndigoConfig{Protocol: "http", Host: "localhost", Port: 8176},
			want: "http://localhost:8176",
		},
		{
			name: "path prefix normalised",
			cfg:  IndigoConfig{Protocol: "https", Host: "indigo.local", Port: 443, Path: "/indigo/"},
			want: "https://indigo.local:443/indigo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
