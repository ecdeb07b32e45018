package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/mcp-city-time/timeservice"
)

// Config holds server settings. Values come from defaults, then an optional
// YAML file, then MCP_* environment variables, then CLI flags.
type Config struct {
	ListenAddr     string       `yaml:"listen"`
	Mode           string       `yaml:"mode"`
	LogLevel       string       `yaml:"log_level"`
	DBPath         string       `yaml:"db"`
	AllowedOrigins []string     `yaml:"allowed_origins"`
	Lookup         LookupConfig `yaml:"lookup"`
}

// LookupConfig configures the external time lookup.
type LookupConfig struct {
	Platform string `yaml:"platform"` // auto, dig, nslookup
	Server   string `yaml:"server"`
	Zone     string `yaml:"zone"`
	Timeout  string `yaml:"timeout"`
}

const (
	defaultListenAddr = ":3000"
	defaultMode       = "http"
	defaultLogLevel   = "info"

	// MCPPath is where the Streamable HTTP MCP endpoint is mounted.
	MCPPath = "/api/llm/mcp"
)

var ErrInvalidConfig = errors.New("invalid config")

func DefaultConfig() Config {
	return Config{
		ListenAddr: defaultListenAddr,
		Mode:       defaultMode,
		LogLevel:   defaultLogLevel,
		Lookup: LookupConfig{
			Platform: "auto",
			Server:   timeservice.DefaultServer,
			Zone:     timeservice.DefaultZone,
			Timeout:  timeservice.DefaultTimeout.String(),
		},
	}
}

// LoadConfig reads the YAML file at path (optional) on top of the defaults
// and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, os.LookupEnv)
}

func loadConfig(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := expandEnvString(string(data), lookupEnv)
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg, lookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, lookupEnv func(string) (string, bool)) {
	getenv := func(key string) string {
		val, _ := lookupEnv(key)
		return val
	}
	set := func(key string, dst *string) {
		if val := getenv(key); val != "" {
			*dst = val
		}
	}

	set("MCP_LISTEN", &cfg.ListenAddr)
	set("MCP_MODE", &cfg.Mode)
	set("MCP_LOG_LEVEL", &cfg.LogLevel)
	set("MCP_DB", &cfg.DBPath)
	set("MCP_PLATFORM", &cfg.Lookup.Platform)
	set("MCP_DNS_SERVER", &cfg.Lookup.Server)
	set("MCP_DNS_ZONE", &cfg.Lookup.Zone)
	set("MCP_LOOKUP_TIMEOUT", &cfg.Lookup.Timeout)

	if val := getenv("MCP_ALLOWED_ORIGINS"); val != "" {
		cfg.AllowedOrigins = SplitOrigins(val)
	}
}

// SplitOrigins parses a comma-separated origin list.
func SplitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c Config) Validate() error {
	if c.Mode != "http" && c.Mode != "stdio" {
		return fmt.Errorf("%w: unknown mode %q (want http or stdio)", ErrInvalidConfig, c.Mode)
	}
	if c.Mode == "http" && c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address required in http mode", ErrInvalidConfig)
	}
	if _, err := c.TimeLookupConfig(); err != nil {
		return err
	}
	return nil
}

// TimeLookupConfig converts the lookup section for timeservice.
func (c Config) TimeLookupConfig() (timeservice.LookupConfig, error) {
	platform, err := timeservice.ParsePlatform(c.Lookup.Platform)
	if err != nil {
		return timeservice.LookupConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var timeout time.Duration
	if c.Lookup.Timeout != "" {
		timeout, err = time.ParseDuration(c.Lookup.Timeout)
		if err != nil || timeout <= 0 {
			return timeservice.LookupConfig{}, fmt.Errorf("%w: lookup timeout %q", ErrInvalidConfig, c.Lookup.Timeout)
		}
	}

	return timeservice.LookupConfig{
		Server:   c.Lookup.Server,
		Zone:     c.Lookup.Zone,
		Timeout:  timeout,
		Platform: platform,
	}, nil
}
