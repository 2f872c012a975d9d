package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeLocal      Mode = "local"
	ModeProduction Mode = "production"
)

type Backend string

const (
	BackendGeminiAPI Backend = "gemini"
	BackendVertex    Backend = "vertex"
)

type Config struct {
	Mode Mode `yaml:"mode"`

	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	LLM      LLMConfig      `yaml:"llm"`
	Session  SessionConfig  `yaml:"session"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

type LLMConfig struct {
	Backend        Backend `yaml:"backend"` // "gemini" or "vertex"
	APIKey         string  `yaml:"api_key"`
	GCPProjectID   string  `yaml:"gcp_project"`
	GCPLocation    string  `yaml:"gcp_location"`
	RouterModel    string  `yaml:"router_model"`
	GeneratorModel string  `yaml:"generator_model"`
	UseMock        bool    `yaml:"use_mock"` // true = deterministic mock, no network
}

type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl"`            // state inactivity window
	CookieName   string        `yaml:"cookie_name"`
	CookieMaxAge time.Duration `yaml:"cookie_max_age"` // identifier sliding window
}

type PipelineConfig struct {
	MaxAttempts   int           `yaml:"max_attempts"`
	BackoffUnit   time.Duration `yaml:"backoff_unit"`
	LaunchStagger time.Duration `yaml:"launch_stagger"`
	StreamBuffer  int           `yaml:"stream_buffer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Overrides optionally overrides values from the file and environment.
//
// A nil pointer means "keep the loaded value".
type Overrides struct {
	Addr       *string
	ConfigPath *string
	UseMockLLM *bool
	Debug      *bool
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Mode:           ModeLocal,
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
		LLM: LLMConfig{
			Backend:        BackendGeminiAPI,
			GCPLocation:    "us-central1",
			RouterModel:    "gemini-2.5-flash",
			GeneratorModel: "gemini-2.5-pro",
		},
		Session: SessionConfig{
			TTL:          24 * time.Hour,
			CookieName:   "screensmith_session_id",
			CookieMaxAge: 7 * 24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			MaxAttempts:   3,
			BackoffUnit:   time.Second,
			LaunchStagger: 300 * time.Millisecond,
			StreamBuffer:  64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Load builds the config from defaults, an optional YAML file, env vars and
// explicit overrides, in that order.
func Load(overrides Overrides) (*Config, error) {
	cfg := Default()

	path := getEnv("SCREENSMITH_CONFIG", "")
	if overrides.ConfigPath != nil {
		path = *overrides.ConfigPath
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if overrides.Addr != nil {
		cfg.Addr = *overrides.Addr
	}
	if overrides.UseMockLLM != nil {
		cfg.LLM.UseMock = *overrides.UseMockLLM
	}
	if overrides.Debug != nil && *overrides.Debug {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "text"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	switch getEnv("SCREENSMITH_MODE", string(c.Mode)) {
	case string(ModeProduction):
		c.Mode = ModeProduction
	default:
		c.Mode = ModeLocal
	}

	c.Addr = getEnv("SCREENSMITH_ADDR", c.Addr)
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if origins := os.Getenv("SCREENSMITH_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	c.LLM.Backend = Backend(getEnv("SCREENSMITH_LLM_BACKEND", string(c.LLM.Backend)))
	c.LLM.APIKey = getEnv("GEMINI_API_KEY", c.LLM.APIKey)
	c.LLM.GCPProjectID = getEnv("SCREENSMITH_GCP_PROJECT", c.LLM.GCPProjectID)
	c.LLM.GCPLocation = getEnv("SCREENSMITH_GCP_LOCATION", c.LLM.GCPLocation)
	c.LLM.RouterModel = getEnv("SCREENSMITH_ROUTER_MODEL", c.LLM.RouterModel)
	c.LLM.GeneratorModel = getEnv("SCREENSMITH_GENERATOR_MODEL", c.LLM.GeneratorModel)
	c.LLM.UseMock = getBoolEnv("SCREENSMITH_USE_MOCK_LLM", c.LLM.UseMock)

	var err error
	if c.Session.TTL, err = getDurationEnv("SCREENSMITH_SESSION_TTL", c.Session.TTL); err != nil {
		return err
	}
	if c.Session.CookieMaxAge, err = getDurationEnv("SCREENSMITH_COOKIE_MAX_AGE", c.Session.CookieMaxAge); err != nil {
		return err
	}
	c.Session.CookieName = getEnv("SCREENSMITH_COOKIE_NAME", c.Session.CookieName)

	if c.Pipeline.MaxAttempts, err = getIntEnv("SCREENSMITH_MAX_ATTEMPTS", c.Pipeline.MaxAttempts); err != nil {
		return err
	}
	if c.Pipeline.BackoffUnit, err = getDurationEnv("SCREENSMITH_BACKOFF_UNIT", c.Pipeline.BackoffUnit); err != nil {
		return err
	}
	if c.Pipeline.LaunchStagger, err = getDurationEnv("SCREENSMITH_LAUNCH_STAGGER", c.Pipeline.LaunchStagger); err != nil {
		return err
	}

	c.Log.Level = getEnv("SCREENSMITH_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SCREENSMITH_LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate checks the settings that would otherwise fail at first request.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.LLM.UseMock {
		return nil
	}

	switch c.LLM.Backend {
	case BackendGeminiAPI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for the gemini backend (or enable the mock LLM)")
		}
	case BackendVertex:
		if c.LLM.GCPProjectID == "" {
			return fmt.Errorf("SCREENSMITH_GCP_PROJECT must be set for the vertex backend")
		}
	default:
		return fmt.Errorf("unknown llm backend %q", c.LLM.Backend)
	}
	return nil
}

// SecureCookies reports whether session cookies carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Mode == ModeProduction
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
