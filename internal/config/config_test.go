package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SCREENSMITH_CONFIG", "SCREENSMITH_MODE", "SCREENSMITH_ADDR", "PORT", "SCREENSMITH_ALLOWED_ORIGINS",
		"SCREENSMITH_LLM_BACKEND", "GEMINI_API_KEY", "SCREENSMITH_GCP_PROJECT", "SCREENSMITH_GCP_LOCATION",
		"SCREENSMITH_ROUTER_MODEL", "SCREENSMITH_GENERATOR_MODEL", "SCREENSMITH_USE_MOCK_LLM",
		"SCREENSMITH_SESSION_TTL", "SCREENSMITH_COOKIE_MAX_AGE", "SCREENSMITH_COOKIE_NAME",
		"SCREENSMITH_MAX_ATTEMPTS", "SCREENSMITH_BACKOFF_UNIT", "SCREENSMITH_LAUNCH_STAGGER",
		"SCREENSMITH_LOG_LEVEL", "SCREENSMITH_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func ptr[T any](v T) *T { return &v }

func TestLoadDefaultsWithMock(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Overrides{UseMockLLM: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.CookieMaxAge)
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Pipeline.BackoffUnit)
	assert.Equal(t, 300*time.Millisecond, cfg.Pipeline.LaunchStagger)
	assert.False(t, cfg.SecureCookies())
}

func TestLoadRequiresCredentials(t *testing.T) {
	clearEnv(t)

	_, err := Load(Overrides{})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	t.Setenv("SCREENSMITH_LLM_BACKEND", "vertex")
	_, err = Load(Overrides{})
	assert.ErrorContains(t, err, "SCREENSMITH_GCP_PROJECT")

	t.Setenv("SCREENSMITH_GCP_PROJECT", "my-project")
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, BackendVertex, cfg.LLM.Backend)
}

func TestLoadFileThenEnvThenOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "screensmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: production
addr: ":9000"
allowed_origins: ["https://app.example.com"]
llm:
  backend: gemini
  api_key: from-file
  router_model: gemini-2.5-flash-lite
session:
  ttl: 2h
pipeline:
  max_attempts: 4
  launch_stagger: 100ms
log:
  level: warn
`), 0o600))

	t.Setenv("SCREENSMITH_CONFIG", path)
	t.Setenv("SCREENSMITH_ROUTER_MODEL", "from-env")
	t.Setenv("SCREENSMITH_SESSION_TTL", "90m")

	cfg, err := Load(Overrides{Addr: ptr(":7000"), Debug: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, ModeProduction, cfg.Mode)
	assert.True(t, cfg.SecureCookies())
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "from-env", cfg.LLM.RouterModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.GeneratorModel)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 4, cfg.Pipeline.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Pipeline.LaunchStagger)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadPortAndOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3001")
	t.Setenv("SCREENSMITH_ALLOWED_ORIGINS", "http://localhost:5173, https://x.dev ,")

	cfg, err := Load(Overrides{UseMockLLM: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Addr)
	assert.Equal(t, []string{"http://localhost:5173", "https://x.dev"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"SCREENSMITH_SESSION_TTL":  "soon",
		"SCREENSMITH_MAX_ATTEMPTS": "three",
		"SCREENSMITH_BACKOFF_UNIT": "1 second",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(Overrides{UseMockLLM: ptr(true)})
			assert.Error(t, err)
		})
	}

	t.Run("zero attempts", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SCREENSMITH_MAX_ATTEMPTS", "0")

		_, err := Load(Overrides{UseMockLLM: ptr(true)})
		assert.ErrorContains(t, err, "max_attempts")
	})
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(Overrides{ConfigPath: ptr(filepath.Join(t.TempDir(), "nope.yaml"))})
	assert.ErrorContains(t, err, "reading config file")
}
