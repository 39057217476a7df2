package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		App:  AppConfig{Timezone: "America/Sao_Paulo"},
		API:  APIConfig{BaseURL: "http://localhost:8080/api"},
		Auth: AuthConfig{CookieName: "gj_client"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty timezone uses local", mutate: func(c *Config) { c.App.Timezone = "" }},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = " " }, wantErr: "api.base_url"},
		{name: "missing cookie name", mutate: func(c *Config) { c.Auth.CookieName = "" }, wantErr: "auth.cookie_name"},
		{name: "unknown timezone", mutate: func(c *Config) { c.App.Timezone = "America/Sao_Pablo" }, wantErr: "app.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DefaultsReadAttempts(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint(1), cfg.API.ReadAttempts)
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())

	cfg.App.Timezone = ""
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoadConfig_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus_Mons")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", cfg.App.Timezone)
	assert.Equal(t, "gj_client", cfg.Auth.CookieName)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}
