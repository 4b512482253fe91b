package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Backend:   BackendConfig{Source: SourceAPI, BaseURL: "https://example.test/exec", APIKey: "k", Timeout: time.Second},
		Reporting: ReportingConfig{ReloadSchedule: "@every 5m", CronSchedule: "0 20 * * *", Timezone: "UTC"},
		MongoDB:   MongoDBConfig{DBName: "stockdesk"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid api source", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: "APP_PORT"},
		{name: "missing api url", mutate: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: "INVENTORY_API_URL"},
		{name: "missing api key", mutate: func(c *Config) { c.Backend.APIKey = "" }, wantErr: "INVENTORY_API_KEY"},
		{name: "unknown source", mutate: func(c *Config) { c.Backend.Source = "csv" }, wantErr: "DATA_SOURCE"},
		{name: "sheets without credentials", mutate: func(c *Config) {
			c.Backend.Source = SourceSheets
			c.Sheets.SpreadsheetID = "sheet"
		}, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "half basic auth", mutate: func(c *Config) { c.Server.BasicAuthUser = "staff" }, wantErr: "BASIC_AUTH"},
		{name: "negative session ttl", mutate: func(c *Config) { c.Server.SessionTTL = -time.Minute }, wantErr: "SESSION_TTL"},
		{name: "bad timezone", mutate: func(c *Config) { c.Reporting.Timezone = "Mars/Base" }, wantErr: "TIMEZONE"},
		{name: "whatsapp without recipient", mutate: func(c *Config) {
			c.WhatsApp.AccessToken = "t"
			c.WhatsApp.PhoneNumberID = "p"
		}, wantErr: "WHATSAPP_ALERT_RECIPIENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
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

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "INVENTORY_API_URL=https://script.example/exec\nINVENTORY_API_KEY=secret\nTIMEZONE=Africa/Conakry\nINVENTORY_API_TIMEOUT=5s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, key := range []string{"INVENTORY_API_URL", "INVENTORY_API_KEY", "TIMEZONE", "INVENTORY_API_TIMEOUT", "DATA_SOURCE", "SESSION_TTL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, SourceAPI, cfg.Backend.Source)
	assert.Equal(t, "https://script.example/exec", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "Africa/Conakry", cfg.Location().String())
	assert.Equal(t, "@every 5m", cfg.Reporting.ReloadSchedule)
	assert.Equal(t, "@every 10m", cfg.Reporting.SessionSweepSchedule)
	assert.Equal(t, 12*time.Hour, cfg.Server.SessionTTL)
}

func TestLoadMissingEnvFileFallsBackToEnvironment(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "https://script.example/exec")
	t.Setenv("INVENTORY_API_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Backend.APIKey)
}
