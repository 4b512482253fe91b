package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceAPI    = "api"
	SourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	WhatsApp  WhatsAppConfig
	MongoDB   MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
	// BasicAuthUser and BasicAuthPassword gate every route except the health check when both are set.
	BasicAuthUser     string
	BasicAuthPassword string
	LogLevel          string
	LogFormat         string
	// SessionTTL is how long a login stays valid without activity; zero disables expiry.
	SessionTTL time.Duration
}

// BackendConfig points at the spreadsheet-backed action endpoint.
type BackendConfig struct {
	Source  string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SheetsConfig contains configuration required to read the spreadsheet directly.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ItemsRange      string
	UsersRange      string
	HistoryRange    string
	StatsRange      string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	ReloadSchedule       string
	CronSchedule         string
	SessionSweepSchedule string
	Timezone             string
}

// WhatsAppConfig contains credentials for low-stock alerts. Alerts are off without an access token.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether alert delivery is configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
}

// MongoDBConfig holds settings for the report archive. The archive is off without a URI.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:              getenvWithDefault("APP_PORT", "8080"),
			BasicAuthUser:     os.Getenv("BASIC_AUTH_USER"),
			BasicAuthPassword: os.Getenv("BASIC_AUTH_PASSWORD"),
			LogLevel:          getenvWithDefault("LOG_LEVEL", "info"),
			LogFormat:         getenvWithDefault("LOG_FORMAT", "json"),
			SessionTTL:        getenvDuration("SESSION_TTL", 12*time.Hour),
		},
		Backend: BackendConfig{
			Source:  getenvWithDefault("DATA_SOURCE", SourceAPI),
			BaseURL: os.Getenv("INVENTORY_API_URL"),
			APIKey:  os.Getenv("INVENTORY_API_KEY"),
			Timeout: getenvDuration("INVENTORY_API_TIMEOUT", 20*time.Second),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			ItemsRange:      getenvWithDefault("SHEET_ITEMS_RANGE", "Items!A:I"),
			UsersRange:      getenvWithDefault("SHEET_USERS_RANGE", "Users!A:D"),
			HistoryRange:    getenvWithDefault("SHEET_HISTORY_RANGE", "History!A:F"),
			StatsRange:      getenvWithDefault("SHEET_STATS_RANGE", "Stats!A:C"),
		},
		Reporting: ReportingConfig{
			ReloadSchedule:       getenvWithDefault("RELOAD_SCHEDULE", "@every 5m"),
			CronSchedule:         getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			SessionSweepSchedule: getenvWithDefault("SESSION_SWEEP_SCHEDULE", "@every 10m"),
			Timezone:             getenvWithDefault("TIMEZONE", "UTC"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockdesk"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("APP_PORT %q must be a number between 1 and 65535", c.Server.Port)
	}

	if (c.Server.BasicAuthUser == "") != (c.Server.BasicAuthPassword == "") {
		return errors.New("BASIC_AUTH_USER and BASIC_AUTH_PASSWORD must be set together")
	}

	switch c.Backend.Source {
	case SourceAPI:
		if c.Backend.BaseURL == "" {
			return errors.New("INVENTORY_API_URL must be provided")
		}
		if c.Backend.APIKey == "" {
			return errors.New("INVENTORY_API_KEY must be provided")
		}
	case SourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("DATA_SOURCE %q must be %q or %q", c.Backend.Source, SourceAPI, SourceSheets)
	}

	if c.Backend.Timeout <= 0 {
		return errors.New("INVENTORY_API_TIMEOUT must be positive")
	}

	if c.Reporting.ReloadSchedule == "" {
		return errors.New("RELOAD_SCHEDULE must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Server.SessionTTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.PhoneNumberID == "" {
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when WHATSAPP_TOKEN is set")
		}
		if c.WhatsApp.AlertRecipient == "" {
			return errors.New("WHATSAPP_ALERT_RECIPIENT must be provided when WHATSAPP_TOKEN is set")
		}
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	return nil
}

// Location returns the time zone used for calendar bucketing.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
