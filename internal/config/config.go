package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "HERDBOOK_"

// Config represents the full application configuration surface.
type Config struct {
	LogLevel    string            `env:"LOG_LEVEL" envDefault:"info"`
	Server      ServerConfig      `envPrefix:"SERVER_"`
	Database    DatabaseConfig    `envPrefix:"DB_"`
	Auth        AuthConfig        `envPrefix:"AUTH_"`
	MongoDB     MongoDBConfig     `envPrefix:"MONGODB_"`
	Sheets      SheetsConfig      `envPrefix:"SHEETS_"`
	WhatsApp    WhatsAppConfig    `envPrefix:"WHATSAPP_"`
	Reporting   ReportingConfig   `envPrefix:"REPORT_"`
	Attachments AttachmentsConfig `envPrefix:"ATTACHMENTS_"`
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// DatabaseConfig selects the relational backend.
type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	DSN    string `env:"DSN" envDefault:"postgres://localhost/herdbook?sslmode=disable"`
	Debug  bool   `env:"DEBUG"`
}

// AuthConfig holds the shared secret used to sign and verify farm tokens.
type AuthConfig struct {
	Secret string `env:"SECRET"`
	Issuer string `env:"ISSUER" envDefault:"herdbook"`
}

// MongoDBConfig holds settings for the report archive. An empty URI disables it.
type MongoDBConfig struct {
	URI    string `env:"URI"`
	DBName string `env:"DB_NAME" envDefault:"herdbook"`
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
// Both fields empty disables the export.
type SheetsConfig struct {
	CredentialsPath string `env:"CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"SPREADSHEET_ID"`
	ReportRange     string `env:"REPORT_RANGE" envDefault:"Reports!A:H"`
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. An empty
// access token disables report delivery.
type WhatsAppConfig struct {
	AccessToken   string `env:"TOKEN"`
	PhoneNumberID string `env:"PHONE_NUMBER_ID"`
	BaseURL       string `env:"BASE_URL" envDefault:"https://graph.facebook.com"`
	APIVersion    string `env:"API_VERSION" envDefault:"v20.0"`
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string `env:"CRON_SCHEDULE" envDefault:"0 20 * * 5"`
	Timezone     string `env:"TIMEZONE" envDefault:"UTC"`
}

// AttachmentsConfig selects where note files are kept.
type AttachmentsConfig struct {
	Driver    string `env:"DRIVER" envDefault:"memory"`
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	PathStyle bool   `env:"S3_PATH_STYLE"`
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
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
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
		return errors.New("HERDBOOK_SERVER_PORT must be provided")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("HERDBOOK_DB_DRIVER %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("HERDBOOK_DB_DSN must be provided")
	}

	if len(c.Auth.Secret) < 16 {
		return errors.New("HERDBOOK_AUTH_SECRET must be at least 16 characters")
	}

	if c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID == "" {
		return errors.New("HERDBOOK_WHATSAPP_PHONE_NUMBER_ID must be provided with a token")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("HERDBOOK_SHEETS_CREDENTIALS_PATH and HERDBOOK_SHEETS_SPREADSHEET_ID go together")
	}

	switch strings.ToLower(c.Attachments.Driver) {
	case "memory":
	case "s3":
		if c.Attachments.Bucket == "" {
			return errors.New("HERDBOOK_ATTACHMENTS_S3_BUCKET must be provided for the s3 driver")
		}
	default:
		return fmt.Errorf("HERDBOOK_ATTACHMENTS_DRIVER %q is not supported", c.Attachments.Driver)
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("HERDBOOK_REPORT_CRON_SCHEDULE must be provided")
	}

	return nil
}

// MongoEnabled reports whether a report archive is configured.
func (c *Config) MongoEnabled() bool { return c.MongoDB.URI != "" }

// SheetsEnabled reports whether report export to Google Sheets is configured.
func (c *Config) SheetsEnabled() bool { return c.Sheets.SpreadsheetID != "" }

// WhatsAppEnabled reports whether reports can be delivered over WhatsApp.
func (c *Config) WhatsAppEnabled() bool { return c.WhatsApp.AccessToken != "" }
