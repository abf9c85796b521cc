package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080"},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{Driver: StorageMemory},
		MongoDB: MongoDBConfig{DBName: "mealledger"},
		WhatsApp: WhatsAppConfig{
			BaseURL:    "https://graph.facebook.com",
			APIVersion: "v20.0",
		},
		Rollup: RollupConfig{
			CronSchedule:          "0 6 1 * *",
			ReconcileCronSchedule: "0 18 * * *",
			Timezone:              "UTC",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "STORAGE_DRIVER"},
		{"mongodb without uri", func(c *Config) { c.Storage.Driver = StorageMongoDB }, "MONGODB_URI"},
		{"mongodb with uri", func(c *Config) {
			c.Storage.Driver = StorageMongoDB
			c.MongoDB.URI = "mongodb://localhost:27017"
		}, ""},
		{"half sheets config", func(c *Config) { c.Sheets.CredentialsPath = "creds.json" }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"half whatsapp config", func(c *Config) { c.WhatsApp.AccessToken = "token" }, "WHATSAPP_TOKEN"},
		{"whatsapp without version", func(c *Config) {
			c.WhatsApp.AccessToken = "token"
			c.WhatsApp.PhoneNumberID = "555"
			c.WhatsApp.APIVersion = ""
		}, "WHATSAPP_API_VERSION"},
		{"missing rollup schedule", func(c *Config) { c.Rollup.CronSchedule = "" }, "ROLLUP_CRON_SCHEDULE"},
		{"missing reconcile schedule", func(c *Config) { c.Rollup.ReconcileCronSchedule = "" }, "RECONCILE_CRON_SCHEDULE"},
		{"bad timezone", func(c *Config) { c.Rollup.Timezone = "Nowhere/City" }, "TIMEZONE"},
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

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", StorageMemory)
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "0 6 1 * *", cfg.Rollup.CronSchedule)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
}

func TestNilConfig(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
