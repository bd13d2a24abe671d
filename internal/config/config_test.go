package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"APP_PORT", "LOG_LEVEL", "STORE_DRIVER", "MONGODB_URI", "MONGODB_DB_NAME", "TIMEZONE",
	"PROVISION_CRON_SCHEDULE", "PAYROLL_EXPORT_CRON_SCHEDULE",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_HR_RECIPIENT",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_PAYROLL_ID",
}

// clearEnv blanks every key so values from the host do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, StoreMongoDB, cfg.Store.Driver)
	assert.Equal(t, "shiftpay", cfg.MongoDB.DBName)
	assert.Equal(t, "Asia/Kolkata", cfg.Calendar.Timezone)
	assert.Equal(t, "0 3 * * 1", cfg.Scheduler.ProvisionSchedule)
	assert.Equal(t, "0 6 1 * *", cfg.Scheduler.PayrollExportSchedule)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nSTORE_DRIVER=memory\nTIMEZONE=Europe/Paris\n" +
		"GOOGLE_SHEETS_CREDENTIALS_PATH=/secrets/sa.json\nGOOGLE_SHEET_PAYROLL_ID=sheet-1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	// godotenv does not override variables that are already set, even to "".
	for _, key := range []string{"APP_PORT", "STORE_DRIVER", "TIMEZONE", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_PAYROLL_ID"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "Europe/Paris", cfg.Calendar.Timezone)
	assert.True(t, cfg.Sheets.Enabled())
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
		{"bad provision cron", map[string]string{"PROVISION_CRON_SCHEDULE": "every monday"}, "PROVISION_CRON_SCHEDULE"},
		{"bad export cron", map[string]string{"PAYROLL_EXPORT_CRON_SCHEDULE": "61 * * * *"}, "PAYROLL_EXPORT_CRON_SCHEDULE"},
		{"unknown store", map[string]string{"STORE_DRIVER": "postgres"}, "STORE_DRIVER"},
		{"partial whatsapp", map[string]string{"WHATSAPP_TOKEN": "token"}, "WHATSAPP_PHONE_NUMBER_ID"},
		{"whatsapp without recipient", map[string]string{"WHATSAPP_TOKEN": "token", "WHATSAPP_PHONE_NUMBER_ID": "123"}, "WHATSAPP_HR_RECIPIENT"},
		{"partial sheets", map[string]string{"GOOGLE_SHEET_PAYROLL_ID": "sheet"}, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load(missingEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var cfg *Config
	assert.EqualError(t, cfg.Validate(), "config is nil")
}
