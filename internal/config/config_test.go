package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SCHEDULER_DB_PATH", filepath.Join(tmpDir, "scheduler.db"))

	yamlContent := `
app:
  name: "scheduler-test"
database:
  path: "${SCHEDULER_DB_PATH}"
booking:
  strict_approval: true
api:
  http:
    port: 8088
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "scheduler-test", cfg.App.Name)
	assert.Equal(t, filepath.Join(tmpDir, "scheduler.db"), cfg.Database.Path)
	assert.True(t, cfg.Booking.StrictApproval)
	assert.Equal(t, 8088, cfg.API.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.API.CORS.AllowedOrigins)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("app:\n  name: x\n"), 0o644))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path is required")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
		{
			name: "duplicate api keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{Auth: APIAuthConfig{
					Enabled: true,
					APIKeys: []APIClientKey{{Key: "k", Name: "a"}, {Key: "k", Name: "b"}},
				}},
			},
			wantErr: true,
		},
		{
			name: "telegram without token",
			cfg: Config{
				Database:      DatabaseConfig{Path: "path"},
				Notifications: NotificationsConfig{Telegram: TelegramConfig{Enabled: true, ManagerChatIDs: []int64{1}}},
			},
			wantErr: true,
		},
		{
			name: "telegram without chats",
			cfg: Config{
				Database:      DatabaseConfig{Path: "path"},
				Notifications: NotificationsConfig{Telegram: TelegramConfig{Enabled: true, BotToken: "token"}},
			},
			wantErr: true,
		},
		{
			name: "negative rate limit",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API:      APIConfig{RateLimit: APIRateLimitConfig{RPS: -1}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Backup.Enabled = true
	cfg.API.RateLimit.RPS = 5
	cfg.applyDefaults()

	assert.Equal(t, 5000, cfg.API.HTTP.Port)
	assert.Equal(t, 5001, cfg.API.GRPC.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "configs/venues.yaml", cfg.Venues.Path)
	assert.Equal(t, "24h", cfg.Backup.Interval)
	assert.Equal(t, 7, cfg.Backup.RetentionDays)
	assert.Equal(t, 6, cfg.API.RateLimit.Burst)
	assert.Equal(t, 0, cfg.Monitoring.PrometheusPort)
	assert.False(t, cfg.Booking.StrictApproval)
}
