package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: file::memory:
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Feed.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Feed.Tick)
	assert.Equal(t, []int{8, 9, 10, 11, 14, 15, 16, 17}, cfg.Booking.SlotHours)
	assert.Equal(t, time.Hour, cfg.Booking.SlotLength)
	assert.Equal(t, time.Local, cfg.Booking.Location)
	assert.Len(t, cfg.Rooms, 18)
	assert.Equal(t, "Sala 1", cfg.RoomLabels()[0])
	assert.Equal(t, 60*time.Second, cfg.Staff.CacheTTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
app:
  environment: production
  log_level: warn
database:
  driver: sqlite
  dsn: file:test.db
booking:
  timezone: UTC
  slot_hours: [9, 10]
rooms:
  - {label: A, x: 1, y: 2, width: 3, height: 4}
  - {label: B}
push:
  vapid_public_key: pub
  vapid_private_key: priv
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, time.UTC, cfg.Booking.Location)
	assert.Equal(t, []int{9, 10}, cfg.Booking.SlotHours)
	assert.Equal(t, []string{"A", "B"}, cfg.RoomLabels())
	assert.Equal(t, 3.0, cfg.Rooms[0].Width)
	assert.True(t, cfg.Push.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("APP_ENV", "staging")

	path := writeConfig(t, `
database:
  dsn: postgres://file
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "redis:6379", cfg.Feed.RedisAddr)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"missing dsn", "database: {driver: sqlite}\n"},
		{"unknown driver", "database: {driver: mysql, dsn: x}\n"},
		{"bad hour", "database: {dsn: x}\nbooking: {slot_hours: [25]}\n"},
		{"bad timezone", "database: {dsn: x}\nbooking: {timezone: Nowhere/Land}\n"},
		{"duplicate room", "database: {dsn: x}\nrooms: [{label: A}, {label: A}]\n"},
		{"empty room label", "database: {dsn: x}\nrooms: [{label: \"\"}]\n"},
		{"bad log level", "app: {log_level: loud}\ndatabase: {dsn: x}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_DSN", "")
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
