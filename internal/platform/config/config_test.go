package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/srgjo27/class_booking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 10*time.Minute, cfg.Booking.HoldDuration)
	assert.Equal(t, time.Minute, cfg.Sweeper.Interval)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
store: memory
booking:
  timezone: America/Mexico_City
  hold_duration: 15m
  window:
    close_before_start_minutes: 30
    final_registration_close_minutes: 10
catalog:
  languages: [en, es]
  schedules:
    - {class_type: NORMAL, start_time: "10:00"}
  capacities:
    - {class_type: NORMAL, min: 2, max: 8}
  prices:
    - {class_type: NORMAL, currency: USD, category: ADULT, unit_price: 1000}
`)
	t.Setenv("HOLD_DURATION", "5m")
	t.Setenv("SWEEP_BATCH_SIZE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "America/Mexico_City", cfg.Booking.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.Booking.HoldDuration)
	assert.Equal(t, 25, cfg.Sweeper.BatchSize)
	assert.Equal(t, domain.RegistrationWindow{CloseBeforeStart: 30, FinalRegistrationClose: 10}, cfg.Booking.Window)
	require.Len(t, cfg.Catalog.Prices, 1)
	assert.Equal(t, int64(1000), cfg.Catalog.Prices[0].UnitPrice)
	assert.Equal(t, domain.CategoryAdult, cfg.Catalog.Prices[0].Category)
}

func TestLoad_RejectsInconsistentWindow(t *testing.T) {
	t.Setenv("CLOSE_BEFORE_START_MINUTES", "10")
	t.Setenv("FINAL_REGISTRATION_CLOSE_MINUTES", "30")

	_, err := Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "config.yaml", "booking:\n  hold_minutes: 5\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store = "bolt"
	cfg.Booking.Timezone = "Mars/Olympus"
	cfg.Sweeper.Interval = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store must be")
	assert.Contains(t, err.Error(), "Mars/Olympus")
	assert.Contains(t, err.Error(), "sweeper.interval")
}

// unsetForTest clears key for the duration of the test and restores it after.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	path := writeFile(t, ".env", "# local\nDB_NAME=from_file\nDB_USER=\"file_user\"\n")
	t.Setenv("DB_NAME", "from_env")
	unsetForTest(t, "DB_USER")

	LoadDotEnv(path, zerolog.Nop())

	assert.Equal(t, "from_env", os.Getenv("DB_NAME"))
	assert.Equal(t, "file_user", os.Getenv("DB_USER"))
}

func TestLoadDotEnv_Syntax(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_PASSWORD", "REDIS_PASSWORD"} {
		unsetForTest(t, key)
	}

	path := writeFile(t, ".env", strings.Join([]string{
		"export DB_HOST=db.internal",
		"DB_PORT=6543 # local override",
		`DB_PASSWORD="p\"w#1"`,
		"REDIS_PASSWORD='single quoted'",
	}, "\n"))

	LoadDotEnv(path, zerolog.Nop())

	assert.Equal(t, "db.internal", os.Getenv("DB_HOST"))
	assert.Equal(t, "6543", os.Getenv("DB_PORT"))
	assert.Equal(t, `p"w#1`, os.Getenv("DB_PASSWORD"))
	assert.Equal(t, "single quoted", os.Getenv("REDIS_PASSWORD"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	unsetForTest(t, "DB_NAME")

	LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), zerolog.Nop())

	_, ok := os.LookupEnv("DB_NAME")
	assert.False(t, ok)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 60, cfg.Booking.Window.CloseBeforeStart)
	assert.Len(t, cfg.Catalog.Schedules, 3)
	assert.Equal(t, domain.CategoryChild, cfg.Catalog.Prices[1].Category)
}
