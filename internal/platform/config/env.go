package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// LoadDotEnv copies variables from a .env file into the process environment.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv(path string, log zerolog.Logger) {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		log.Debug().Str("path", path).Msg("loaded .env file")
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("no .env file, using process environment")
	default:
		log.Warn().Err(err).Str("path", path).Msg("failed to read .env file")
	}
}

func applyEnv(cfg *Config) {
	cfg.Store = envString("STORE", cfg.Store)

	cfg.HTTP.Addr = envString("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.BookingRateLimit = envInt("BOOKING_RATE_LIMIT", cfg.HTTP.BookingRateLimit)

	cfg.Database.Host = envString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envString("DB_PORT", cfg.Database.Port)
	cfg.Database.User = envString("DB_USER", cfg.Database.User)
	cfg.Database.Password = envString("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = envString("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = envString("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Enabled = envBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Host = envString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = envString("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = envString("REDIS_PASSWORD", cfg.Redis.Password)

	cfg.Booking.Timezone = envString("BUSINESS_TIMEZONE", cfg.Booking.Timezone)
	cfg.Booking.HoldDuration = envDuration("HOLD_DURATION", cfg.Booking.HoldDuration)
	cfg.Booking.Window.CloseBeforeStart = envInt("CLOSE_BEFORE_START_MINUTES", cfg.Booking.Window.CloseBeforeStart)
	cfg.Booking.Window.FinalRegistrationClose = envInt("FINAL_REGISTRATION_CLOSE_MINUTES", cfg.Booking.Window.FinalRegistrationClose)

	cfg.Sweeper.Interval = envDuration("SWEEP_INTERVAL", cfg.Sweeper.Interval)
	cfg.Sweeper.BatchSize = envInt("SWEEP_BATCH_SIZE", cfg.Sweeper.BatchSize)

	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
