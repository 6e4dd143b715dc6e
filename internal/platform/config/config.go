// Package config loads service settings with precedence ENV > file > defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata" // business time zone must resolve in minimal containers

	"github.com/srgjo27/class_booking/internal/core/domain"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store    string         `yaml:"store"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Booking  BookingConfig  `yaml:"booking"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
	Log      LogConfig      `yaml:"log"`

	// Catalog seeds the in-memory store. Ignored by the postgres store,
	// which reads the catalog tables.
	Catalog CatalogSeed `yaml:"catalog"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// BookingRateLimit is the number of POST /bookings allowed per client IP
	// within BookingRateWindow. Zero disables the limiter.
	BookingRateLimit  int           `yaml:"booking_rate_limit"`
	BookingRateWindow time.Duration `yaml:"booking_rate_window"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type BookingConfig struct {
	// Timezone is the IANA name of the business time zone all cutoffs are
	// evaluated in.
	Timezone     string                    `yaml:"timezone"`
	HoldDuration time.Duration             `yaml:"hold_duration"`
	Window       domain.RegistrationWindow `yaml:"window"`
}

// Location resolves Timezone.
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

type SweeperConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type CatalogSeed struct {
	Languages  []string       `yaml:"languages"`
	Schedules  []ScheduleSeed `yaml:"schedules"`
	Capacities []CapacitySeed `yaml:"capacities"`
	Prices     []PriceSeed    `yaml:"prices"`
}

type ScheduleSeed struct {
	ClassType domain.ClassType `yaml:"class_type"`
	StartTime string           `yaml:"start_time"`
}

type CapacitySeed struct {
	ClassType   domain.ClassType `yaml:"class_type"`
	MinCapacity int              `yaml:"min"`
	MaxCapacity int              `yaml:"max"`
}

type PriceSeed struct {
	ClassType domain.ClassType           `yaml:"class_type"`
	Currency  string                     `yaml:"currency"`
	Category  domain.ParticipantCategory `yaml:"category"`
	UnitPrice int64                      `yaml:"unit_price"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store: StorePostgres,
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			BookingRateLimit:  30,
			BookingRateWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			DBName:       "class_booking",
			SSLMode:      "disable",
			MaxOpenConns: 25,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			CacheTTL: 30 * time.Second,
		},
		Booking: BookingConfig{
			Timezone:     "Europe/Madrid",
			HoldDuration: 10 * time.Minute,
			Window: domain.RegistrationWindow{
				CloseBeforeStart:       60,
				FinalRegistrationClose: 15,
			},
		},
		Sweeper: SweeperConfig{
			Interval:  time.Minute,
			BatchSize: 100,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks cross-field constraints, including the registration window.
func (c Config) Validate() error {
	var errs []error

	switch c.Store {
	case StorePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}

	if _, err := c.Booking.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Booking.HoldDuration <= 0 {
		errs = append(errs, fmt.Errorf("booking.hold_duration must be positive, got %s", c.Booking.HoldDuration))
	}
	if err := c.Booking.Window.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sweeper.Interval <= 0 {
		errs = append(errs, fmt.Errorf("sweeper.interval must be positive, got %s", c.Sweeper.Interval))
	}
	if c.Sweeper.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("sweeper.batch_size must be positive, got %d", c.Sweeper.BatchSize))
	}
	if c.HTTP.BookingRateLimit < 0 {
		errs = append(errs, fmt.Errorf("http.booking_rate_limit must not be negative, got %d", c.HTTP.BookingRateLimit))
	}
	if c.HTTP.BookingRateLimit > 0 && c.HTTP.BookingRateWindow <= 0 {
		errs = append(errs, errors.New("http.booking_rate_window must be positive when the rate limit is enabled"))
	}
	for _, cp := range c.Catalog.Capacities {
		rule := domain.CapacityRule{ClassType: cp.ClassType, MinCapacity: cp.MinCapacity, MaxCapacity: cp.MaxCapacity}
		if err := rule.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
