// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
	// BusyTimeoutMS is passed to go-sqlite3 as _busy_timeout.
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

type BookingConfig struct {
	// Operating hours as HH:MM; slot listings cover [OpensAt, ClosesAt).
	OpensAt          string        `yaml:"opens_at"`
	ClosesAt         string        `yaml:"closes_at"`
	MaxRecurringDays int           `yaml:"max_recurring_days"`
	PendingTTL       time.Duration `yaml:"pending_ttl"`
	Timezone         string        `yaml:"timezone"`
}

type WalletConfig struct {
	RequireDepositApproval bool `yaml:"require_deposit_approval"`
	// Per-member token bucket for deposit/withdraw requests.
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

type MembersConfig struct {
	// PhoneRegion is the ISO country assumed for numbers without a +prefix.
	PhoneRegion string `yaml:"phone_region"`
}

type SchedulerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type NotificationsConfig struct {
	// Drivers is any combination of "log", "amqp" and "ses".
	Drivers  []string `yaml:"drivers"`
	Exchange string   `yaml:"exchange"`
	AMQPURL  string   `yaml:"-"` // Loaded from environment

	SESRegion string `yaml:"ses_region"`
	Sender    string `yaml:"sender"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database      DatabaseConfig      `yaml:"database"`
	Booking       BookingConfig       `yaml:"booking"`
	Wallet        WalletConfig        `yaml:"wallet"`
	Members       MembersConfig       `yaml:"members"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Notifications NotificationsConfig `yaml:"notifications"`

	Features struct {
		EnableMetrics bool `yaml:"enable_metrics"`
		EnableDebug   bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Notifications.AMQPURL = os.Getenv("AMQP_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used for any key the YAML file omits.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "pickleclub"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database = DatabaseConfig{
		Driver:        "sqlite",
		Filename:      "data/club.db",
		BusyTimeoutMS: 5000,
	}
	cfg.Booking = BookingConfig{
		OpensAt:          "06:00",
		ClosesAt:         "22:00",
		MaxRecurringDays: 90,
		PendingTTL:       5 * time.Minute,
		Timezone:         "UTC",
	}
	cfg.Wallet = WalletConfig{
		RequestsPerMinute: 30,
		Burst:             5,
	}
	cfg.Members.PhoneRegion = "US"
	cfg.Scheduler.SweepInterval = 5 * time.Minute
	cfg.Notifications = NotificationsConfig{
		Drivers:  []string{"log"},
		Exchange: "club.events",
	}
	return cfg
}

// Location resolves Booking.Timezone; "tomorrow" for reminders is computed in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Booking.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Booking.Timezone)
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	opens, err := parseClock(c.Booking.OpensAt)
	if err != nil {
		return fmt.Errorf("booking opens_at: %w", err)
	}
	closes, err := parseClock(c.Booking.ClosesAt)
	if err != nil {
		return fmt.Errorf("booking closes_at: %w", err)
	}
	if !opens.Before(closes) {
		return fmt.Errorf("booking opens_at must be before closes_at")
	}
	if c.Booking.MaxRecurringDays <= 0 {
		return fmt.Errorf("booking max_recurring_days must be positive")
	}
	if c.Booking.PendingTTL <= 0 {
		return fmt.Errorf("booking pending_ttl must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("booking timezone: %w", err)
	}

	if c.Wallet.RequestsPerMinute < 0 || c.Wallet.Burst < 0 {
		return fmt.Errorf("wallet rate limits must not be negative")
	}
	if len(strings.TrimSpace(c.Members.PhoneRegion)) != 2 {
		return fmt.Errorf("members phone_region must be a two-letter country code")
	}
	if c.Scheduler.SweepInterval <= 0 {
		return fmt.Errorf("scheduler sweep_interval must be positive")
	}

	for _, driver := range c.Notifications.Drivers {
		switch strings.ToLower(driver) {
		case "log":
		case "amqp":
			if c.Notifications.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL is required for the amqp notification driver")
			}
			if c.Notifications.Exchange == "" {
				return fmt.Errorf("notifications exchange is required for the amqp driver")
			}
		case "ses":
			if c.Notifications.SESRegion == "" || c.Notifications.Sender == "" {
				return fmt.Errorf("notifications ses_region and sender are required for the ses driver")
			}
		default:
			return fmt.Errorf("unsupported notification driver: %s", driver)
		}
	}

	return nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
