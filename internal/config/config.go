// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone         = "UTC"
	defaultSessionTTL       = 2 * time.Hour
	defaultSessionPruneCron = "*/15 * * * *"
	defaultPhoneRegion      = "DE"
	defaultLoginAttempts    = 5
	defaultLoginLockout     = 5 * time.Minute
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	SessionTTL       time.Duration `yaml:"session_ttl"`
	SessionPruneCron string        `yaml:"session_prune_cron"`
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	LoginLockout     time.Duration `yaml:"login_lockout"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		ClubName    string `yaml:"club_name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Timezone    string `yaml:"timezone"`
		TrustProxy  bool   `yaml:"trust_proxy"`
		Theme       struct {
			Primary string `yaml:"primary"`
			Accent  string `yaml:"accent"`
		} `yaml:"theme"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Auth AuthConfig `yaml:"auth"`

	Players struct {
		PhoneRegion string `yaml:"phone_region"`
	} `yaml:"players"`
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

	if port := os.Getenv("PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &cfg.App.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML config data and fills in defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Timezone == "" {
		c.App.Timezone = defaultTimezone
	}
	if c.App.ClubName == "" {
		c.App.ClubName = c.App.Name
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = defaultSessionTTL
	}
	if strings.TrimSpace(c.Auth.SessionPruneCron) == "" {
		c.Auth.SessionPruneCron = defaultSessionPruneCron
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		c.Auth.MaxLoginAttempts = defaultLoginAttempts
	}
	if c.Auth.LoginLockout <= 0 {
		c.Auth.LoginLockout = defaultLoginLockout
	}
	if c.Players.PhoneRegion == "" {
		c.Players.PhoneRegion = defaultPhoneRegion
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
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

	if _, err := cron.ParseStandard(c.Auth.SessionPruneCron); err != nil {
		return fmt.Errorf("invalid session prune cron %q: %w", c.Auth.SessionPruneCron, err)
	}

	return nil
}

// Location returns the club's time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
