package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `app:
  name: "ClubConnect"
  club_name: "FC Example"
  environment: "development"
  port: 8080
  timezone: "Europe/Berlin"

database:
  driver: "sqlite"
  filename: "data/clubconnect.db"

auth:
  session_ttl: "90m"
  max_login_attempts: 3
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Auth.SessionTTL != 90*time.Minute {
		t.Fatalf("session ttl = %v, want 90m", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.MaxLoginAttempts != 3 {
		t.Fatalf("max login attempts = %d, want 3", cfg.Auth.MaxLoginAttempts)
	}
	if cfg.Auth.SessionPruneCron != defaultSessionPruneCron {
		t.Fatalf("prune cron = %q, want default", cfg.Auth.SessionPruneCron)
	}
	if cfg.Auth.LoginLockout != defaultLoginLockout {
		t.Fatalf("login lockout = %v, want default", cfg.Auth.LoginLockout)
	}
	if cfg.Players.PhoneRegion != defaultPhoneRegion {
		t.Fatalf("phone region = %q, want %q", cfg.Players.PhoneRegion, defaultPhoneRegion)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("location = %s", cfg.Location())
	}
}

func TestParseClubNameFallsBackToAppName(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  name: \"ClubConnect\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.App.ClubName != "ClubConnect" {
		t.Fatalf("club name = %q", cfg.App.ClubName)
	}
	if cfg.App.Timezone != defaultTimezone {
		t.Fatalf("timezone = %q", cfg.App.Timezone)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing_name", mutate: func(c *Config) { c.App.Name = "" }, wantErr: "app name"},
		{name: "missing_port", mutate: func(c *Config) { c.App.Port = 0 }, wantErr: "app port"},
		{name: "bad_timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "missing_driver", mutate: func(c *Config) { c.Database.Driver = "" }, wantErr: "driver is required"},
		{name: "unsupported_driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "unsupported"},
		{name: "missing_filename", mutate: func(c *Config) { c.Database.Filename = "" }, wantErr: "filename"},
		{name: "bad_cron", mutate: func(c *Config) { c.Auth.SessionPruneCron = "every minute" }, wantErr: "cron"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validConfig))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			test.mutate(cfg)

			err = cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestLoadReadsFileAndEnvPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.App.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
