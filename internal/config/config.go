package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Email struct {
		SendGridKey   string `yaml:"sendgrid_key"`
		From          string `yaml:"from"`
		TestRecipient string `yaml:"test_recipient"`
	} `yaml:"email"`

	Push struct {
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"push"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		Path          string `yaml:"path"`
		IntervalHours int    `yaml:"interval_hours"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address             string `yaml:"address"`
		Password            string `yaml:"password"`
		DB                  int    `yaml:"db"`
		DirectoryTTLSeconds int    `yaml:"directory_ttl_seconds"`
	} `yaml:"redis"`

	Schedule struct {
		Timezone             string   `yaml:"timezone"`
		CheckIntervalSeconds int      `yaml:"check_interval_seconds"`
		MarkNotResponded     string   `yaml:"mark_not_responded"`
		IntervalPush         []string `yaml:"interval_push"`
		MorningEmail         string   `yaml:"morning_email"`
		EveningEmail         string   `yaml:"evening_email"`
	} `yaml:"schedule"`

	Dispatch struct {
		MaxConcurrent int     `yaml:"max_concurrent"`
		SendRate      float64 `yaml:"send_rate"`
		SendBurst     int     `yaml:"send_burst"`
	} `yaml:"dispatch"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Audit struct {
		Enabled       bool `yaml:"enabled"`
		RetentionDays int  `yaml:"retention_days"`
	} `yaml:"audit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/wordpair.db"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/Chicago"
	}
	if c.Schedule.CheckIntervalSeconds <= 0 {
		c.Schedule.CheckIntervalSeconds = 30
	}
	if c.Schedule.MarkNotResponded == "" {
		c.Schedule.MarkNotResponded = "10:00"
	}
	if len(c.Schedule.IntervalPush) == 0 {
		c.Schedule.IntervalPush = []string{"13:00", "16:00", "19:00", "22:00"}
	}
	if c.Schedule.MorningEmail == "" {
		c.Schedule.MorningEmail = "08:00"
	}
	if c.Schedule.EveningEmail == "" {
		c.Schedule.EveningEmail = "15:35"
	}
	if c.Dispatch.MaxConcurrent <= 0 {
		c.Dispatch.MaxConcurrent = 1
	}
	if c.Dispatch.SendRate <= 0 {
		c.Dispatch.SendRate = 20
	}
	if c.Dispatch.SendBurst <= 0 {
		c.Dispatch.SendBurst = 30
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = 31
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.RetentionDays <= 0 {
		c.Backup.RetentionDays = 7
	}
}

// CheckInterval returns the scheduler tick interval.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Schedule.CheckIntervalSeconds) * time.Second
}

// DirectoryCacheTTL returns the redis cache TTL for directory reads.
func (c *Config) DirectoryCacheTTL() time.Duration {
	return time.Duration(c.Redis.DirectoryTTLSeconds) * time.Second
}

// AuditRetention returns how long audit rows are kept.
func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.Audit.RetentionDays) * 24 * time.Hour
}

// Validate checks that required transport settings are present.
func (c *Config) Validate() error {
	if c.Email.SendGridKey == "" {
		return fmt.Errorf("email.sendgrid_key is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("email.from is required")
	}
	return nil
}
