package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is read from an optional .env file (toml) and overridden by the environment */

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	NodeEnv             string        `mapstructure:"NODE_ENV"`
	LoginWebhookURL     string        `mapstructure:"LOGIN_WEBHOOK_URL"`
	LogoutWebhookURL    string        `mapstructure:"LOGOUT_WEBHOOK_URL"`
	WebhookSigningKey   string        `mapstructure:"WEBHOOK_SIGNING_SECRET"`
	RoutesFile          string        `mapstructure:"ROUTES_FILE"`
	WebhookTimeout      time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
	JobRetention        time.Duration `mapstructure:"JOB_RETENTION"`
	ReaperInterval      time.Duration `mapstructure:"REAPER_INTERVAL"`
	RecentActivityLimit int           `mapstructure:"RECENT_ACTIVITY_LIMIT"`
	ShutdownTimeout     time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"PORT":                   "3000",
	"ENV":                    "",
	"NODE_ENV":               "",
	"LOGIN_WEBHOOK_URL":      "http://localhost:5678/webhook/attendance-login",
	"LOGOUT_WEBHOOK_URL":     "http://localhost:5678/webhook/attendance-logout",
	"WEBHOOK_SIGNING_SECRET": "",
	"ROUTES_FILE":            "",
	"WEBHOOK_TIMEOUT":        "30s",
	"JOB_RETENTION":          "1h",
	"REAPER_INTERVAL":        "30m",
	"RECENT_ACTIVITY_LIMIT":  10,
	"SHUTDOWN_TIMEOUT":       "30s",
}

func GetConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err := v.ReadInConfig()
	if err != nil {
		// the file is optional; the environment alone is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// IsDev reports whether the service runs in development mode
func (c *Config) IsDev() bool {
	for _, env := range []string{c.Env, c.NodeEnv} {
		switch strings.ToLower(strings.TrimSpace(env)) {
		case "development", "dev":
			return true
		}
	}
	return false
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("invalid config: PORT cannot be empty")
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"WEBHOOK_TIMEOUT", c.WebhookTimeout},
		{"JOB_RETENTION", c.JobRetention},
		{"REAPER_INTERVAL", c.ReaperInterval},
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("invalid config: %s must be positive, got %s", d.name, d.value)
		}
	}
	if c.RecentActivityLimit <= 0 {
		return fmt.Errorf("invalid config: RECENT_ACTIVITY_LIMIT must be positive, got %d", c.RecentActivityLimit)
	}
	if c.RoutesFile == "" && strings.TrimSpace(c.LoginWebhookURL) == "" {
		return errors.New("invalid config: LOGIN_WEBHOOK_URL is required when ROUTES_FILE is not set")
	}
	return nil
}
