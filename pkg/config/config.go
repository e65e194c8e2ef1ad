package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment sets a
// value.
const (
	DefaultAPIBaseURL       = "https://solman-trader.fly.dev"
	DefaultAPITimeoutSec    = 30
	DefaultHealthTimeoutSec = 5
	DefaultMinTokenLength   = 32
	DefaultMaxTokenLength   = 44
	DefaultLogLevel         = "info"
)

// Config is the full application configuration. It is constructed once in
// main and handed to the components that need it; there is no global
// configuration state.
type Config struct {
	// Telegram
	TelegramToken string `yaml:"telegram_token"`

	// Upstream trading API
	APIBaseURL       string `yaml:"api_base_url"`
	APIKey           string `yaml:"api_key"`
	APITimeoutSec    int    `yaml:"api_timeout_sec"`
	HealthTimeoutSec int    `yaml:"health_timeout_sec"`

	// Authorization
	OwnerID         int64   `yaml:"owner_id"`
	AuthorizedUsers []int64 `yaml:"authorized_users"`

	// Solana address bounds
	MinTokenLength int `yaml:"min_token_length"`
	MaxTokenLength int `yaml:"max_token_length"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Load builds the configuration. Precedence: environment > config file >
// defaults. filePath may be empty; a missing file at a non-empty path is an
// error.
func Load(filePath string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:       DefaultAPIBaseURL,
		APITimeoutSec:    DefaultAPITimeoutSec,
		HealthTimeoutSec: DefaultHealthTimeoutSec,
		MinTokenLength:   DefaultMinTokenLength,
		MaxTokenLength:   DefaultMaxTokenLength,
		LogLevel:         DefaultLogLevel,
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", filePath)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", filePath)
		}
	}

	applyEnv(cfg)

	// The owner is always part of the authorized baseline.
	if cfg.OwnerID != 0 && !containsID(cfg.AuthorizedUsers, cfg.OwnerID) {
		cfg.AuthorizedUsers = append(cfg.AuthorizedUsers, cfg.OwnerID)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.APIBaseURL, "API_BASE_URL")
	setString(&cfg.APIKey, "API_KEY")
	setInt(&cfg.APITimeoutSec, "API_TIMEOUT")
	setInt(&cfg.HealthTimeoutSec, "HEALTH_TIMEOUT")
	setInt64(&cfg.OwnerID, "OWNER_USER_ID")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")

	if raw := os.Getenv("AUTHORIZED_USERS"); raw != "" {
		cfg.AuthorizedUsers = parseIDList(raw)
	}
}

// Validate returns an error describing every hard misconfiguration at once.
// An unset owner is not an error: it switches the bot into open mode, which
// the caller must surface as a security warning.
func (c *Config) Validate() error {
	var problems []string

	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.APIBaseURL == "" {
		problems = append(problems, "API_BASE_URL is required")
	}
	if c.APIKey == "" {
		problems = append(problems, "API_KEY is required")
	}
	if c.APITimeoutSec <= 0 {
		problems = append(problems, "API_TIMEOUT must be positive")
	}
	if c.HealthTimeoutSec <= 0 {
		problems = append(problems, "HEALTH_TIMEOUT must be positive")
	}
	if c.MinTokenLength <= 0 || c.MaxTokenLength < c.MinTokenLength {
		problems = append(problems, "token length bounds are invalid")
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// OpenMode reports whether no owner is configured, in which case every user
// is treated as authorized.
func (c *Config) OpenMode() bool {
	return c.OwnerID == 0
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}

func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutSec) * time.Second
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		// Tolerate trailing inline comments like "123 # my id".
		v = strings.TrimSpace(strings.SplitN(v, "#", 2)[0])
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// parseIDList parses a comma-separated user id list, skipping entries that
// do not parse.
func parseIDList(raw string) []int64 {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: skipping invalid user id %q\n", p)
			continue
		}
		ids = append(ids, n)
	}
	return ids
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
