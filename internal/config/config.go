package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yml"

const minSecretLength = 32

var placeholderSecrets = []string{"your-secret-key", "supersecretjwtkey", "changeme"}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port              string        `yaml:"port"`
		Environment       string        `yaml:"environment"`
		AllowedOrigins    []string      `yaml:"allowed_origins"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret           string        `yaml:"jwt_secret"`
		TokenTTL            time.Duration `yaml:"token_ttl"`
		BcryptCost          int           `yaml:"bcrypt_cost"`
		RequireVerification bool          `yaml:"require_verification"`
	} `yaml:"auth"`
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Notifier struct {
		Telegram Telegram `yaml:"telegram"`
	} `yaml:"notifier"`
}

type Database struct {
	// Driver is one of mongo, postgres, sqlite or memory.
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	// Name is the mongo database name.
	Name string `yaml:"name"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Telegram struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Production reports whether the server runs with production cookie settings.
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}

// Path returns the config file location from CONFIG_PATH or DefaultPath.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig reads configuration from the specified YAML file. A .env file in
// the working directory is loaded first so ${VAR} references resolve.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML, expands environment references, applies defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	config := &Config{}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mongo"
	}
	if c.Database.Driver == "mongo" && c.Database.Name == "" {
		c.Database.Name = "zerobarrier"
	}
	if c.Database.Driver == "sqlite" && c.Database.URL == "" {
		c.Database.URL = "./data/zerobarrier.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate reports the first setting that would make the server unsafe or
// unable to start.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	switch {
	case secret == "":
		return errors.New("auth.jwt_secret is required")
	case isPlaceholder(secret):
		return errors.New("auth.jwt_secret is a placeholder value")
	case len(secret) < minSecretLength:
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLength)
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and %d", bcrypt.MaxCost)
	}

	switch c.Database.Driver {
	case "mongo", "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}

	if t := c.Notifier.Telegram; t.Enabled && (t.BotToken == "" || t.ChatID == 0) {
		return errors.New("notifier.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}

func isPlaceholder(secret string) bool {
	lower := strings.ToLower(secret)
	for _, p := range placeholderSecrets {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
