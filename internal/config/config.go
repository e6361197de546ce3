package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Defaults are overridden by an
// optional YAML file, which is in turn overridden by environment variables.
type Config struct {
	HTTPAddr          string        `yaml:"httpAddr"`
	CatalogServiceURL string        `yaml:"catalogServiceUrl"`
	CartServiceURL    string        `yaml:"cartServiceUrl"`
	ServiceTimeout    time.Duration `yaml:"serviceTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins       []string      `yaml:"corsOrigins"`
	SessionTTL        time.Duration `yaml:"sessionTtl"`
	RateLimitRPS      float64       `yaml:"rateLimitRps"`
	RateLimitBurst    int           `yaml:"rateLimitBurst"`
	LogLevel          string        `yaml:"logLevel"`
	Categories        []string      `yaml:"categories"`
}

// FileEnv names the variable pointing at the YAML file.
const FileEnv = "STOREFRONT_CONFIG"

func Defaults() Config {
	return Config{
		HTTPAddr:          ":8080",
		CatalogServiceURL: "http://localhost:8082",
		CartServiceURL:    "http://localhost:8083",
		ServiceTimeout:    10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		CORSOrigins:       []string{"http://localhost:3000"},
		SessionTTL:        30 * time.Minute,
		RateLimitRPS:      20,
		RateLimitBurst:    40,
		LogLevel:          "info",
		Categories:        []string{"writing", "drawing"},
	}
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	cfg := Defaults()
	cfg.applyEnv()
	return cfg
}

// Load reads the YAML file named by STOREFRONT_CONFIG, if set, then applies
// environment overrides.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the storefront cannot start with.
func (c Config) Validate() error {
	if c.CatalogServiceURL == "" {
		return errors.New("catalog service url required")
	}
	if c.CartServiceURL == "" {
		return errors.New("cart service url required")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	// Unmarshal onto the current values so absent keys keep their defaults.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envOrDefault("HTTP_ADDR", c.HTTPAddr)
	c.CatalogServiceURL = strings.TrimRight(envOrDefault("CATALOG_SERVICE_URL", c.CatalogServiceURL), "/")
	c.CartServiceURL = strings.TrimRight(envOrDefault("CART_SERVICE_URL", c.CartServiceURL), "/")
	c.ServiceTimeout = envDuration("SERVICE_TIMEOUT_SECONDS", c.ServiceTimeout)
	c.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT_SECONDS", c.ShutdownTimeout)
	c.CORSOrigins = envList("CORS_ORIGINS", c.CORSOrigins)
	c.SessionTTL = envMinutes("SESSION_TTL_MINUTES", c.SessionTTL)
	c.RateLimitRPS = envFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = envInt("RATE_LIMIT_BURST", c.RateLimitBurst)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMinutes(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		minutes, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
