package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/metasight/fetcher"
)

// Environment variable names
const (
	EnvPort         = "PORT"
	EnvGinMode      = "GIN_MODE"
	EnvDevMode      = "DEV_MODE"
	EnvDataDir      = "METASIGHT_DATA_DIR"
	EnvProxyURL     = "METASIGHT_PROXY_URL"
	EnvDirectFetch  = "METASIGHT_DIRECT_FETCH"
	EnvFetchTimeout = "METASIGHT_FETCH_TIMEOUT"
	EnvUserAgent    = "METASIGHT_USER_AGENT"
	EnvRateLimit    = "METASIGHT_RATE_LIMIT"
	EnvRateBurst    = "METASIGHT_RATE_BURST"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvLogFile      = "LOG_FILE"
)

type Config struct {
	Port      string          `yaml:"port"`
	GinMode   string          `yaml:"gin_mode"`
	DevMode   bool            `yaml:"dev_mode"`
	DataDir   string          `yaml:"data_dir"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type FetchConfig struct {
	ProxyURL     string        `yaml:"proxy_url"`
	Direct       bool          `yaml:"direct"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type LogConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"` // "text" or "json"
	File   LogFileConfig `yaml:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:    "8082",
		GinMode: "release",
		DataDir: "data",
		Fetch: FetchConfig{
			ProxyURL:     fetcher.DefaultProxyURL,
			Timeout:      fetcher.DefaultTimeout,
			UserAgent:    fetcher.DefaultUserAgent,
			MaxBodyBytes: fetcher.DefaultMaxBodyBytes,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File: LogFileConfig{
				Path:       "logs/metasight.log",
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
			},
		},
	}
}

// LoadEnv loads .env.development, falling back to .env
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and finally the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, EnvPort)
	setString(&cfg.GinMode, EnvGinMode)
	setString(&cfg.DataDir, EnvDataDir)
	setString(&cfg.Fetch.ProxyURL, EnvProxyURL)
	setString(&cfg.Fetch.UserAgent, EnvUserAgent)
	setString(&cfg.Log.Level, EnvLogLevel)
	setString(&cfg.Log.Format, EnvLogFormat)

	if v := os.Getenv(EnvDevMode); v != "" {
		cfg.DevMode = v == "true"
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File.Enabled = true
		cfg.Log.File.Path = v
	}

	if v := os.Getenv(EnvDirectFetch); v != "" {
		direct, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDirectFetch, err)
		}
		cfg.Fetch.Direct = direct
	}
	if v := os.Getenv(EnvFetchTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.Fetch.Timeout = timeout
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		cfg.RateLimit.RequestsPerSecond = rps
	}
	if v := os.Getenv(EnvRateBurst); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateBurst, err)
		}
		cfg.RateLimit.Burst = burst
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate rejects values the server cannot run with
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %q", c.Port))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("gin_mode must be debug, release or test, got %q", c.GinMode))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if !c.Fetch.Direct && c.Fetch.ProxyURL == "" {
		errs = append(errs, errors.New("fetch.proxy_url is required unless fetch.direct is set"))
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit values must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		errs = append(errs, errors.New("log.file.path must be specified when file logging is enabled"))
	}

	return errors.Join(errs...)
}

// FetchOptions converts the fetch section into retriever options
func (c Config) FetchOptions() fetcher.Options {
	return fetcher.Options{
		ProxyURL:     c.Fetch.ProxyURL,
		Direct:       c.Fetch.Direct,
		Timeout:      c.Fetch.Timeout,
		UserAgent:    c.Fetch.UserAgent,
		MaxBodyBytes: c.Fetch.MaxBodyBytes,
	}
}
