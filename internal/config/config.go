package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string        `env:"SERVER_PORT" envDefault:"3000"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	SweetsAPIURL     string        `env:"SWEETS_API_URL"`
	SweetsAPITimeout time.Duration `env:"SWEETS_API_TIMEOUT" envDefault:"15s"`

	TokenStore  string `env:"TOKEN_STORE" envDefault:"file"`
	TokenFile   string `env:"TOKEN_FILE" envDefault:"./state/session.json"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"4"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"1"`

	CORSOrigins      []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPM     int      `env:"RATE_LIMIT_RPM" envDefault:"300"`
	AuthRateLimitRPM int      `env:"AUTH_RATE_LIMIT_RPM" envDefault:"20"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads envFile (or .env when empty) if it exists, then the process
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if strings.TrimSpace(envFile) == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.TokenStore = strings.ToLower(strings.TrimSpace(cfg.TokenStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerPort) == "" {
		return errors.New("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.SweetsAPIURL) == "" {
		return errors.New("SWEETS_API_URL is required")
	}
	parsed, err := url.Parse(c.SweetsAPIURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("SWEETS_API_URL must be an http(s) URL, got %q", c.SweetsAPIURL)
	}

	if c.SweetsAPITimeout <= 0 {
		return errors.New("SWEETS_API_TIMEOUT must be positive")
	}

	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(c.TokenStore)) {
	case "memory":
	case "file":
		if strings.TrimSpace(c.TokenFile) == "" {
			return errors.New("TOKEN_FILE cannot be empty when TOKEN_STORE=file")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when TOKEN_STORE=postgres")
		}
		if c.DBMaxConns <= 0 {
			return errors.New("DB_MAX_CONNS must be positive")
		}
	default:
		return fmt.Errorf("TOKEN_STORE must be memory, file or postgres, got %q", c.TokenStore)
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
