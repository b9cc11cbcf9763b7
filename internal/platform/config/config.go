package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"votecheck/pkg/platform/middleware/metadata"
)

// Server captures process level configuration.
type Server struct {
	Addr            string        `env:"VOTECHECK_ADDR"             envDefault:":8080"`
	LogLevel        string        `env:"VOTECHECK_LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"VOTECHECK_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustedProxies lists CIDRs or addresses of reverse proxies whose
	// X-Forwarded-For is believed. Empty means the socket peer is the client.
	TrustedProxies []string `env:"VOTECHECK_TRUSTED_PROXIES" envSeparator:","`

	Registry  Registry
	RateLimit RateLimit
	Redis     RedisConfig
	Tracing   Tracing
}

// Registry configures the two upstream lookup endpoints. URLs are templates in
// which "{id}" is replaced by the national ID.
type Registry struct {
	ElectionURL   string        `env:"VOTECHECK_ELECTION_URL"   envDefault:"https://boraservices.bora.dopa.go.th/api/election/v1/nenuit/{id}"`
	ReferendumURL string        `env:"VOTECHECK_REFERENDUM_URL"`
	Timeout       time.Duration `env:"VOTECHECK_UPSTREAM_TIMEOUT" envDefault:"10s"`
	UserAgent     string        `env:"VOTECHECK_USER_AGENT"       envDefault:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"`
}

// RateLimit bounds lookups per client IP. Limit 0 disables it.
type RateLimit struct {
	Limit  int           `env:"VOTECHECK_RATE_LIMIT"  envDefault:"30"`
	Window time.Duration `env:"VOTECHECK_RATE_WINDOW" envDefault:"1m"`
}

// RedisConfig configures the optional shared rate-limit store. An empty URL
// selects the in-memory store.
type RedisConfig struct {
	URL          string        `env:"VOTECHECK_REDIS_URL"`
	PoolSize     int           `env:"VOTECHECK_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"VOTECHECK_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"VOTECHECK_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"VOTECHECK_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"VOTECHECK_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// Tracing configures OTLP span export. Export is off unless an endpoint is set.
type Tracing struct {
	Enabled     bool    `env:"VOTECHECK_OTEL_ENABLED"      envDefault:"true"`
	Endpoint    string  `env:"VOTECHECK_OTEL_ENDPOINT"`
	SampleRatio float64 `env:"VOTECHECK_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// IDPlaceholder is substituted with the national ID in registry URL templates.
const IDPlaceholder = "{id}"

// Load reads an optional .env file from the working directory, then parses
// the environment.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (s Server) Validate() error {
	if !strings.Contains(s.Registry.ElectionURL, IDPlaceholder) {
		return fmt.Errorf("VOTECHECK_ELECTION_URL must contain %s", IDPlaceholder)
	}
	if s.Registry.ReferendumURL != "" && !strings.Contains(s.Registry.ReferendumURL, IDPlaceholder) {
		return fmt.Errorf("VOTECHECK_REFERENDUM_URL must contain %s", IDPlaceholder)
	}
	if s.Registry.Timeout <= 0 {
		return errors.New("VOTECHECK_UPSTREAM_TIMEOUT must be positive")
	}
	if s.RateLimit.Limit < 0 {
		return errors.New("VOTECHECK_RATE_LIMIT must not be negative")
	}
	if s.RateLimit.Limit > 0 && s.RateLimit.Window <= 0 {
		return errors.New("VOTECHECK_RATE_WINDOW must be positive when rate limiting is enabled")
	}
	if _, err := metadata.NewResolver(s.TrustedProxies); err != nil {
		return fmt.Errorf("VOTECHECK_TRUSTED_PROXIES: %w", err)
	}
	if s.Tracing.SampleRatio < 0 || s.Tracing.SampleRatio > 1 {
		return errors.New("VOTECHECK_OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
